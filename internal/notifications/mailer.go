// internal/notifications/mailer.go - email notification service
package notifications

import (
    "context"
    "fmt"
    "net"
    "net/smtp"

    "github.com/sirupsen/logrus"

    "bpmon/internal/config"
)

const subject = "Task Error Notification"

// Notifier delivers a message to an address. Callers treat delivery as best
// effort: a returned error is logged and swallowed, never escalated.
type Notifier interface {
    Notify(ctx context.Context, address, message string) error
}

// Mailer sends task failure notifications over SMTP. A disabled mailer is a
// no-op so callers never have to branch on configuration.
type Mailer struct {
    config *config.NotificationConfig
}

func NewMailer(cfg *config.NotificationConfig) *Mailer {
    logrus.WithFields(logrus.Fields{
        "notifications_enabled": cfg.Enabled,
        "smtp_host":             cfg.SMTP.Host,
    }).Info("Notification service initialized")

    return &Mailer{config: cfg}
}

func (m *Mailer) Notify(ctx context.Context, address, message string) error {
    if !m.config.Enabled {
        return nil
    }
    if address == "" {
        address = m.config.DefaultAddress
    }
    if address == "" {
        return fmt.Errorf("no recipient address and no default configured")
    }

    smtpCfg := m.config.SMTP
    addr := net.JoinHostPort(smtpCfg.Host, fmt.Sprintf("%d", smtpCfg.Port))

    var auth smtp.Auth
    if smtpCfg.Username != "" {
        auth = smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host)
    }

    body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
        smtpCfg.From, address, subject, message)

    if err := smtp.SendMail(addr, auth, smtpCfg.From, []string{address}, []byte(body)); err != nil {
        return fmt.Errorf("failed to send notification to %s: %w", address, err)
    }

    logrus.WithField("recipient", address).Debug("Notification sent")
    return nil
}
