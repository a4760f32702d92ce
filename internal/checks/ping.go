// internal/checks/ping.go - host reachability probe
package checks

import (
    "context"
    "encoding/json"
    "fmt"
    "regexp"
    "strings"
    "time"

    probing "github.com/prometheus-community/pro-bing"

    "bpmon/internal/database"
)

const pingTimeout = 5 * time.Second

var schemeRe = regexp.MustCompile(`^https?://`)

// PingCheck resolves a host and probes it with one ICMP echo.
type PingCheck struct {
    Host    string
    Timeout time.Duration
}

func newPing(payload json.RawMessage) (Checker, error) {
    var doc struct {
        Host string `json:"HOST"`
    }
    if err := json.Unmarshal(payload, &doc); err != nil {
        return nil, fmt.Errorf("failed to parse ping payload: %w", err)
    }
    return &PingCheck{Host: doc.Host, Timeout: pingTimeout}, nil
}

func (p *PingCheck) Kind() database.TaskKind {
    return database.KindPing
}

// cleanHost strips a scheme prefix and trailing slash, so a URL pasted as a
// host still resolves.
func (p *PingCheck) cleanHost() string {
    host := schemeRe.ReplaceAllString(p.Host, "")
    return strings.TrimSuffix(host, "/")
}

func (p *PingCheck) Probe(ctx context.Context) (database.TaskStatus, string) {
    host := p.cleanHost()

    pinger, err := probing.NewPinger(host)
    if err != nil {
        return database.TaskFail, fmt.Sprintf("could not resolve host %s: %v", host, err)
    }
    pinger.Count = 1
    pinger.Timeout = p.Timeout
    pinger.SetPrivileged(false)

    if err := pinger.RunWithContext(ctx); err != nil {
        return database.TaskFail, fmt.Sprintf("couldn't reach host %s: %v", host, err)
    }
    if pinger.Statistics().PacketsRecv == 0 {
        return database.TaskFail, fmt.Sprintf("couldn't reach host: %s", host)
    }
    return database.TaskSuccess, fmt.Sprintf("pinged host successfully: %s", host)
}
