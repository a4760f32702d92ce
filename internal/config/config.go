// internal/config/config.go
package config

import (
    "fmt"
    "os"
    "time"

    "gopkg.in/yaml.v3"
)

type Config struct {
    Server        ServerConfig       `yaml:"server"`
    Database      DatabaseConfig     `yaml:"database"`
    Scheduler     SchedulerConfig    `yaml:"scheduler"`
    Retention     RetentionConfig    `yaml:"retention"`
    Notifications NotificationConfig `yaml:"notifications"`
    Prometheus    PrometheusConfig   `yaml:"prometheus"`
    Logging       LoggingConfig      `yaml:"logging"`
}

type ServerConfig struct {
    Port         string        `yaml:"port"`
    ReadTimeout  time.Duration `yaml:"read_timeout"`
    WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DatabaseConfig struct {
    Path          string        `yaml:"path"`
    SweepInterval time.Duration `yaml:"sweep_interval"`
}

// SchedulerConfig sizes the bounded worker pool. Tests inject a tiny pool for
// deterministic behavior.
type SchedulerConfig struct {
    CoreWorkers int `yaml:"core_workers"`
    MaxWorkers  int `yaml:"max_workers"`
    QueueSize   int `yaml:"queue_size"`
}

// RetentionConfig controls how long validation results and task errors are
// kept before the sweeper removes them.
type RetentionConfig struct {
    SuccessMaxAge time.Duration `yaml:"success_max_age"`
    FailMaxAge    time.Duration `yaml:"fail_max_age"`
    ErrorMaxAge   time.Duration `yaml:"error_max_age"`
}

type NotificationConfig struct {
    Enabled        bool       `yaml:"enabled"`
    DefaultAddress string     `yaml:"default_address"`
    SMTP           SMTPConfig `yaml:"smtp"`
}

type SMTPConfig struct {
    Host     string `yaml:"host"`
    Port     int    `yaml:"port"`
    From     string `yaml:"from"`
    Username string `yaml:"username"`
    Password string `yaml:"password"`
}

type PrometheusConfig struct {
    Enabled     bool   `yaml:"enabled"`
    MetricsPath string `yaml:"metrics_path"`
}

type LoggingConfig struct {
    Level  string `yaml:"level"`
    Format string `yaml:"format"`
}

func Load(filename string) (*Config, error) {
    data, err := os.ReadFile(filename)
    if err != nil {
        return nil, fmt.Errorf("failed to read config file: %w", err)
    }

    var config Config
    if err := yaml.Unmarshal(data, &config); err != nil {
        return nil, fmt.Errorf("failed to parse YAML: %w", err)
    }

    setDefaults(&config)

    if err := validate(&config); err != nil {
        return nil, fmt.Errorf("invalid configuration: %w", err)
    }

    return &config, nil
}

func setDefaults(config *Config) {
    if config.Server.Port == "" {
        config.Server.Port = ":8080"
    }
    if config.Server.ReadTimeout == 0 {
        config.Server.ReadTimeout = 30 * time.Second
    }
    if config.Server.WriteTimeout == 0 {
        config.Server.WriteTimeout = 30 * time.Second
    }
    if config.Database.Path == "" {
        config.Database.Path = "data/bpmon.db"
    }
    if config.Database.SweepInterval == 0 {
        config.Database.SweepInterval = 6 * time.Hour
    }
    if config.Scheduler.CoreWorkers == 0 {
        config.Scheduler.CoreWorkers = 16
    }
    if config.Scheduler.MaxWorkers == 0 {
        config.Scheduler.MaxWorkers = 64
    }
    if config.Scheduler.QueueSize == 0 {
        config.Scheduler.QueueSize = 500
    }
    if config.Retention.SuccessMaxAge == 0 {
        config.Retention.SuccessMaxAge = 24 * time.Hour
    }
    if config.Retention.FailMaxAge == 0 {
        config.Retention.FailMaxAge = 7 * 24 * time.Hour
    }
    if config.Retention.ErrorMaxAge == 0 {
        config.Retention.ErrorMaxAge = 7 * 24 * time.Hour
    }
    if config.Notifications.SMTP.Port == 0 {
        config.Notifications.SMTP.Port = 587
    }
    if config.Prometheus.MetricsPath == "" {
        config.Prometheus.MetricsPath = "/metrics"
    }
    if config.Logging.Level == "" {
        config.Logging.Level = "info"
    }
}

func validate(config *Config) error {
    if config.Scheduler.CoreWorkers < 1 {
        return fmt.Errorf("scheduler.core_workers must be at least 1")
    }
    if config.Scheduler.MaxWorkers < config.Scheduler.CoreWorkers {
        return fmt.Errorf("scheduler.max_workers must be >= core_workers")
    }
    if config.Scheduler.QueueSize < 1 {
        return fmt.Errorf("scheduler.queue_size must be at least 1")
    }
    if config.Notifications.Enabled {
        if config.Notifications.SMTP.Host == "" {
            return fmt.Errorf("notifications.smtp.host is required when notifications are enabled")
        }
        if config.Notifications.SMTP.From == "" {
            return fmt.Errorf("notifications.smtp.from is required when notifications are enabled")
        }
    }
    return nil
}
