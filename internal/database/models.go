// internal/database/models.go
package database

import (
    "encoding/json"
    "time"
)

// OperationalStatus is the aggregated health of a hierarchy entity.
type OperationalStatus string

const (
    StatusUnrun       OperationalStatus = "UNRUN"
    StatusUp          OperationalStatus = "UP"
    StatusDown        OperationalStatus = "DOWN"
    StatusCompromised OperationalStatus = "COMPROMISED"
)

// TaskStatus is the outcome of the most recent task execution.
type TaskStatus string

const (
    TaskUnrun   TaskStatus = "UNRUN"
    TaskSuccess TaskStatus = "SUCCESS"
    TaskFail    TaskStatus = "FAIL"
)

// TaskKind selects which check variant a task runs.
type TaskKind string

const (
    KindPing        TaskKind = "PING"
    KindHTTPCheck   TaskKind = "HTTPCHECK"
    KindQueryDB     TaskKind = "QUERYDB"
    KindSFTPConnect TaskKind = "SFTPCONNECT"
)

// Recurrence is the cadence bucket controlling when a task is eligible to run.
type Recurrence string

const (
    EveryMinute    Recurrence = "EVERY_MINUTE"
    Every5Minutes  Recurrence = "EVERY_5_MINUTES"
    Every30Minutes Recurrence = "EVERY_30_MINUTES"
    Hourly         Recurrence = "HOURLY"
    Daily          Recurrence = "DAILY"
)

// Interval returns the tick period for a recurrence bucket.
func (r Recurrence) Interval() time.Duration {
    switch r {
    case EveryMinute:
        return time.Minute
    case Every5Minutes:
        return 5 * time.Minute
    case Every30Minutes:
        return 30 * time.Minute
    case Hourly:
        return time.Hour
    case Daily:
        return 24 * time.Hour
    default:
        return 0
    }
}

// AllRecurrences lists every bucket the scheduler runs.
func AllRecurrences() []Recurrence {
    return []Recurrence{EveryMinute, Every5Minutes, Every30Minutes, Hourly, Daily}
}

type Process struct {
    ID        string            `json:"id"`
    Name      string            `json:"name"`
    Status    OperationalStatus `json:"status"`
    CreatedAt time.Time         `json:"created_at"`
    UpdatedAt time.Time         `json:"updated_at"`
}

type Subprocess struct {
    ID        string            `json:"id"`
    Name      string            `json:"name"`
    ProcessID string            `json:"process_id"`
    Status    OperationalStatus `json:"status"`
    CreatedAt time.Time         `json:"created_at"`
    UpdatedAt time.Time         `json:"updated_at"`
}

type Activity struct {
    ID           string            `json:"id"`
    Name         string            `json:"name"`
    Description  string            `json:"description"`
    SubprocessID string            `json:"subprocess_id"`
    Status       OperationalStatus `json:"status"`
    CreatedAt    time.Time         `json:"created_at"`
    UpdatedAt    time.Time         `json:"updated_at"`
}

// System is an independently monitored technical entity.
type System struct {
    ID            string            `json:"id"`
    Name          string            `json:"name"`
    Goal          string            `json:"goal"`
    TechnicalData string            `json:"technical_data"`
    Status        OperationalStatus `json:"status"`
    CreatedAt     time.Time         `json:"created_at"`
    UpdatedAt     time.Time         `json:"updated_at"`
}

// Interface connects an origin system to a destination system.
type Interface struct {
    ID                  string            `json:"id"`
    Name                string            `json:"name"`
    Goal                string            `json:"goal"`
    TechnicalData       string            `json:"technical_data"`
    OriginSystemID      string            `json:"origin_system_id"`
    DestinationSystemID string            `json:"destination_system_id"`
    Status              OperationalStatus `json:"status"`
    CreatedAt           time.Time         `json:"created_at"`
    UpdatedAt           time.Time         `json:"updated_at"`
}

// Task is a single scheduled health check. Payload is an opaque JSON document
// consumed by the task's check variant. A task belongs to exactly one activity
// and optionally probes one system or one interface, never both.
type Task struct {
    ID          string          `json:"id"`
    Name        string          `json:"name"`
    Description string          `json:"description"`
    Kind        TaskKind        `json:"kind"`
    Recurrence  Recurrence      `json:"recurrence"`
    Status      TaskStatus      `json:"status"`
    Payload     json.RawMessage `json:"payload"`
    ActivityID  string          `json:"activity_id"`
    SystemID    string          `json:"system_id,omitempty"`
    InterfaceID string          `json:"interface_id,omitempty"`
    CreatedAt   time.Time       `json:"created_at"`
    UpdatedAt   time.Time       `json:"updated_at"`
}

// ValidationResult is the timestamped outcome of one task execution.
type ValidationResult struct {
    ID          string     `json:"id"`
    TaskID      string     `json:"task_id"`
    Status      TaskStatus `json:"status"`
    Timestamp   time.Time  `json:"timestamp"`
    Description string     `json:"description"`
}

// TaskError is a postmortem record attached to a FAIL validation result. It
// keeps a copy of the payload that produced the failure even if the task's
// payload is edited later.
type TaskError struct {
    ID          string          `json:"id"`
    ResultID    string          `json:"result_id"`
    Timestamp   time.Time       `json:"timestamp"`
    Description string          `json:"description"`
    Payload     json.RawMessage `json:"payload"`
}

type ResultFilters struct {
    TaskID string
    Status TaskStatus
    Before *time.Time
    Limit  int
}
