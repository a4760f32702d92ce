// internal/monitoring/events.go
package monitoring

import (
    "bpmon/internal/database"
)

// TaskStatusChangedEvent is published by the executor after a validation
// result has been durably written, and consumed by the propagator. It carries
// copies, not references, so the two sides never share mutable state.
type TaskStatusChangedEvent struct {
    Task   database.Task
    Result database.ValidationResult
}

// StatusListener observes entity status changes applied by the propagator.
type StatusListener func(level, id, name string, status database.OperationalStatus)
