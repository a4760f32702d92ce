// internal/monitoring/executor.go - runs one task's check and persists the outcome
package monitoring

import (
    "context"
    "time"

    "github.com/sirupsen/logrus"

    "bpmon/internal/checks"
    "bpmon/internal/database"
    "bpmon/internal/metrics"
    "bpmon/internal/notifications"
)

// Executor runs a single task's check variant, persists the validation
// result, records a task error plus best-effort notification on failure, and
// publishes a status-changed event once the result write has committed.
// Failures never propagate to the scheduler.
type Executor struct {
    store    database.Store
    notifier notifications.Notifier
    metrics  *metrics.Collector
    events   chan<- TaskStatusChangedEvent
}

func NewExecutor(store database.Store, notifier notifications.Notifier, metricsCollector *metrics.Collector, events chan<- TaskStatusChangedEvent) *Executor {
    return &Executor{
        store:    store,
        notifier: notifier,
        metrics:  metricsCollector,
        events:   events,
    }
}

// ExecuteTask performs one execution cycle for a task. The validation result
// is flushed synchronously before any downstream step runs; if that write
// fails, execution aborts for this cycle and no event is published.
func (e *Executor) ExecuteTask(ctx context.Context, task *database.Task) {
    start := time.Now()

    status, description := e.probe(ctx, task)

    result := &database.ValidationResult{
        TaskID:      task.ID,
        Status:      status,
        Timestamp:   time.Now(),
        Description: description,
    }

    if err := e.store.CreateResult(ctx, result); err != nil {
        logrus.WithError(err).WithField("task", task.Name).Error("Failed to store validation result")
        return
    }

    if status == database.TaskFail {
        e.recordFailure(ctx, task, result)
    }

    if e.metrics != nil {
        e.metrics.RecordTaskResult(task.Name, task.Kind, status, time.Since(start))
    }

    // The result is durable at this point; hand the cascade to the propagator.
    select {
    case e.events <- TaskStatusChangedEvent{Task: *task, Result: *result}:
    default:
        logrus.WithField("task", task.Name).Warn("Propagation queue full, dropping status event")
    }

    logrus.WithFields(logrus.Fields{
        "task":     task.Name,
        "kind":     task.Kind,
        "status":   status,
        "duration": time.Since(start),
    }).Debug("Task executed")
}

func (e *Executor) probe(ctx context.Context, task *database.Task) (database.TaskStatus, string) {
    checker, err := checks.New(task.Kind, task.Payload)
    if err != nil {
        logrus.WithError(err).WithField("task", task.Name).Error("Failed to build checker")
        return database.TaskFail, "check setup failed: " + err.Error()
    }
    return checker.Probe(ctx)
}

// recordFailure persists the postmortem error record and attempts to notify
// the responsible party. Both steps are best effort.
func (e *Executor) recordFailure(ctx context.Context, task *database.Task, result *database.ValidationResult) {
    taskErr := &database.TaskError{
        ResultID:    result.ID,
        Timestamp:   time.Now(),
        Description: result.Description,
        Payload:     task.Payload,
    }
    if err := e.store.CreateTaskError(ctx, taskErr); err != nil {
        logrus.WithError(err).WithField("task", task.Name).Error("Failed to store task error")
    }

    if e.notifier == nil {
        return
    }
    address := checks.ResponsibleParty(task.Payload)
    if err := e.notifier.Notify(ctx, address, result.Description); err != nil {
        logrus.WithError(err).WithFields(logrus.Fields{
            "task":      task.Name,
            "recipient": address,
        }).Warn("Failed to notify responsible party")
    }
}
