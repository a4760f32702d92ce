// internal/monitoring/engine.go
package monitoring

import (
    "context"
    "fmt"
    "sync"

    "github.com/sirupsen/logrus"

    "bpmon/internal/config"
    "bpmon/internal/database"
    "bpmon/internal/metrics"
    "bpmon/internal/notifications"
)

// Engine wires the executor, scheduler, propagator and sweeper together
// around a shared event channel.
type Engine struct {
    config     *config.Config
    store      database.Store
    metrics    *metrics.Collector
    executor   *Executor
    scheduler  *Scheduler
    propagator *Propagator
    sweeper    *Sweeper
    events     chan TaskStatusChangedEvent
    mu         sync.RWMutex
    running    bool
}

func NewEngine(cfg *config.Config, store database.Store, metricsCollector *metrics.Collector, notifier notifications.Notifier) *Engine {
    events := make(chan TaskStatusChangedEvent, cfg.Scheduler.QueueSize)

    executor := NewExecutor(store, notifier, metricsCollector, events)

    return &Engine{
        config:     cfg,
        store:      store,
        metrics:    metricsCollector,
        executor:   executor,
        scheduler:  NewScheduler(store, executor, metricsCollector, cfg.Scheduler),
        propagator: NewPropagator(store, metricsCollector, events),
        sweeper:    NewSweeper(store, metricsCollector, cfg.Retention),
        events:     events,
    }
}

// SetStatusListener registers a hook observing propagated status changes.
// Must be called before Start.
func (e *Engine) SetStatusListener(fn StatusListener) {
    e.propagator.SetStatusListener(fn)
}

func (e *Engine) Start(ctx context.Context) error {
    e.mu.Lock()
    if e.running {
        e.mu.Unlock()
        return nil
    }
    e.running = true
    e.mu.Unlock()

    logrus.Info("Starting monitoring engine")

    go e.propagator.Run(ctx)
    go e.sweeper.Run(ctx, e.config.Database.SweepInterval)

    return e.scheduler.Start(ctx)
}

func (e *Engine) Stop() {
    e.mu.Lock()
    defer e.mu.Unlock()

    if !e.running {
        return
    }
    logrus.Info("Stopping monitoring engine")
    e.scheduler.Stop()
    e.running = false
}

// ExecuteNow runs a single task outside its recurrence schedule, through the
// same executor path a scheduled run takes.
func (e *Engine) ExecuteNow(ctx context.Context, taskID string) error {
    task, err := e.store.GetTask(ctx, taskID)
    if err != nil {
        return fmt.Errorf("failed to load task %s: %w", taskID, err)
    }
    e.executor.ExecuteTask(ctx, task)
    return nil
}
