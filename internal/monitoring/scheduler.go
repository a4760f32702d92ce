// internal/monitoring/scheduler.go - recurrence ticking and the bounded worker pool
package monitoring

import (
    "context"
    "sync"
    "sync/atomic"
    "time"

    "github.com/sirupsen/logrus"

    "bpmon/internal/config"
    "bpmon/internal/database"
    "bpmon/internal/metrics"
)

// Scheduler runs one ticker per recurrence bucket and dispatches due tasks to
// a bounded worker pool. Buckets tick independently and may overlap; there is
// no global lock. Backpressure is a bounded queue: when it is full the pool
// scales up to MaxWorkers with transient workers, and beyond that the task's
// execution is dropped for this tick.
type Scheduler struct {
    store    database.Store
    executor *Executor
    metrics  *metrics.Collector
    cfg      config.SchedulerConfig

    jobQueue chan database.Task
    extra    int32 // transient workers currently alive
    running  bool
    mu       sync.RWMutex
}

func NewScheduler(store database.Store, executor *Executor, metricsCollector *metrics.Collector, cfg config.SchedulerConfig) *Scheduler {
    return &Scheduler{
        store:    store,
        executor: executor,
        metrics:  metricsCollector,
        cfg:      cfg,
        jobQueue: make(chan database.Task, cfg.QueueSize),
    }
}

func (s *Scheduler) Start(ctx context.Context) error {
    s.mu.Lock()
    defer s.mu.Unlock()

    if s.running {
        return nil
    }
    s.running = true

    logrus.WithFields(logrus.Fields{
        "core_workers": s.cfg.CoreWorkers,
        "max_workers":  s.cfg.MaxWorkers,
        "queue_size":   s.cfg.QueueSize,
    }).Info("Starting scheduler")

    for i := 0; i < s.cfg.CoreWorkers; i++ {
        go s.worker(ctx, i)
    }

    for _, recurrence := range database.AllRecurrences() {
        go s.tickBucket(ctx, recurrence)
    }

    return nil
}

func (s *Scheduler) Stop() {
    s.mu.Lock()
    defer s.mu.Unlock()

    if !s.running {
        return
    }
    logrus.Info("Stopping scheduler")
    s.running = false
}

func (s *Scheduler) worker(ctx context.Context, id int) {
    logrus.WithField("worker", id).Debug("Started worker")
    for {
        select {
        case <-ctx.Done():
            return
        case task := <-s.jobQueue:
            s.executor.ExecuteTask(ctx, &task)
        }
    }
}

func (s *Scheduler) tickBucket(ctx context.Context, recurrence database.Recurrence) {
    interval := recurrence.Interval()
    if interval == 0 {
        logrus.WithField("recurrence", recurrence).Error("Unknown recurrence interval, bucket disabled")
        return
    }

    ticker := time.NewTicker(interval)
    defer ticker.Stop()

    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            s.RunBucket(ctx, recurrence)
        }
    }
}

// RunBucket loads every task in a recurrence bucket and submits each for
// execution. A task that cannot be submitted does not cancel its siblings or
// the tick.
func (s *Scheduler) RunBucket(ctx context.Context, recurrence database.Recurrence) {
    tasks, err := s.store.GetTasksByRecurrence(ctx, recurrence)
    if err != nil {
        logrus.WithError(err).WithField("recurrence", recurrence).Error("Failed to load tasks for tick")
        return
    }
    if len(tasks) == 0 {
        return
    }

    submitted := 0
    for _, task := range tasks {
        if s.Submit(ctx, task) {
            submitted++
        }
    }

    logrus.WithFields(logrus.Fields{
        "recurrence": recurrence,
        "due":        len(tasks),
        "submitted":  submitted,
    }).Debug("Scheduled tick")
}

// Submit hands one task to the pool. It reports false when the task had to be
// dropped because both the queue and the transient-worker headroom were
// exhausted.
func (s *Scheduler) Submit(ctx context.Context, task database.Task) bool {
    select {
    case s.jobQueue <- task:
        return true
    default:
    }

    // Queue is full; scale up to MaxWorkers before dropping.
    headroom := int32(s.cfg.MaxWorkers - s.cfg.CoreWorkers)
    if atomic.AddInt32(&s.extra, 1) <= headroom {
        go func(task database.Task) {
            defer atomic.AddInt32(&s.extra, -1)
            s.executor.ExecuteTask(ctx, &task)
        }(task)
        return true
    }
    atomic.AddInt32(&s.extra, -1)

    logrus.WithField("task", task.Name).Warn("Job queue full, dropping task execution for this tick")
    if s.metrics != nil {
        s.metrics.RecordDroppedJob()
    }
    return false
}
