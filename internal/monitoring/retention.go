// internal/monitoring/retention.go - periodic deletion of expired records
package monitoring

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/sirupsen/logrus"

    "bpmon/internal/config"
    "bpmon/internal/database"
    "bpmon/internal/metrics"
)

// ErrSweepFailed marks a retention sweep that could not delete one or more
// record batches. The sweeper does not retry; the next scheduled sweep picks
// the records up again.
var ErrSweepFailed = errors.New("deletion of expired records failed")

// Sweeper deletes validation results and task errors past their retention
// window. It runs on its own schedule and never affects the scheduler or the
// executor.
type Sweeper struct {
    store   database.Store
    metrics *metrics.Collector
    cfg     config.RetentionConfig
}

func NewSweeper(store database.Store, metricsCollector *metrics.Collector, cfg config.RetentionConfig) *Sweeper {
    return &Sweeper{
        store:   store,
        metrics: metricsCollector,
        cfg:     cfg,
    }
}

// Run sweeps on the given interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
    logrus.WithField("interval", interval).Info("Scheduled retention sweeper")

    ticker := time.NewTicker(interval)
    defer ticker.Stop()

    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if err := s.Sweep(ctx); err != nil {
                logrus.WithError(err).Error("Retention sweep failed")
            }
        }
    }
}

// Sweep removes SUCCESS results, FAIL results and task errors older than
// their respective retention windows. Batch failures are collected rather
// than aborting the remaining batches.
func (s *Sweeper) Sweep(ctx context.Context) error {
    now := time.Now()
    var failures []string

    deleted, err := s.store.DeleteResultsBefore(ctx, database.TaskSuccess, now.Add(-s.cfg.SuccessMaxAge))
    if err != nil {
        failures = append(failures, fmt.Sprintf("success results: %v", err))
    } else {
        s.recordSweep("success_result", deleted)
    }

    deleted, err = s.store.DeleteResultsBefore(ctx, database.TaskFail, now.Add(-s.cfg.FailMaxAge))
    if err != nil {
        failures = append(failures, fmt.Sprintf("fail results: %v", err))
    } else {
        s.recordSweep("fail_result", deleted)
    }

    deleted, err = s.store.DeleteErrorsBefore(ctx, now.Add(-s.cfg.ErrorMaxAge))
    if err != nil {
        failures = append(failures, fmt.Sprintf("task errors: %v", err))
    } else {
        s.recordSweep("task_error", deleted)
    }

    if len(failures) > 0 {
        return fmt.Errorf("%w: %s", ErrSweepFailed, strings.Join(failures, "; "))
    }
    return nil
}

func (s *Sweeper) recordSweep(record string, count int) {
    if count > 0 {
        logrus.WithFields(logrus.Fields{
            "record": record,
            "count":  count,
        }).Info("Deleted expired records")
    }
    if s.metrics != nil {
        s.metrics.RecordSweep(record, count)
    }
}
