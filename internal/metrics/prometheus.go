// internal/metrics/prometheus.go
package metrics

import (
    "context"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"

    "bpmon/internal/database"
)

// Prometheus metrics
var (
    TaskDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "bpmon_task_duration_seconds",
            Help:    "Time spent executing check tasks",
            Buckets: prometheus.DefBuckets,
        },
        []string{"task", "kind", "status"},
    )

    TaskTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "bpmon_tasks_total",
            Help: "Total number of check tasks executed",
        },
        []string{"task", "kind", "status"},
    )

    EntityStatus = promauto.NewGaugeVec(
        prometheus.GaugeOpts{
            Name: "bpmon_entity_status",
            Help: "Current status of hierarchy entities (0=UP, 1=COMPROMISED, 2=DOWN, 3=UNRUN)",
        },
        []string{"level", "name"},
    )

    SweptRecords = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "bpmon_swept_records_total",
            Help: "Records removed by the retention sweeper",
        },
        []string{"record"},
    )

    DroppedJobs = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "bpmon_dropped_jobs_total",
            Help: "Task executions dropped because the worker queue was full",
        },
    )

    WebSocketConnections = promauto.NewGauge(
        prometheus.GaugeOpts{
            Name: "bpmon_websocket_connections_active",
            Help: "Number of active WebSocket connections",
        },
    )
)

type Collector struct {
    store database.Store
}

func NewCollector(store database.Store) *Collector {
    return &Collector{store: store}
}

func (c *Collector) RecordTaskResult(task string, kind database.TaskKind, status database.TaskStatus, duration time.Duration) {
    TaskDuration.WithLabelValues(task, string(kind), string(status)).Observe(duration.Seconds())
    TaskTotal.WithLabelValues(task, string(kind), string(status)).Inc()
}

func (c *Collector) RecordEntityStatus(level, name string, status database.OperationalStatus) {
    EntityStatus.WithLabelValues(level, name).Set(statusValue(status))
}

func (c *Collector) RecordSweep(record string, count int) {
    SweptRecords.WithLabelValues(record).Add(float64(count))
}

func (c *Collector) RecordDroppedJob() {
    DroppedJobs.Inc()
}

func (c *Collector) RecordWebSocketConnection(delta int) {
    WebSocketConnections.Add(float64(delta))
}

// UpdateHierarchyMetrics refreshes the status gauge for every entity level.
func (c *Collector) UpdateHierarchyMetrics(ctx context.Context) error {
    procs, err := c.store.GetProcesses(ctx)
    if err != nil {
        return err
    }
    for _, p := range procs {
        c.RecordEntityStatus("process", p.Name, p.Status)
    }

    sps, err := c.store.GetSubprocesses(ctx)
    if err != nil {
        return err
    }
    for _, sp := range sps {
        c.RecordEntityStatus("subprocess", sp.Name, sp.Status)
    }

    acts, err := c.store.GetActivities(ctx)
    if err != nil {
        return err
    }
    for _, a := range acts {
        c.RecordEntityStatus("activity", a.Name, a.Status)
    }

    systems, err := c.store.GetSystems(ctx)
    if err != nil {
        return err
    }
    for _, s := range systems {
        c.RecordEntityStatus("system", s.Name, s.Status)
    }

    ifaces, err := c.store.GetInterfaces(ctx)
    if err != nil {
        return err
    }
    for _, i := range ifaces {
        c.RecordEntityStatus("interface", i.Name, i.Status)
    }

    return nil
}

func statusValue(status database.OperationalStatus) float64 {
    switch status {
    case database.StatusUp:
        return 0
    case database.StatusCompromised:
        return 1
    case database.StatusDown:
        return 2
    default:
        return 3
    }
}
