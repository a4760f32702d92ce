// internal/monitoring/propagation.go - cascading status recomputation
package monitoring

import (
    "context"

    "github.com/sirupsen/logrus"

    "bpmon/internal/database"
    "bpmon/internal/metrics"
)

// Propagator consumes task status events and recomputes ancestor statuses
// bottom-up: task, activity, subprocess, process, then independently the
// targeted system or interface. Every step is a full recompute over current
// child state, so concurrent events on the same parent converge to the same
// answer regardless of arrival order. A missing parent is logged and skipped
// without rolling back the levels already updated.
type Propagator struct {
    store    database.Store
    metrics  *metrics.Collector
    events   <-chan TaskStatusChangedEvent
    listener StatusListener
}

func NewPropagator(store database.Store, metricsCollector *metrics.Collector, events <-chan TaskStatusChangedEvent) *Propagator {
    return &Propagator{
        store:   store,
        metrics: metricsCollector,
        events:  events,
    }
}

// SetStatusListener registers a hook observing every applied status change.
// Must be called before Run.
func (p *Propagator) SetStatusListener(fn StatusListener) {
    p.listener = fn
}

// Run consumes events until the context is cancelled.
func (p *Propagator) Run(ctx context.Context) {
    for {
        select {
        case <-ctx.Done():
            return
        case event := <-p.events:
            p.Propagate(ctx, event)
        }
    }
}

// Propagate applies the full cascade for one event.
func (p *Propagator) Propagate(ctx context.Context, event TaskStatusChangedEvent) {
    p.updateTaskStatus(ctx, event)

    activity, err := p.store.GetActivity(ctx, event.Task.ActivityID)
    if err != nil {
        logrus.WithError(err).WithField("activity_id", event.Task.ActivityID).Warn("Activity not found, skipping hierarchy cascade")
    } else {
        p.recomputeActivity(ctx, activity)

        subprocess, err := p.store.GetSubprocess(ctx, activity.SubprocessID)
        if err != nil {
            logrus.WithError(err).WithField("subprocess_id", activity.SubprocessID).Warn("Subprocess not found, skipping remaining cascade")
        } else {
            p.recomputeSubprocess(ctx, subprocess)

            process, err := p.store.GetProcess(ctx, subprocess.ProcessID)
            if err != nil {
                logrus.WithError(err).WithField("process_id", subprocess.ProcessID).Warn("Process not found, skipping process recompute")
            } else {
                p.recomputeProcess(ctx, process)
            }
        }
    }

    // The technical target chain has no further parent.
    if event.Task.SystemID != "" {
        p.recomputeSystem(ctx, event.Task.SystemID)
    }
    if event.Task.InterfaceID != "" {
        p.recomputeInterface(ctx, event.Task.InterfaceID)
    }
}

// updateTaskStatus aligns the task's own status with its newest result.
func (p *Propagator) updateTaskStatus(ctx context.Context, event TaskStatusChangedEvent) {
    task, err := p.store.GetTask(ctx, event.Task.ID)
    if err != nil {
        logrus.WithError(err).WithField("task_id", event.Task.ID).Warn("Task not found while updating status")
        return
    }
    if task.Status == event.Result.Status {
        return
    }
    task.Status = event.Result.Status
    if err := p.store.UpdateTask(ctx, task); err != nil {
        logrus.WithError(err).WithField("task", task.Name).Error("Failed to persist task status")
    }
}

// ActivityStatusFromTasks derives an activity's status from its tasks: no
// failing tasks means UP, exactly one means COMPROMISED, two or more mean
// DOWN. The second return is false when there are no tasks at all, in which
// case there is no basis to recompute.
func ActivityStatusFromTasks(tasks []database.Task) (database.OperationalStatus, bool) {
    if len(tasks) == 0 {
        return "", false
    }
    fails := 0
    for _, t := range tasks {
        if t.Status == database.TaskFail {
            fails++
        }
    }
    switch {
    case fails == 0:
        return database.StatusUp, true
    case fails == 1:
        return database.StatusCompromised, true
    default:
        return database.StatusDown, true
    }
}

// RollupStatus aggregates child statuses one level up. DOWN dominates
// COMPROMISED, which dominates UP.
func RollupStatus(children []database.OperationalStatus) database.OperationalStatus {
    downs, compromised := 0, 0
    for _, status := range children {
        switch status {
        case database.StatusDown:
            downs++
        case database.StatusCompromised:
            compromised++
        }
    }
    switch {
    case downs > 0:
        return database.StatusDown
    case compromised > 0:
        return database.StatusCompromised
    default:
        return database.StatusUp
    }
}

func (p *Propagator) recomputeActivity(ctx context.Context, activity *database.Activity) {
    tasks, err := p.store.GetTasksByActivity(ctx, activity.ID)
    if err != nil {
        logrus.WithError(err).WithField("activity", activity.Name).Error("Failed to load tasks for activity recompute")
        return
    }

    status, ok := ActivityStatusFromTasks(tasks)
    if !ok {
        logrus.WithField("activity", activity.Name).Warn("No tasks found for activity, leaving status unchanged")
        return
    }
    if activity.Status == status {
        return
    }

    activity.Status = status
    if err := p.store.UpdateActivity(ctx, activity); err != nil {
        logrus.WithError(err).WithField("activity", activity.Name).Error("Failed to persist activity status")
        return
    }
    p.notify("activity", activity.ID, activity.Name, status)
}

func (p *Propagator) recomputeSubprocess(ctx context.Context, subprocess *database.Subprocess) {
    activities, err := p.store.GetActivitiesBySubprocess(ctx, subprocess.ID)
    if err != nil {
        logrus.WithError(err).WithField("subprocess", subprocess.Name).Error("Failed to load activities for subprocess recompute")
        return
    }
    if len(activities) == 0 {
        logrus.WithField("subprocess", subprocess.Name).Warn("No activities found for subprocess, leaving status unchanged")
        return
    }

    statuses := make([]database.OperationalStatus, 0, len(activities))
    for _, a := range activities {
        statuses = append(statuses, a.Status)
    }
    status := RollupStatus(statuses)
    if subprocess.Status == status {
        return
    }

    subprocess.Status = status
    if err := p.store.UpdateSubprocess(ctx, subprocess); err != nil {
        logrus.WithError(err).WithField("subprocess", subprocess.Name).Error("Failed to persist subprocess status")
        return
    }
    p.notify("subprocess", subprocess.ID, subprocess.Name, status)
}

func (p *Propagator) recomputeProcess(ctx context.Context, process *database.Process) {
    subprocesses, err := p.store.GetSubprocessesByProcess(ctx, process.ID)
    if err != nil {
        logrus.WithError(err).WithField("process", process.Name).Error("Failed to load subprocesses for process recompute")
        return
    }
    if len(subprocesses) == 0 {
        logrus.WithField("process", process.Name).Warn("No subprocesses found for process, leaving status unchanged")
        return
    }

    statuses := make([]database.OperationalStatus, 0, len(subprocesses))
    for _, sp := range subprocesses {
        statuses = append(statuses, sp.Status)
    }
    status := RollupStatus(statuses)
    if process.Status == status {
        return
    }

    process.Status = status
    if err := p.store.UpdateProcess(ctx, process); err != nil {
        logrus.WithError(err).WithField("process", process.Name).Error("Failed to persist process status")
        return
    }
    p.notify("process", process.ID, process.Name, status)
}

func (p *Propagator) recomputeSystem(ctx context.Context, systemID string) {
    system, err := p.store.GetSystem(ctx, systemID)
    if err != nil {
        logrus.WithError(err).WithField("system_id", systemID).Warn("System not found, skipping recompute")
        return
    }
    tasks, err := p.store.GetTasksBySystem(ctx, systemID)
    if err != nil {
        logrus.WithError(err).WithField("system", system.Name).Error("Failed to load tasks for system recompute")
        return
    }

    status, ok := ActivityStatusFromTasks(tasks)
    if !ok {
        logrus.WithField("system", system.Name).Warn("No tasks found for system, leaving status unchanged")
        return
    }
    if system.Status == status {
        return
    }

    system.Status = status
    if err := p.store.UpdateSystem(ctx, system); err != nil {
        logrus.WithError(err).WithField("system", system.Name).Error("Failed to persist system status")
        return
    }
    p.notify("system", system.ID, system.Name, status)
}

func (p *Propagator) recomputeInterface(ctx context.Context, interfaceID string) {
    iface, err := p.store.GetInterface(ctx, interfaceID)
    if err != nil {
        logrus.WithError(err).WithField("interface_id", interfaceID).Warn("Interface not found, skipping recompute")
        return
    }
    tasks, err := p.store.GetTasksByInterface(ctx, interfaceID)
    if err != nil {
        logrus.WithError(err).WithField("interface", iface.Name).Error("Failed to load tasks for interface recompute")
        return
    }

    status, ok := ActivityStatusFromTasks(tasks)
    if !ok {
        logrus.WithField("interface", iface.Name).Warn("No tasks found for interface, leaving status unchanged")
        return
    }
    if iface.Status == status {
        return
    }

    iface.Status = status
    if err := p.store.UpdateInterface(ctx, iface); err != nil {
        logrus.WithError(err).WithField("interface", iface.Name).Error("Failed to persist interface status")
        return
    }
    p.notify("interface", iface.ID, iface.Name, status)
}

func (p *Propagator) notify(level, id, name string, status database.OperationalStatus) {
    logrus.WithFields(logrus.Fields{
        "level":  level,
        "name":   name,
        "status": status,
    }).Info("Status changed")

    if p.metrics != nil {
        p.metrics.RecordEntityStatus(level, name, status)
    }
    if p.listener != nil {
        p.listener(level, id, name, status)
    }
}
