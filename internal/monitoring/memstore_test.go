// internal/monitoring/memstore_test.go - in-memory Store used across the
// package's tests
package monitoring

import (
    "context"
    "errors"
    "sync"
    "time"

    "github.com/google/uuid"

    "bpmon/internal/database"
)

type memStore struct {
    mu           sync.Mutex
    processes    map[string]database.Process
    subprocesses map[string]database.Subprocess
    activities   map[string]database.Activity
    systems      map[string]database.System
    interfaces   map[string]database.Interface
    tasks        map[string]database.Task
    results      []database.ValidationResult
    taskErrors   []database.TaskError

    failResultWrites bool
    failDeletes      bool
}

func newMemStore() *memStore {
    return &memStore{
        processes:    make(map[string]database.Process),
        subprocesses: make(map[string]database.Subprocess),
        activities:   make(map[string]database.Activity),
        systems:      make(map[string]database.System),
        interfaces:   make(map[string]database.Interface),
        tasks:        make(map[string]database.Task),
    }
}

var errStoreBroken = errors.New("store broken")

func (m *memStore) GetProcesses(ctx context.Context) ([]database.Process, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := make([]database.Process, 0, len(m.processes))
    for _, p := range m.processes {
        out = append(out, p)
    }
    return out, nil
}

func (m *memStore) GetProcess(ctx context.Context, id string) (*database.Process, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    p, ok := m.processes[id]
    if !ok {
        return nil, database.ErrNotFound
    }
    return &p, nil
}

func (m *memStore) CreateProcess(ctx context.Context, p *database.Process) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if p.ID == "" {
        p.ID = uuid.New().String()
    }
    if p.Status == "" {
        p.Status = database.StatusUnrun
    }
    m.processes[p.ID] = *p
    return nil
}

func (m *memStore) UpdateProcess(ctx context.Context, p *database.Process) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.processes[p.ID] = *p
    return nil
}

func (m *memStore) DeleteProcess(ctx context.Context, id string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    delete(m.processes, id)
    return nil
}

func (m *memStore) GetSubprocesses(ctx context.Context) ([]database.Subprocess, error) {
    return m.subprocessesWhere(func(sp database.Subprocess) bool { return true })
}

func (m *memStore) GetSubprocessesByProcess(ctx context.Context, processID string) ([]database.Subprocess, error) {
    return m.subprocessesWhere(func(sp database.Subprocess) bool { return sp.ProcessID == processID })
}

func (m *memStore) subprocessesWhere(match func(database.Subprocess) bool) ([]database.Subprocess, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []database.Subprocess
    for _, sp := range m.subprocesses {
        if match(sp) {
            out = append(out, sp)
        }
    }
    return out, nil
}

func (m *memStore) GetSubprocess(ctx context.Context, id string) (*database.Subprocess, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    sp, ok := m.subprocesses[id]
    if !ok {
        return nil, database.ErrNotFound
    }
    return &sp, nil
}

func (m *memStore) CreateSubprocess(ctx context.Context, sp *database.Subprocess) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if sp.ID == "" {
        sp.ID = uuid.New().String()
    }
    if sp.Status == "" {
        sp.Status = database.StatusUnrun
    }
    m.subprocesses[sp.ID] = *sp
    return nil
}

func (m *memStore) UpdateSubprocess(ctx context.Context, sp *database.Subprocess) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.subprocesses[sp.ID] = *sp
    return nil
}

func (m *memStore) DeleteSubprocess(ctx context.Context, id string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    delete(m.subprocesses, id)
    return nil
}

func (m *memStore) GetActivities(ctx context.Context) ([]database.Activity, error) {
    return m.activitiesWhere(func(a database.Activity) bool { return true })
}

func (m *memStore) GetActivitiesBySubprocess(ctx context.Context, subprocessID string) ([]database.Activity, error) {
    return m.activitiesWhere(func(a database.Activity) bool { return a.SubprocessID == subprocessID })
}

func (m *memStore) activitiesWhere(match func(database.Activity) bool) ([]database.Activity, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []database.Activity
    for _, a := range m.activities {
        if match(a) {
            out = append(out, a)
        }
    }
    return out, nil
}

func (m *memStore) GetActivity(ctx context.Context, id string) (*database.Activity, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    a, ok := m.activities[id]
    if !ok {
        return nil, database.ErrNotFound
    }
    return &a, nil
}

func (m *memStore) CreateActivity(ctx context.Context, a *database.Activity) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if a.ID == "" {
        a.ID = uuid.New().String()
    }
    if a.Status == "" {
        a.Status = database.StatusUnrun
    }
    m.activities[a.ID] = *a
    return nil
}

func (m *memStore) UpdateActivity(ctx context.Context, a *database.Activity) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.activities[a.ID] = *a
    return nil
}

func (m *memStore) DeleteActivity(ctx context.Context, id string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    delete(m.activities, id)
    return nil
}

func (m *memStore) GetSystems(ctx context.Context) ([]database.System, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := make([]database.System, 0, len(m.systems))
    for _, s := range m.systems {
        out = append(out, s)
    }
    return out, nil
}

func (m *memStore) GetSystem(ctx context.Context, id string) (*database.System, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    s, ok := m.systems[id]
    if !ok {
        return nil, database.ErrNotFound
    }
    return &s, nil
}

func (m *memStore) CreateSystem(ctx context.Context, s *database.System) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if s.ID == "" {
        s.ID = uuid.New().String()
    }
    if s.Status == "" {
        s.Status = database.StatusUnrun
    }
    m.systems[s.ID] = *s
    return nil
}

func (m *memStore) UpdateSystem(ctx context.Context, s *database.System) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.systems[s.ID] = *s
    return nil
}

func (m *memStore) DeleteSystem(ctx context.Context, id string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    delete(m.systems, id)
    return nil
}

func (m *memStore) GetInterfaces(ctx context.Context) ([]database.Interface, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := make([]database.Interface, 0, len(m.interfaces))
    for _, i := range m.interfaces {
        out = append(out, i)
    }
    return out, nil
}

func (m *memStore) GetInterface(ctx context.Context, id string) (*database.Interface, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    i, ok := m.interfaces[id]
    if !ok {
        return nil, database.ErrNotFound
    }
    return &i, nil
}

func (m *memStore) CreateInterface(ctx context.Context, i *database.Interface) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if i.ID == "" {
        i.ID = uuid.New().String()
    }
    if i.Status == "" {
        i.Status = database.StatusUnrun
    }
    m.interfaces[i.ID] = *i
    return nil
}

func (m *memStore) UpdateInterface(ctx context.Context, i *database.Interface) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.interfaces[i.ID] = *i
    return nil
}

func (m *memStore) DeleteInterface(ctx context.Context, id string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    delete(m.interfaces, id)
    return nil
}

func (m *memStore) GetTasks(ctx context.Context) ([]database.Task, error) {
    return m.tasksWhere(func(t database.Task) bool { return true })
}

func (m *memStore) GetTasksByRecurrence(ctx context.Context, r database.Recurrence) ([]database.Task, error) {
    return m.tasksWhere(func(t database.Task) bool { return t.Recurrence == r })
}

func (m *memStore) GetTasksByActivity(ctx context.Context, activityID string) ([]database.Task, error) {
    return m.tasksWhere(func(t database.Task) bool { return t.ActivityID == activityID })
}

func (m *memStore) GetTasksBySystem(ctx context.Context, systemID string) ([]database.Task, error) {
    return m.tasksWhere(func(t database.Task) bool { return t.SystemID == systemID })
}

func (m *memStore) GetTasksByInterface(ctx context.Context, interfaceID string) ([]database.Task, error) {
    return m.tasksWhere(func(t database.Task) bool { return t.InterfaceID == interfaceID })
}

func (m *memStore) tasksWhere(match func(database.Task) bool) ([]database.Task, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []database.Task
    for _, t := range m.tasks {
        if match(t) {
            out = append(out, t)
        }
    }
    return out, nil
}

func (m *memStore) GetTask(ctx context.Context, id string) (*database.Task, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    t, ok := m.tasks[id]
    if !ok {
        return nil, database.ErrNotFound
    }
    return &t, nil
}

func (m *memStore) CreateTask(ctx context.Context, t *database.Task) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if t.ID == "" {
        t.ID = uuid.New().String()
    }
    if t.Status == "" {
        t.Status = database.TaskUnrun
    }
    m.tasks[t.ID] = *t
    return nil
}

func (m *memStore) UpdateTask(ctx context.Context, t *database.Task) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.tasks[t.ID] = *t
    return nil
}

func (m *memStore) DeleteTask(ctx context.Context, id string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    delete(m.tasks, id)
    return nil
}

func (m *memStore) CreateResult(ctx context.Context, r *database.ValidationResult) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.failResultWrites {
        return errStoreBroken
    }
    if r.ID == "" {
        r.ID = uuid.New().String()
    }
    if r.Timestamp.IsZero() {
        r.Timestamp = time.Now()
    }
    m.results = append(m.results, *r)
    return nil
}

func (m *memStore) GetResults(ctx context.Context, filters database.ResultFilters) ([]database.ValidationResult, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []database.ValidationResult
    for _, r := range m.results {
        if filters.TaskID != "" && r.TaskID != filters.TaskID {
            continue
        }
        if filters.Status != "" && r.Status != filters.Status {
            continue
        }
        if filters.Before != nil && !r.Timestamp.Before(*filters.Before) {
            continue
        }
        out = append(out, r)
        if filters.Limit > 0 && len(out) >= filters.Limit {
            break
        }
    }
    return out, nil
}

func (m *memStore) GetResultsByTask(ctx context.Context, taskID string) ([]database.ValidationResult, error) {
    return m.GetResults(ctx, database.ResultFilters{TaskID: taskID})
}

func (m *memStore) LatestResult(ctx context.Context, taskID string) (*database.ValidationResult, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var latest *database.ValidationResult
    for i := range m.results {
        r := m.results[i]
        if r.TaskID != taskID {
            continue
        }
        if latest == nil || r.Timestamp.After(latest.Timestamp) {
            latest = &r
        }
    }
    if latest == nil {
        return nil, database.ErrNotFound
    }
    return latest, nil
}

func (m *memStore) DeleteResultsBefore(ctx context.Context, status database.TaskStatus, cutoff time.Time) (int, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.failDeletes {
        return 0, errStoreBroken
    }
    var kept []database.ValidationResult
    deleted := 0
    for _, r := range m.results {
        if r.Status == status && r.Timestamp.Before(cutoff) {
            deleted++
            continue
        }
        kept = append(kept, r)
    }
    m.results = kept
    return deleted, nil
}

func (m *memStore) CreateTaskError(ctx context.Context, e *database.TaskError) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if e.ID == "" {
        e.ID = uuid.New().String()
    }
    if e.Timestamp.IsZero() {
        e.Timestamp = time.Now()
    }
    m.taskErrors = append(m.taskErrors, *e)
    return nil
}

func (m *memStore) GetErrorsByResult(ctx context.Context, resultID string) ([]database.TaskError, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []database.TaskError
    for _, e := range m.taskErrors {
        if e.ResultID == resultID {
            out = append(out, e)
        }
    }
    return out, nil
}

func (m *memStore) DeleteErrorsBefore(ctx context.Context, cutoff time.Time) (int, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.failDeletes {
        return 0, errStoreBroken
    }
    var kept []database.TaskError
    deleted := 0
    for _, e := range m.taskErrors {
        if e.Timestamp.Before(cutoff) {
            deleted++
            continue
        }
        kept = append(kept, e)
    }
    m.taskErrors = kept
    return deleted, nil
}

func (m *memStore) Close() error { return nil }
