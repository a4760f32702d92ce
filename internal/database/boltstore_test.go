// internal/database/boltstore_test.go
package database

import (
    "context"
    "encoding/json"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
    t.Helper()
    store, err := NewBoltStore(filepath.Join(t.TempDir(), "bpmon.db"))
    require.NoError(t, err)
    t.Cleanup(func() { store.Close() })
    return store
}

// seedChain creates a process -> subprocess -> activity -> task chain.
func seedChain(t *testing.T, store Store) (*Process, *Subprocess, *Activity, *Task) {
    t.Helper()
    ctx := context.Background()

    p := &Process{Name: "order-fulfillment"}
    require.NoError(t, store.CreateProcess(ctx, p))

    sp := &Subprocess{Name: "shipping", ProcessID: p.ID}
    require.NoError(t, store.CreateSubprocess(ctx, sp))

    a := &Activity{Name: "label-printing", SubprocessID: sp.ID}
    require.NoError(t, store.CreateActivity(ctx, a))

    task := &Task{
        Name:       "print-service-check",
        Kind:       KindHTTPCheck,
        Recurrence: Every5Minutes,
        Payload:    json.RawMessage(`{"URL": "https://printers.internal/health"}`),
        ActivityID: a.ID,
    }
    require.NoError(t, store.CreateTask(ctx, task))

    return p, sp, a, task
}

func TestCreateDefaultsStatusToUnrun(t *testing.T) {
    store := newTestStore(t)
    _, _, a, task := seedChain(t, store)

    assert.Equal(t, StatusUnrun, a.Status)
    assert.Equal(t, TaskUnrun, task.Status)
    assert.NotEmpty(t, task.ID)
}

func TestCreateRejectsMissingParents(t *testing.T) {
    store := newTestStore(t)
    ctx := context.Background()

    err := store.CreateSubprocess(ctx, &Subprocess{Name: "orphan", ProcessID: "nope"})
    assert.ErrorIs(t, err, ErrNotFound)

    err = store.CreateActivity(ctx, &Activity{Name: "orphan", SubprocessID: "nope"})
    assert.ErrorIs(t, err, ErrNotFound)

    err = store.CreateTask(ctx, &Task{Name: "orphan", ActivityID: "nope"})
    assert.ErrorIs(t, err, ErrNotFound)

    err = store.CreateInterface(ctx, &Interface{Name: "orphan", OriginSystemID: "nope", DestinationSystemID: "nope"})
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTaskRejectsMissingTarget(t *testing.T) {
    store := newTestStore(t)
    _, _, a, _ := seedChain(t, store)

    err := store.CreateTask(context.Background(), &Task{
        Name:       "dangling",
        ActivityID: a.ID,
        SystemID:   "nope",
    })
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReturnsErrNotFound(t *testing.T) {
    store := newTestStore(t)
    ctx := context.Background()

    _, err := store.GetProcess(ctx, "missing")
    assert.ErrorIs(t, err, ErrNotFound)
    _, err = store.GetTask(ctx, "missing")
    assert.ErrorIs(t, err, ErrNotFound)
    _, err = store.LatestResult(ctx, "missing")
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskQueries(t *testing.T) {
    store := newTestStore(t)
    ctx := context.Background()
    _, _, a, task := seedChain(t, store)

    sys := &System{Name: "erp"}
    require.NoError(t, store.CreateSystem(ctx, sys))

    sysTask := &Task{
        Name:       "erp-ping",
        Kind:       KindPing,
        Recurrence: Hourly,
        Payload:    json.RawMessage(`{"HOST": "erp.internal", "RESPONSIBLEPARTY": "ops@example.com"}`),
        ActivityID: a.ID,
        SystemID:   sys.ID,
    }
    require.NoError(t, store.CreateTask(ctx, sysTask))

    byRecurrence, err := store.GetTasksByRecurrence(ctx, Every5Minutes)
    require.NoError(t, err)
    require.Len(t, byRecurrence, 1)
    assert.Equal(t, task.ID, byRecurrence[0].ID)

    byActivity, err := store.GetTasksByActivity(ctx, a.ID)
    require.NoError(t, err)
    assert.Len(t, byActivity, 2)

    bySystem, err := store.GetTasksBySystem(ctx, sys.ID)
    require.NoError(t, err)
    require.Len(t, bySystem, 1)
    assert.Equal(t, sysTask.ID, bySystem[0].ID)
}

func TestResultsOrderedAndLatest(t *testing.T) {
    store := newTestStore(t)
    ctx := context.Background()
    _, _, _, task := seedChain(t, store)

    base := time.Now().Add(-time.Hour)
    for i := 0; i < 3; i++ {
        r := &ValidationResult{
            TaskID:      task.ID,
            Status:      TaskSuccess,
            Timestamp:   base.Add(time.Duration(i) * time.Minute),
            Description: "run",
        }
        require.NoError(t, store.CreateResult(ctx, r))
    }

    results, err := store.GetResultsByTask(ctx, task.ID)
    require.NoError(t, err)
    require.Len(t, results, 3)
    for i := 1; i < len(results); i++ {
        assert.True(t, results[i].Timestamp.After(results[i-1].Timestamp), "results must come back oldest first")
    }

    latest, err := store.LatestResult(ctx, task.ID)
    require.NoError(t, err)
    assert.Equal(t, results[2].ID, latest.ID)
}

func TestCreateResultRequiresTask(t *testing.T) {
    store := newTestStore(t)
    err := store.CreateResult(context.Background(), &ValidationResult{TaskID: "missing", Status: TaskFail})
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetResultsFilters(t *testing.T) {
    store := newTestStore(t)
    ctx := context.Background()
    _, _, _, task := seedChain(t, store)

    old := time.Now().Add(-2 * time.Hour)
    recent := time.Now().Add(-time.Minute)
    require.NoError(t, store.CreateResult(ctx, &ValidationResult{TaskID: task.ID, Status: TaskFail, Timestamp: old}))
    require.NoError(t, store.CreateResult(ctx, &ValidationResult{TaskID: task.ID, Status: TaskSuccess, Timestamp: recent}))

    fails, err := store.GetResults(ctx, ResultFilters{Status: TaskFail})
    require.NoError(t, err)
    require.Len(t, fails, 1)
    assert.Equal(t, TaskFail, fails[0].Status)

    cutoff := time.Now().Add(-time.Hour)
    older, err := store.GetResults(ctx, ResultFilters{Before: &cutoff})
    require.NoError(t, err)
    require.Len(t, older, 1)
    assert.True(t, older[0].Timestamp.Before(cutoff))

    limited, err := store.GetResults(ctx, ResultFilters{Limit: 1})
    require.NoError(t, err)
    assert.Len(t, limited, 1)
}

func TestDeleteTaskCascadesResultsAndErrors(t *testing.T) {
    store := newTestStore(t)
    ctx := context.Background()
    _, _, _, task := seedChain(t, store)

    r := &ValidationResult{TaskID: task.ID, Status: TaskFail, Description: "boom"}
    require.NoError(t, store.CreateResult(ctx, r))
    require.NoError(t, store.CreateTaskError(ctx, &TaskError{ResultID: r.ID, Description: "boom"}))

    require.NoError(t, store.DeleteTask(ctx, task.ID))

    _, err := store.GetTask(ctx, task.ID)
    assert.ErrorIs(t, err, ErrNotFound)

    results, err := store.GetResultsByTask(ctx, task.ID)
    require.NoError(t, err)
    assert.Empty(t, results)

    taskErrors, err := store.GetErrorsByResult(ctx, r.ID)
    require.NoError(t, err)
    assert.Empty(t, taskErrors)
}

func TestDeleteProcessCascadesWholeChain(t *testing.T) {
    store := newTestStore(t)
    ctx := context.Background()
    p, sp, a, task := seedChain(t, store)

    r := &ValidationResult{TaskID: task.ID, Status: TaskFail}
    require.NoError(t, store.CreateResult(ctx, r))

    require.NoError(t, store.DeleteProcess(ctx, p.ID))

    _, err := store.GetSubprocess(ctx, sp.ID)
    assert.ErrorIs(t, err, ErrNotFound)
    _, err = store.GetActivity(ctx, a.ID)
    assert.ErrorIs(t, err, ErrNotFound)
    _, err = store.GetTask(ctx, task.ID)
    assert.ErrorIs(t, err, ErrNotFound)

    results, err := store.GetResultsByTask(ctx, task.ID)
    require.NoError(t, err)
    assert.Empty(t, results)
}

func TestDeleteSystemDetachesTasks(t *testing.T) {
    store := newTestStore(t)
    ctx := context.Background()
    _, _, a, _ := seedChain(t, store)

    sys := &System{Name: "erp"}
    require.NoError(t, store.CreateSystem(ctx, sys))

    task := &Task{
        Name:       "erp-ping",
        Kind:       KindPing,
        Recurrence: Hourly,
        Payload:    json.RawMessage(`{"HOST": "erp.internal", "RESPONSIBLEPARTY": "ops@example.com"}`),
        ActivityID: a.ID,
        SystemID:   sys.ID,
    }
    require.NoError(t, store.CreateTask(ctx, task))

    require.NoError(t, store.DeleteSystem(ctx, sys.ID))

    got, err := store.GetTask(ctx, task.ID)
    require.NoError(t, err, "task must survive system deletion")
    assert.Empty(t, got.SystemID)
}

func TestDeleteResultsBeforeRespectsStatusAndCutoff(t *testing.T) {
    store := newTestStore(t)
    ctx := context.Background()
    _, _, _, task := seedChain(t, store)

    cutoff := time.Now().Add(-24 * time.Hour)

    oldSuccess := &ValidationResult{TaskID: task.ID, Status: TaskSuccess, Timestamp: cutoff.Add(-time.Hour)}
    oldFail := &ValidationResult{TaskID: task.ID, Status: TaskFail, Timestamp: cutoff.Add(-time.Hour)}
    newSuccess := &ValidationResult{TaskID: task.ID, Status: TaskSuccess, Timestamp: cutoff.Add(time.Hour)}
    require.NoError(t, store.CreateResult(ctx, oldSuccess))
    require.NoError(t, store.CreateResult(ctx, oldFail))
    require.NoError(t, store.CreateResult(ctx, newSuccess))

    require.NoError(t, store.CreateTaskError(ctx, &TaskError{ResultID: oldSuccess.ID, Description: "stale"}))

    deleted, err := store.DeleteResultsBefore(ctx, TaskSuccess, cutoff)
    require.NoError(t, err)
    assert.Equal(t, 1, deleted)

    remaining, err := store.GetResultsByTask(ctx, task.ID)
    require.NoError(t, err)
    require.Len(t, remaining, 2)
    for _, r := range remaining {
        assert.NotEqual(t, oldSuccess.ID, r.ID)
    }

    // Errors attached to the deleted result go with it.
    taskErrors, err := store.GetErrorsByResult(ctx, oldSuccess.ID)
    require.NoError(t, err)
    assert.Empty(t, taskErrors)
}

func TestDeleteErrorsBefore(t *testing.T) {
    store := newTestStore(t)
    ctx := context.Background()

    cutoff := time.Now().Add(-7 * 24 * time.Hour)
    require.NoError(t, store.CreateTaskError(ctx, &TaskError{ResultID: "r1", Timestamp: cutoff.Add(-time.Hour)}))
    require.NoError(t, store.CreateTaskError(ctx, &TaskError{ResultID: "r2", Timestamp: cutoff.Add(time.Hour)}))

    deleted, err := store.DeleteErrorsBefore(ctx, cutoff)
    require.NoError(t, err)
    assert.Equal(t, 1, deleted)

    kept, err := store.GetErrorsByResult(ctx, "r2")
    require.NoError(t, err)
    assert.Len(t, kept, 1)
}

func TestUpdatePersistsStatusTransitions(t *testing.T) {
    store := newTestStore(t)
    ctx := context.Background()
    p, _, _, task := seedChain(t, store)

    task.Status = TaskFail
    require.NoError(t, store.UpdateTask(ctx, task))
    got, err := store.GetTask(ctx, task.ID)
    require.NoError(t, err)
    assert.Equal(t, TaskFail, got.Status)

    p.Status = StatusDown
    require.NoError(t, store.UpdateProcess(ctx, p))
    gotProc, err := store.GetProcess(ctx, p.ID)
    require.NoError(t, err)
    assert.Equal(t, StatusDown, gotProc.Status)
}
