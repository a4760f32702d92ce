// internal/database/boltstore_extended.go - tasks, results, errors, cascades, retention
package database

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/google/uuid"
    "go.etcd.io/bbolt"
)

// resultKey orders validation results by time within a task prefix, so cursor
// scans return them oldest first.
func resultKey(taskID string, ts time.Time, id string) []byte {
    return []byte(fmt.Sprintf("%s:%019d:%s", taskID, ts.UnixNano(), id))
}

func errorKey(resultID, id string) []byte {
    return []byte(fmt.Sprintf("%s:%s", resultID, id))
}

func (s *BoltStore) GetTasks(ctx context.Context) ([]Task, error) {
    return s.tasks(func(t *Task) bool { return true })
}

func (s *BoltStore) GetTasksByRecurrence(ctx context.Context, r Recurrence) ([]Task, error) {
    return s.tasks(func(t *Task) bool { return t.Recurrence == r })
}

func (s *BoltStore) GetTasksByActivity(ctx context.Context, activityID string) ([]Task, error) {
    return s.tasks(func(t *Task) bool { return t.ActivityID == activityID })
}

func (s *BoltStore) GetTasksBySystem(ctx context.Context, systemID string) ([]Task, error) {
    return s.tasks(func(t *Task) bool { return t.SystemID == systemID })
}

func (s *BoltStore) GetTasksByInterface(ctx context.Context, interfaceID string) ([]Task, error) {
    return s.tasks(func(t *Task) bool { return t.InterfaceID == interfaceID })
}

func (s *BoltStore) tasks(match func(*Task) bool) ([]Task, error) {
    var out []Task
    err := s.db.View(func(tx *bbolt.Tx) error {
        return tx.Bucket(TasksBucket).ForEach(func(k, v []byte) error {
            var t Task
            if err := json.Unmarshal(v, &t); err != nil {
                return fmt.Errorf("failed to unmarshal task %s: %w", k, err)
            }
            if match(&t) {
                out = append(out, t)
            }
            return nil
        })
    })
    return out, err
}

func (s *BoltStore) GetTask(ctx context.Context, id string) (*Task, error) {
    var t Task
    if err := s.get(TasksBucket, id, &t); err != nil {
        return nil, err
    }
    return &t, nil
}

func (s *BoltStore) CreateTask(ctx context.Context, t *Task) error {
    if t.ID == "" {
        t.ID = uuid.New().String()
    }
    if t.Status == "" {
        t.Status = TaskUnrun
    }
    t.CreatedAt = time.Now()
    t.UpdatedAt = time.Now()

    return s.db.Update(func(tx *bbolt.Tx) error {
        if tx.Bucket(ActivitiesBucket).Get([]byte(t.ActivityID)) == nil {
            return fmt.Errorf("activity %s: %w", t.ActivityID, ErrNotFound)
        }
        if t.SystemID != "" && tx.Bucket(SystemsBucket).Get([]byte(t.SystemID)) == nil {
            return fmt.Errorf("system %s: %w", t.SystemID, ErrNotFound)
        }
        if t.InterfaceID != "" && tx.Bucket(InterfacesBucket).Get([]byte(t.InterfaceID)) == nil {
            return fmt.Errorf("interface %s: %w", t.InterfaceID, ErrNotFound)
        }
        return put(tx, TasksBucket, t.ID, t)
    })
}

func (s *BoltStore) UpdateTask(ctx context.Context, t *Task) error {
    t.UpdatedAt = time.Now()
    return s.db.Update(func(tx *bbolt.Tx) error {
        return put(tx, TasksBucket, t.ID, t)
    })
}

// DeleteTask removes a task together with its validation results and their
// errors, in one transaction.
func (s *BoltStore) DeleteTask(ctx context.Context, id string) error {
    return s.db.Update(func(tx *bbolt.Tx) error {
        return deleteTaskTx(tx, id)
    })
}

func deleteTaskTx(tx *bbolt.Tx, taskID string) error {
    results := tx.Bucket(ResultsBucket)
    c := results.Cursor()
    prefix := []byte(taskID + ":")

    var resultKeys [][]byte
    var resultIDs []string
    for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
        var r ValidationResult
        if err := json.Unmarshal(v, &r); err == nil {
            resultIDs = append(resultIDs, r.ID)
        }
        resultKeys = append(resultKeys, append([]byte(nil), k...))
    }
    for _, k := range resultKeys {
        if err := results.Delete(k); err != nil {
            return err
        }
    }
    for _, rid := range resultIDs {
        if err := deleteErrorsByResultTx(tx, rid); err != nil {
            return err
        }
    }
    return tx.Bucket(TasksBucket).Delete([]byte(taskID))
}

func deleteErrorsByResultTx(tx *bbolt.Tx, resultID string) error {
    b := tx.Bucket(ErrorsBucket)
    c := b.Cursor()
    prefix := []byte(resultID + ":")

    var keys [][]byte
    for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
        keys = append(keys, append([]byte(nil), k...))
    }
    for _, k := range keys {
        if err := b.Delete(k); err != nil {
            return err
        }
    }
    return nil
}

// DeleteActivity cascades to the activity's tasks, their results and errors.
func (s *BoltStore) DeleteActivity(ctx context.Context, id string) error {
    return s.db.Update(func(tx *bbolt.Tx) error {
        return deleteActivityTx(tx, id)
    })
}

func deleteActivityTx(tx *bbolt.Tx, activityID string) error {
    var taskIDs []string
    err := tx.Bucket(TasksBucket).ForEach(func(k, v []byte) error {
        var t Task
        if err := json.Unmarshal(v, &t); err != nil {
            return nil
        }
        if t.ActivityID == activityID {
            taskIDs = append(taskIDs, t.ID)
        }
        return nil
    })
    if err != nil {
        return err
    }
    for _, tid := range taskIDs {
        if err := deleteTaskTx(tx, tid); err != nil {
            return err
        }
    }
    return tx.Bucket(ActivitiesBucket).Delete([]byte(activityID))
}

// DeleteSubprocess cascades through its activities.
func (s *BoltStore) DeleteSubprocess(ctx context.Context, id string) error {
    return s.db.Update(func(tx *bbolt.Tx) error {
        return deleteSubprocessTx(tx, id)
    })
}

func deleteSubprocessTx(tx *bbolt.Tx, subprocessID string) error {
    var activityIDs []string
    err := tx.Bucket(ActivitiesBucket).ForEach(func(k, v []byte) error {
        var a Activity
        if err := json.Unmarshal(v, &a); err != nil {
            return nil
        }
        if a.SubprocessID == subprocessID {
            activityIDs = append(activityIDs, a.ID)
        }
        return nil
    })
    if err != nil {
        return err
    }
    for _, aid := range activityIDs {
        if err := deleteActivityTx(tx, aid); err != nil {
            return err
        }
    }
    return tx.Bucket(SubprocessesBucket).Delete([]byte(subprocessID))
}

// DeleteProcess cascades through its subprocesses.
func (s *BoltStore) DeleteProcess(ctx context.Context, id string) error {
    return s.db.Update(func(tx *bbolt.Tx) error {
        var subprocessIDs []string
        err := tx.Bucket(SubprocessesBucket).ForEach(func(k, v []byte) error {
            var sp Subprocess
            if err := json.Unmarshal(v, &sp); err != nil {
                return nil
            }
            if sp.ProcessID == id {
                subprocessIDs = append(subprocessIDs, sp.ID)
            }
            return nil
        })
        if err != nil {
            return err
        }
        for _, sid := range subprocessIDs {
            if err := deleteSubprocessTx(tx, sid); err != nil {
                return err
            }
        }
        return tx.Bucket(ProcessesBucket).Delete([]byte(id))
    })
}

// DeleteSystem detaches referencing tasks before removing the system, so the
// propagation engine never chases a dangling target.
func (s *BoltStore) DeleteSystem(ctx context.Context, id string) error {
    return s.db.Update(func(tx *bbolt.Tx) error {
        if err := detachTasksTx(tx, func(t *Task) bool { return t.SystemID == id }, func(t *Task) { t.SystemID = "" }); err != nil {
            return err
        }
        return tx.Bucket(SystemsBucket).Delete([]byte(id))
    })
}

func (s *BoltStore) DeleteInterface(ctx context.Context, id string) error {
    return s.db.Update(func(tx *bbolt.Tx) error {
        if err := detachTasksTx(tx, func(t *Task) bool { return t.InterfaceID == id }, func(t *Task) { t.InterfaceID = "" }); err != nil {
            return err
        }
        return tx.Bucket(InterfacesBucket).Delete([]byte(id))
    })
}

func detachTasksTx(tx *bbolt.Tx, match func(*Task) bool, clear func(*Task)) error {
    var detached []Task
    err := tx.Bucket(TasksBucket).ForEach(func(k, v []byte) error {
        var t Task
        if err := json.Unmarshal(v, &t); err != nil {
            return nil
        }
        if match(&t) {
            clear(&t)
            t.UpdatedAt = time.Now()
            detached = append(detached, t)
        }
        return nil
    })
    if err != nil {
        return err
    }
    for i := range detached {
        if err := put(tx, TasksBucket, detached[i].ID, &detached[i]); err != nil {
            return err
        }
    }
    return nil
}

func (s *BoltStore) CreateResult(ctx context.Context, r *ValidationResult) error {
    if r.ID == "" {
        r.ID = uuid.New().String()
    }
    if r.Timestamp.IsZero() {
        r.Timestamp = time.Now()
    }

    return s.db.Update(func(tx *bbolt.Tx) error {
        if tx.Bucket(TasksBucket).Get([]byte(r.TaskID)) == nil {
            return fmt.Errorf("task %s: %w", r.TaskID, ErrNotFound)
        }
        return tx.Bucket(ResultsBucket).Put(resultKey(r.TaskID, r.Timestamp, r.ID), mustMarshal(r))
    })
}

func mustMarshal(v interface{}) []byte {
    data, _ := json.Marshal(v)
    return data
}

func (s *BoltStore) GetResults(ctx context.Context, filters ResultFilters) ([]ValidationResult, error) {
    var out []ValidationResult
    err := s.db.View(func(tx *bbolt.Tx) error {
        return tx.Bucket(ResultsBucket).ForEach(func(k, v []byte) error {
            var r ValidationResult
            if err := json.Unmarshal(v, &r); err != nil {
                return nil // Skip malformed entries
            }
            if filters.TaskID != "" && r.TaskID != filters.TaskID {
                return nil
            }
            if filters.Status != "" && r.Status != filters.Status {
                return nil
            }
            if filters.Before != nil && !r.Timestamp.Before(*filters.Before) {
                return nil
            }
            out = append(out, r)
            if filters.Limit > 0 && len(out) >= filters.Limit {
                return errLimitReached
            }
            return nil
        })
    })
    if err == errLimitReached {
        err = nil
    }
    return out, err
}

var errLimitReached = fmt.Errorf("limit_reached")

func (s *BoltStore) GetResultsByTask(ctx context.Context, taskID string) ([]ValidationResult, error) {
    var out []ValidationResult
    err := s.db.View(func(tx *bbolt.Tx) error {
        c := tx.Bucket(ResultsBucket).Cursor()
        prefix := []byte(taskID + ":")
        for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
            var r ValidationResult
            if err := json.Unmarshal(v, &r); err != nil {
                continue
            }
            out = append(out, r)
        }
        return nil
    })
    return out, err
}

// LatestResult returns the most recent validation result for a task, or
// ErrNotFound when the task has never run.
func (s *BoltStore) LatestResult(ctx context.Context, taskID string) (*ValidationResult, error) {
    var latest *ValidationResult
    err := s.db.View(func(tx *bbolt.Tx) error {
        c := tx.Bucket(ResultsBucket).Cursor()
        prefix := []byte(taskID + ":")
        for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
            var r ValidationResult
            if err := json.Unmarshal(v, &r); err != nil {
                continue
            }
            latest = &r
        }
        return nil
    })
    if err != nil {
        return nil, err
    }
    if latest == nil {
        return nil, ErrNotFound
    }
    return latest, nil
}

// DeleteResultsBefore removes validation results with the given status whose
// timestamp is strictly before cutoff, along with their attached errors.
// It returns the number of results removed.
func (s *BoltStore) DeleteResultsBefore(ctx context.Context, status TaskStatus, cutoff time.Time) (int, error) {
    deleted := 0
    err := s.db.Update(func(tx *bbolt.Tx) error {
        b := tx.Bucket(ResultsBucket)

        var keys [][]byte
        var resultIDs []string
        err := b.ForEach(func(k, v []byte) error {
            var r ValidationResult
            if err := json.Unmarshal(v, &r); err != nil {
                return nil
            }
            if r.Status == status && r.Timestamp.Before(cutoff) {
                keys = append(keys, append([]byte(nil), k...))
                resultIDs = append(resultIDs, r.ID)
            }
            return nil
        })
        if err != nil {
            return err
        }
        for _, k := range keys {
            if err := b.Delete(k); err != nil {
                return err
            }
        }
        for _, rid := range resultIDs {
            if err := deleteErrorsByResultTx(tx, rid); err != nil {
                return err
            }
        }
        deleted = len(keys)
        return nil
    })
    return deleted, err
}

func (s *BoltStore) CreateTaskError(ctx context.Context, e *TaskError) error {
    if e.ID == "" {
        e.ID = uuid.New().String()
    }
    if e.Timestamp.IsZero() {
        e.Timestamp = time.Now()
    }

    return s.db.Update(func(tx *bbolt.Tx) error {
        return tx.Bucket(ErrorsBucket).Put(errorKey(e.ResultID, e.ID), mustMarshal(e))
    })
}

func (s *BoltStore) GetErrorsByResult(ctx context.Context, resultID string) ([]TaskError, error) {
    var out []TaskError
    err := s.db.View(func(tx *bbolt.Tx) error {
        c := tx.Bucket(ErrorsBucket).Cursor()
        prefix := []byte(resultID + ":")
        for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
            var e TaskError
            if err := json.Unmarshal(v, &e); err != nil {
                continue
            }
            out = append(out, e)
        }
        return nil
    })
    return out, err
}

// DeleteErrorsBefore removes task errors older than cutoff and returns how
// many were removed.
func (s *BoltStore) DeleteErrorsBefore(ctx context.Context, cutoff time.Time) (int, error) {
    deleted := 0
    err := s.db.Update(func(tx *bbolt.Tx) error {
        b := tx.Bucket(ErrorsBucket)

        var keys [][]byte
        err := b.ForEach(func(k, v []byte) error {
            var e TaskError
            if err := json.Unmarshal(v, &e); err != nil {
                return nil
            }
            if e.Timestamp.Before(cutoff) {
                keys = append(keys, append([]byte(nil), k...))
            }
            return nil
        })
        if err != nil {
            return err
        }
        for _, k := range keys {
            if err := b.Delete(k); err != nil {
                return err
            }
        }
        deleted = len(keys)
        return nil
    })
    return deleted, err
}
