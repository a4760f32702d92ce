// internal/database/store.go
package database

import (
    "context"
    "errors"
    "time"
)

// ErrNotFound is returned when a looked-up entity does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for database operations.
type Store interface {
    // Process operations
    GetProcesses(ctx context.Context) ([]Process, error)
    GetProcess(ctx context.Context, id string) (*Process, error)
    CreateProcess(ctx context.Context, p *Process) error
    UpdateProcess(ctx context.Context, p *Process) error
    DeleteProcess(ctx context.Context, id string) error

    // Subprocess operations
    GetSubprocesses(ctx context.Context) ([]Subprocess, error)
    GetSubprocessesByProcess(ctx context.Context, processID string) ([]Subprocess, error)
    GetSubprocess(ctx context.Context, id string) (*Subprocess, error)
    CreateSubprocess(ctx context.Context, sp *Subprocess) error
    UpdateSubprocess(ctx context.Context, sp *Subprocess) error
    DeleteSubprocess(ctx context.Context, id string) error

    // Activity operations
    GetActivities(ctx context.Context) ([]Activity, error)
    GetActivitiesBySubprocess(ctx context.Context, subprocessID string) ([]Activity, error)
    GetActivity(ctx context.Context, id string) (*Activity, error)
    CreateActivity(ctx context.Context, a *Activity) error
    UpdateActivity(ctx context.Context, a *Activity) error
    DeleteActivity(ctx context.Context, id string) error

    // System operations
    GetSystems(ctx context.Context) ([]System, error)
    GetSystem(ctx context.Context, id string) (*System, error)
    CreateSystem(ctx context.Context, s *System) error
    UpdateSystem(ctx context.Context, s *System) error
    DeleteSystem(ctx context.Context, id string) error

    // Interface operations
    GetInterfaces(ctx context.Context) ([]Interface, error)
    GetInterface(ctx context.Context, id string) (*Interface, error)
    CreateInterface(ctx context.Context, i *Interface) error
    UpdateInterface(ctx context.Context, i *Interface) error
    DeleteInterface(ctx context.Context, id string) error

    // Task operations
    GetTasks(ctx context.Context) ([]Task, error)
    GetTask(ctx context.Context, id string) (*Task, error)
    GetTasksByRecurrence(ctx context.Context, r Recurrence) ([]Task, error)
    GetTasksByActivity(ctx context.Context, activityID string) ([]Task, error)
    GetTasksBySystem(ctx context.Context, systemID string) ([]Task, error)
    GetTasksByInterface(ctx context.Context, interfaceID string) ([]Task, error)
    CreateTask(ctx context.Context, t *Task) error
    UpdateTask(ctx context.Context, t *Task) error
    DeleteTask(ctx context.Context, id string) error

    // Validation result operations
    CreateResult(ctx context.Context, r *ValidationResult) error
    GetResults(ctx context.Context, filters ResultFilters) ([]ValidationResult, error)
    GetResultsByTask(ctx context.Context, taskID string) ([]ValidationResult, error)
    LatestResult(ctx context.Context, taskID string) (*ValidationResult, error)
    DeleteResultsBefore(ctx context.Context, status TaskStatus, cutoff time.Time) (int, error)

    // Task error operations
    CreateTaskError(ctx context.Context, e *TaskError) error
    GetErrorsByResult(ctx context.Context, resultID string) ([]TaskError, error)
    DeleteErrorsBefore(ctx context.Context, cutoff time.Time) (int, error)

    // Close the database connection
    Close() error
}
