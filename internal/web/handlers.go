// internal/web/handlers.go
package web

import (
    "encoding/json"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/sirupsen/logrus"

    "bpmon/internal/checks"
    "bpmon/internal/database"
)

type ProcessRequest struct {
    Name string `json:"name" binding:"required"`
}

type SubprocessRequest struct {
    Name      string `json:"name" binding:"required"`
    ProcessID string `json:"process_id" binding:"required"`
}

type ActivityRequest struct {
    Name         string `json:"name" binding:"required"`
    Description  string `json:"description"`
    SubprocessID string `json:"subprocess_id" binding:"required"`
}

type SystemRequest struct {
    Name          string `json:"name" binding:"required"`
    Goal          string `json:"goal"`
    TechnicalData string `json:"technical_data"`
}

type InterfaceRequest struct {
    Name                string `json:"name" binding:"required"`
    Goal                string `json:"goal"`
    TechnicalData       string `json:"technical_data"`
    OriginSystemID      string `json:"origin_system_id" binding:"required"`
    DestinationSystemID string `json:"destination_system_id" binding:"required"`
}

type TaskRequest struct {
    Name        string              `json:"name" binding:"required"`
    Description string              `json:"description"`
    Kind        database.TaskKind   `json:"kind" binding:"required"`
    Recurrence  database.Recurrence `json:"recurrence" binding:"required"`
    Payload     json.RawMessage     `json:"payload" binding:"required"`
    ActivityID  string              `json:"activity_id" binding:"required"`
    SystemID    string              `json:"system_id"`
    InterfaceID string              `json:"interface_id"`
}

func notFoundOrInternal(c *gin.Context, err error, entity string) {
    if errors.Is(err, database.ErrNotFound) {
        c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
        return
    }
    logrus.WithError(err).Error("Failed to get " + entity)
    c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get " + entity})
}

// Process handlers

func (s *Server) getProcesses(c *gin.Context) {
    processes, err := s.store.GetProcesses(c.Request.Context())
    if err != nil {
        logrus.WithError(err).Error("Failed to get processes")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get processes"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": processes, "count": len(processes)})
}

func (s *Server) getProcess(c *gin.Context) {
    process, err := s.store.GetProcess(c.Request.Context(), c.Param("id"))
    if err != nil {
        notFoundOrInternal(c, err, "process")
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": process})
}

func (s *Server) createProcess(c *gin.Context) {
    var req ProcessRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    process := &database.Process{Name: req.Name}
    if err := s.store.CreateProcess(c.Request.Context(), process); err != nil {
        logrus.WithError(err).Error("Failed to create process")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create process"})
        return
    }
    c.JSON(http.StatusCreated, gin.H{"data": process})
}

func (s *Server) updateProcess(c *gin.Context) {
    var req ProcessRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    process, err := s.store.GetProcess(c.Request.Context(), c.Param("id"))
    if err != nil {
        notFoundOrInternal(c, err, "process")
        return
    }

    process.Name = req.Name
    process.UpdatedAt = time.Now()
    if err := s.store.UpdateProcess(c.Request.Context(), process); err != nil {
        logrus.WithError(err).Error("Failed to update process")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update process"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": process})
}

func (s *Server) deleteProcess(c *gin.Context) {
    if err := s.store.DeleteProcess(c.Request.Context(), c.Param("id")); err != nil {
        if errors.Is(err, database.ErrNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "process not found"})
            return
        }
        logrus.WithError(err).Error("Failed to delete process")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete process"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "Process deleted successfully"})
}

// Subprocess handlers

func (s *Server) getSubprocesses(c *gin.Context) {
    ctx := c.Request.Context()

    var (
        subprocesses []database.Subprocess
        err          error
    )
    if processID := c.Query("process_id"); processID != "" {
        subprocesses, err = s.store.GetSubprocessesByProcess(ctx, processID)
    } else {
        subprocesses, err = s.store.GetSubprocesses(ctx)
    }
    if err != nil {
        logrus.WithError(err).Error("Failed to get subprocesses")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get subprocesses"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": subprocesses, "count": len(subprocesses)})
}

func (s *Server) getSubprocess(c *gin.Context) {
    subprocess, err := s.store.GetSubprocess(c.Request.Context(), c.Param("id"))
    if err != nil {
        notFoundOrInternal(c, err, "subprocess")
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": subprocess})
}

func (s *Server) createSubprocess(c *gin.Context) {
    var req SubprocessRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    subprocess := &database.Subprocess{
        Name:      req.Name,
        ProcessID: req.ProcessID,
    }
    if err := s.store.CreateSubprocess(c.Request.Context(), subprocess); err != nil {
        if errors.Is(err, database.ErrNotFound) {
            c.JSON(http.StatusBadRequest, gin.H{"error": "process not found"})
            return
        }
        logrus.WithError(err).Error("Failed to create subprocess")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subprocess"})
        return
    }
    c.JSON(http.StatusCreated, gin.H{"data": subprocess})
}

func (s *Server) updateSubprocess(c *gin.Context) {
    var req SubprocessRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    subprocess, err := s.store.GetSubprocess(c.Request.Context(), c.Param("id"))
    if err != nil {
        notFoundOrInternal(c, err, "subprocess")
        return
    }

    subprocess.Name = req.Name
    subprocess.ProcessID = req.ProcessID
    subprocess.UpdatedAt = time.Now()
    if err := s.store.UpdateSubprocess(c.Request.Context(), subprocess); err != nil {
        logrus.WithError(err).Error("Failed to update subprocess")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subprocess"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": subprocess})
}

func (s *Server) deleteSubprocess(c *gin.Context) {
    if err := s.store.DeleteSubprocess(c.Request.Context(), c.Param("id")); err != nil {
        if errors.Is(err, database.ErrNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "subprocess not found"})
            return
        }
        logrus.WithError(err).Error("Failed to delete subprocess")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subprocess"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "Subprocess deleted successfully"})
}

// Activity handlers

func (s *Server) getActivities(c *gin.Context) {
    ctx := c.Request.Context()

    var (
        activities []database.Activity
        err        error
    )
    if subprocessID := c.Query("subprocess_id"); subprocessID != "" {
        activities, err = s.store.GetActivitiesBySubprocess(ctx, subprocessID)
    } else {
        activities, err = s.store.GetActivities(ctx)
    }
    if err != nil {
        logrus.WithError(err).Error("Failed to get activities")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get activities"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": activities, "count": len(activities)})
}

func (s *Server) getActivity(c *gin.Context) {
    activity, err := s.store.GetActivity(c.Request.Context(), c.Param("id"))
    if err != nil {
        notFoundOrInternal(c, err, "activity")
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": activity})
}

func (s *Server) createActivity(c *gin.Context) {
    var req ActivityRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    activity := &database.Activity{
        Name:         req.Name,
        Description:  req.Description,
        SubprocessID: req.SubprocessID,
    }
    if err := s.store.CreateActivity(c.Request.Context(), activity); err != nil {
        if errors.Is(err, database.ErrNotFound) {
            c.JSON(http.StatusBadRequest, gin.H{"error": "subprocess not found"})
            return
        }
        logrus.WithError(err).Error("Failed to create activity")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create activity"})
        return
    }
    c.JSON(http.StatusCreated, gin.H{"data": activity})
}

func (s *Server) updateActivity(c *gin.Context) {
    var req ActivityRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    activity, err := s.store.GetActivity(c.Request.Context(), c.Param("id"))
    if err != nil {
        notFoundOrInternal(c, err, "activity")
        return
    }

    activity.Name = req.Name
    activity.Description = req.Description
    activity.SubprocessID = req.SubprocessID
    activity.UpdatedAt = time.Now()
    if err := s.store.UpdateActivity(c.Request.Context(), activity); err != nil {
        logrus.WithError(err).Error("Failed to update activity")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update activity"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": activity})
}

func (s *Server) deleteActivity(c *gin.Context) {
    if err := s.store.DeleteActivity(c.Request.Context(), c.Param("id")); err != nil {
        if errors.Is(err, database.ErrNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
            return
        }
        logrus.WithError(err).Error("Failed to delete activity")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete activity"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "Activity deleted successfully"})
}

// System handlers

func (s *Server) getSystems(c *gin.Context) {
    systems, err := s.store.GetSystems(c.Request.Context())
    if err != nil {
        logrus.WithError(err).Error("Failed to get systems")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get systems"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": systems, "count": len(systems)})
}

func (s *Server) getSystem(c *gin.Context) {
    system, err := s.store.GetSystem(c.Request.Context(), c.Param("id"))
    if err != nil {
        notFoundOrInternal(c, err, "system")
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": system})
}

func (s *Server) createSystem(c *gin.Context) {
    var req SystemRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    system := &database.System{
        Name:          req.Name,
        Goal:          req.Goal,
        TechnicalData: req.TechnicalData,
    }
    if err := s.store.CreateSystem(c.Request.Context(), system); err != nil {
        logrus.WithError(err).Error("Failed to create system")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create system"})
        return
    }
    c.JSON(http.StatusCreated, gin.H{"data": system})
}

func (s *Server) updateSystem(c *gin.Context) {
    var req SystemRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    system, err := s.store.GetSystem(c.Request.Context(), c.Param("id"))
    if err != nil {
        notFoundOrInternal(c, err, "system")
        return
    }

    system.Name = req.Name
    system.Goal = req.Goal
    system.TechnicalData = req.TechnicalData
    system.UpdatedAt = time.Now()
    if err := s.store.UpdateSystem(c.Request.Context(), system); err != nil {
        logrus.WithError(err).Error("Failed to update system")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update system"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": system})
}

func (s *Server) deleteSystem(c *gin.Context) {
    if err := s.store.DeleteSystem(c.Request.Context(), c.Param("id")); err != nil {
        if errors.Is(err, database.ErrNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "system not found"})
            return
        }
        logrus.WithError(err).Error("Failed to delete system")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete system"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "System deleted successfully"})
}

// Interface handlers

func (s *Server) getInterfaces(c *gin.Context) {
    interfaces, err := s.store.GetInterfaces(c.Request.Context())
    if err != nil {
        logrus.WithError(err).Error("Failed to get interfaces")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get interfaces"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": interfaces, "count": len(interfaces)})
}

func (s *Server) getInterface(c *gin.Context) {
    iface, err := s.store.GetInterface(c.Request.Context(), c.Param("id"))
    if err != nil {
        notFoundOrInternal(c, err, "interface")
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": iface})
}

func (s *Server) createInterface(c *gin.Context) {
    var req InterfaceRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    iface := &database.Interface{
        Name:                req.Name,
        Goal:                req.Goal,
        TechnicalData:       req.TechnicalData,
        OriginSystemID:      req.OriginSystemID,
        DestinationSystemID: req.DestinationSystemID,
    }
    if err := s.store.CreateInterface(c.Request.Context(), iface); err != nil {
        if errors.Is(err, database.ErrNotFound) {
            c.JSON(http.StatusBadRequest, gin.H{"error": "origin or destination system not found"})
            return
        }
        logrus.WithError(err).Error("Failed to create interface")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create interface"})
        return
    }
    c.JSON(http.StatusCreated, gin.H{"data": iface})
}

func (s *Server) updateInterface(c *gin.Context) {
    var req InterfaceRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    iface, err := s.store.GetInterface(c.Request.Context(), c.Param("id"))
    if err != nil {
        notFoundOrInternal(c, err, "interface")
        return
    }

    iface.Name = req.Name
    iface.Goal = req.Goal
    iface.TechnicalData = req.TechnicalData
    iface.OriginSystemID = req.OriginSystemID
    iface.DestinationSystemID = req.DestinationSystemID
    iface.UpdatedAt = time.Now()
    if err := s.store.UpdateInterface(c.Request.Context(), iface); err != nil {
        logrus.WithError(err).Error("Failed to update interface")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update interface"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": iface})
}

func (s *Server) deleteInterface(c *gin.Context) {
    if err := s.store.DeleteInterface(c.Request.Context(), c.Param("id")); err != nil {
        if errors.Is(err, database.ErrNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "interface not found"})
            return
        }
        logrus.WithError(err).Error("Failed to delete interface")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete interface"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "Interface deleted successfully"})
}

// Task handlers

func (s *Server) getTasks(c *gin.Context) {
    ctx := c.Request.Context()

    var (
        tasks []database.Task
        err   error
    )
    switch {
    case c.Query("activity_id") != "":
        tasks, err = s.store.GetTasksByActivity(ctx, c.Query("activity_id"))
    case c.Query("system_id") != "":
        tasks, err = s.store.GetTasksBySystem(ctx, c.Query("system_id"))
    case c.Query("interface_id") != "":
        tasks, err = s.store.GetTasksByInterface(ctx, c.Query("interface_id"))
    case c.Query("recurrence") != "":
        tasks, err = s.store.GetTasksByRecurrence(ctx, database.Recurrence(c.Query("recurrence")))
    default:
        tasks, err = s.store.GetTasks(ctx)
    }
    if err != nil {
        logrus.WithError(err).Error("Failed to get tasks")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get tasks"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": tasks, "count": len(tasks)})
}

func (s *Server) getTask(c *gin.Context) {
    task, err := s.store.GetTask(c.Request.Context(), c.Param("id"))
    if err != nil {
        notFoundOrInternal(c, err, "task")
        return
    }

    response := gin.H{"data": task}
    if latest, err := s.store.LatestResult(c.Request.Context(), task.ID); err == nil {
        response["latest_result"] = latest
    }
    c.JSON(http.StatusOK, response)
}

func (s *Server) createTask(c *gin.Context) {
    var req TaskRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    if req.SystemID != "" && req.InterfaceID != "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "a task may target a system or an interface, not both"})
        return
    }
    if req.Recurrence.Interval() == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "unknown recurrence: " + string(req.Recurrence)})
        return
    }
    if err := checks.ValidatePayload(req.Kind, req.Payload); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    task := &database.Task{
        Name:        req.Name,
        Description: req.Description,
        Kind:        req.Kind,
        Recurrence:  req.Recurrence,
        Payload:     req.Payload,
        ActivityID:  req.ActivityID,
        SystemID:    req.SystemID,
        InterfaceID: req.InterfaceID,
    }
    if err := s.store.CreateTask(c.Request.Context(), task); err != nil {
        if errors.Is(err, database.ErrNotFound) {
            c.JSON(http.StatusBadRequest, gin.H{"error": "referenced activity, system or interface not found"})
            return
        }
        logrus.WithError(err).Error("Failed to create task")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
        return
    }
    c.JSON(http.StatusCreated, gin.H{"data": task})
}

func (s *Server) updateTask(c *gin.Context) {
    var req TaskRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    if req.SystemID != "" && req.InterfaceID != "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "a task may target a system or an interface, not both"})
        return
    }
    if req.Recurrence.Interval() == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "unknown recurrence: " + string(req.Recurrence)})
        return
    }
    if err := checks.ValidatePayload(req.Kind, req.Payload); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    task, err := s.store.GetTask(c.Request.Context(), c.Param("id"))
    if err != nil {
        notFoundOrInternal(c, err, "task")
        return
    }

    task.Name = req.Name
    task.Description = req.Description
    task.Kind = req.Kind
    task.Recurrence = req.Recurrence
    task.Payload = req.Payload
    task.ActivityID = req.ActivityID
    task.SystemID = req.SystemID
    task.InterfaceID = req.InterfaceID
    task.UpdatedAt = time.Now()
    if err := s.store.UpdateTask(c.Request.Context(), task); err != nil {
        logrus.WithError(err).Error("Failed to update task")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": task})
}

func (s *Server) deleteTask(c *gin.Context) {
    if err := s.store.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
        if errors.Is(err, database.ErrNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
            return
        }
        logrus.WithError(err).Error("Failed to delete task")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// runTask triggers one out-of-schedule execution of a task.
func (s *Server) runTask(c *gin.Context) {
    id := c.Param("id")
    if err := s.engine.ExecuteNow(c.Request.Context(), id); err != nil {
        if errors.Is(err, database.ErrNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
            return
        }
        logrus.WithError(err).WithField("task_id", id).Error("Failed to run task")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run task"})
        return
    }
    c.JSON(http.StatusAccepted, gin.H{"message": "Task execution triggered"})
}

// Result and error handlers

func (s *Server) getTaskResults(c *gin.Context) {
    id := c.Param("id")

    if _, err := s.store.GetTask(c.Request.Context(), id); err != nil {
        notFoundOrInternal(c, err, "task")
        return
    }

    results, err := s.store.GetResultsByTask(c.Request.Context(), id)
    if err != nil {
        logrus.WithError(err).Error("Failed to get results")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get results"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": results, "count": len(results)})
}

func (s *Server) getResults(c *gin.Context) {
    limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

    filters := database.ResultFilters{
        TaskID: c.Query("task_id"),
        Status: database.TaskStatus(c.Query("status")),
        Limit:  limit,
    }
    if beforeStr := c.Query("before"); beforeStr != "" {
        before, err := time.Parse(time.RFC3339, beforeStr)
        if err != nil {
            c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before timestamp: " + beforeStr})
            return
        }
        filters.Before = &before
    }

    results, err := s.store.GetResults(c.Request.Context(), filters)
    if err != nil {
        logrus.WithError(err).Error("Failed to get results")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get results"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": results, "count": len(results)})
}

func (s *Server) getResultErrors(c *gin.Context) {
    taskErrors, err := s.store.GetErrorsByResult(c.Request.Context(), c.Param("id"))
    if err != nil {
        logrus.WithError(err).Error("Failed to get task errors")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get task errors"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": taskErrors, "count": len(taskErrors)})
}
