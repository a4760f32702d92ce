// internal/web/server.go
package web

import (
    "context"
    "net/http"
    "sync"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/sirupsen/logrus"

    "bpmon/internal/config"
    "bpmon/internal/database"
    "bpmon/internal/metrics"
    "bpmon/internal/monitoring"
)

type Server struct {
    config    *config.Config
    store     database.Store
    engine    *monitoring.Engine
    metrics   *metrics.Collector
    router    *gin.Engine
    wsClients map[*WSClient]bool
    wsMu      sync.Mutex
    server    *http.Server
}

func NewServer(cfg *config.Config, store database.Store, engine *monitoring.Engine, metricsCollector *metrics.Collector) *Server {
    if cfg.Logging.Level != "debug" {
        gin.SetMode(gin.ReleaseMode)
    }

    router := gin.New()
    router.Use(gin.Logger())
    router.Use(gin.Recovery())
    router.Use(corsMiddleware())

    server := &Server{
        config:    cfg,
        store:     store,
        engine:    engine,
        metrics:   metricsCollector,
        router:    router,
        wsClients: make(map[*WSClient]bool),
    }

    // Stream every propagated status change to connected dashboards.
    engine.SetStatusListener(func(level, id, name string, status database.OperationalStatus) {
        server.broadcast(WSMessage{
            Type: "status_changed",
            Data: gin.H{
                "level":  level,
                "id":     id,
                "name":   name,
                "status": status,
            },
        })
    })

    server.setupRoutes()
    return server
}

func (s *Server) Start(ctx context.Context) error {
    s.server = &http.Server{
        Addr:         s.config.Server.Port,
        Handler:      s.router,
        ReadTimeout:  s.config.Server.ReadTimeout,
        WriteTimeout: s.config.Server.WriteTimeout,
    }

    logrus.WithField("port", s.config.Server.Port).Info("Starting web server")

    go s.updateMetricsRoutine(ctx)

    go func() {
        if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            logrus.WithError(err).Fatal("Failed to start server")
        }
    }()

    return nil
}

func (s *Server) Stop(ctx context.Context) error {
    if s.server != nil {
        return s.server.Shutdown(ctx)
    }
    return nil
}

func (s *Server) setupRoutes() {
    api := s.router.Group("/api")
    {
        api.GET("/processes", s.getProcesses)
        api.GET("/processes/:id", s.getProcess)
        api.POST("/processes", s.createProcess)
        api.PUT("/processes/:id", s.updateProcess)
        api.DELETE("/processes/:id", s.deleteProcess)

        api.GET("/subprocesses", s.getSubprocesses)
        api.GET("/subprocesses/:id", s.getSubprocess)
        api.POST("/subprocesses", s.createSubprocess)
        api.PUT("/subprocesses/:id", s.updateSubprocess)
        api.DELETE("/subprocesses/:id", s.deleteSubprocess)

        api.GET("/activities", s.getActivities)
        api.GET("/activities/:id", s.getActivity)
        api.POST("/activities", s.createActivity)
        api.PUT("/activities/:id", s.updateActivity)
        api.DELETE("/activities/:id", s.deleteActivity)

        api.GET("/systems", s.getSystems)
        api.GET("/systems/:id", s.getSystem)
        api.POST("/systems", s.createSystem)
        api.PUT("/systems/:id", s.updateSystem)
        api.DELETE("/systems/:id", s.deleteSystem)

        api.GET("/interfaces", s.getInterfaces)
        api.GET("/interfaces/:id", s.getInterface)
        api.POST("/interfaces", s.createInterface)
        api.PUT("/interfaces/:id", s.updateInterface)
        api.DELETE("/interfaces/:id", s.deleteInterface)

        api.GET("/tasks", s.getTasks)
        api.GET("/tasks/:id", s.getTask)
        api.POST("/tasks", s.createTask)
        api.PUT("/tasks/:id", s.updateTask)
        api.DELETE("/tasks/:id", s.deleteTask)
        api.POST("/tasks/:id/run", s.runTask)
        api.GET("/tasks/:id/results", s.getTaskResults)

        api.GET("/results", s.getResults)
        api.GET("/results/:id/errors", s.getResultErrors)

        api.GET("/stats", s.getStats)
        api.GET("/health", s.healthCheck)
    }

    s.router.GET("/ws", s.handleWebSocket)

    if s.config.Prometheus.Enabled {
        s.router.GET(s.config.Prometheus.MetricsPath, gin.WrapH(promhttp.Handler()))
    }
}

func (s *Server) healthCheck(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{
        "status":    "healthy",
        "timestamp": time.Now(),
        "version":   "1.0.0",
    })
}

// getStats summarizes the hierarchy by status at every level.
func (s *Server) getStats(c *gin.Context) {
    ctx := c.Request.Context()

    stats := gin.H{}

    processes, err := s.store.GetProcesses(ctx)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get processes"})
        return
    }
    stats["processes"] = countByStatus(processStatuses(processes))

    subprocesses, err := s.store.GetSubprocesses(ctx)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get subprocesses"})
        return
    }
    stats["subprocesses"] = countByStatus(subprocessStatuses(subprocesses))

    activities, err := s.store.GetActivities(ctx)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get activities"})
        return
    }
    stats["activities"] = countByStatus(activityStatuses(activities))

    systems, err := s.store.GetSystems(ctx)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get systems"})
        return
    }
    stats["systems"] = countByStatus(systemStatuses(systems))

    interfaces, err := s.store.GetInterfaces(ctx)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get interfaces"})
        return
    }
    stats["interfaces"] = countByStatus(interfaceStatuses(interfaces))

    tasks, err := s.store.GetTasks(ctx)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get tasks"})
        return
    }
    taskStats := map[string]int{"unrun": 0, "success": 0, "fail": 0}
    for _, t := range tasks {
        switch t.Status {
        case database.TaskSuccess:
            taskStats["success"]++
        case database.TaskFail:
            taskStats["fail"]++
        default:
            taskStats["unrun"]++
        }
    }
    stats["tasks"] = taskStats

    c.JSON(http.StatusOK, gin.H{"data": stats})
}

func countByStatus(statuses []database.OperationalStatus) map[string]int {
    counts := map[string]int{"up": 0, "compromised": 0, "down": 0, "unrun": 0}
    for _, status := range statuses {
        switch status {
        case database.StatusUp:
            counts["up"]++
        case database.StatusCompromised:
            counts["compromised"]++
        case database.StatusDown:
            counts["down"]++
        default:
            counts["unrun"]++
        }
    }
    return counts
}

func processStatuses(items []database.Process) []database.OperationalStatus {
    out := make([]database.OperationalStatus, 0, len(items))
    for _, it := range items {
        out = append(out, it.Status)
    }
    return out
}

func subprocessStatuses(items []database.Subprocess) []database.OperationalStatus {
    out := make([]database.OperationalStatus, 0, len(items))
    for _, it := range items {
        out = append(out, it.Status)
    }
    return out
}

func activityStatuses(items []database.Activity) []database.OperationalStatus {
    out := make([]database.OperationalStatus, 0, len(items))
    for _, it := range items {
        out = append(out, it.Status)
    }
    return out
}

func systemStatuses(items []database.System) []database.OperationalStatus {
    out := make([]database.OperationalStatus, 0, len(items))
    for _, it := range items {
        out = append(out, it.Status)
    }
    return out
}

func interfaceStatuses(items []database.Interface) []database.OperationalStatus {
    out := make([]database.OperationalStatus, 0, len(items))
    for _, it := range items {
        out = append(out, it.Status)
    }
    return out
}

func (s *Server) updateMetricsRoutine(ctx context.Context) {
    ticker := time.NewTicker(30 * time.Second)
    defer ticker.Stop()

    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if err := s.metrics.UpdateHierarchyMetrics(ctx); err != nil {
                logrus.WithError(err).Error("Failed to update hierarchy metrics")
            }
        }
    }
}

func corsMiddleware() gin.HandlerFunc {
    return func(c *gin.Context) {
        c.Header("Access-Control-Allow-Origin", "*")
        c.Header("Access-Control-Allow-Credentials", "true")
        c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
        c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

        if c.Request.Method == "OPTIONS" {
            c.AbortWithStatus(204)
            return
        }

        c.Next()
    }
}
