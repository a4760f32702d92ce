package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/sirupsen/logrus"

    "bpmon/internal/config"
    "bpmon/internal/database"
    "bpmon/internal/metrics"
    "bpmon/internal/monitoring"
    "bpmon/internal/notifications"
    "bpmon/internal/web"
)

func main() {
    configFile := flag.String("config", "config.yaml", "Configuration file path")
    version := flag.Bool("version", false, "Show version information")
    flag.Parse()

    if *version {
        fmt.Println("bpmon Business Process Monitor v1.0.0")
        os.Exit(0)
    }

    cfg, err := config.Load(*configFile)
    if err != nil {
        logrus.Fatalf("Failed to load config: %v", err)
    }

    setupLogging(cfg.Logging)

    logrus.WithFields(logrus.Fields{
        "config_file": *configFile,
        "port":        cfg.Server.Port,
        "workers":     cfg.Scheduler.CoreWorkers,
    }).Info("Starting business process monitor")

    store, err := database.NewBoltStore(cfg.Database.Path)
    if err != nil {
        logrus.Fatalf("Failed to initialize database: %v", err)
    }
    defer store.Close()

    metricsCollector := metrics.NewCollector(store)
    mailer := notifications.NewMailer(&cfg.Notifications)

    engine := monitoring.NewEngine(cfg, store, metricsCollector, mailer)
    webServer := web.NewServer(cfg, store, engine, metricsCollector)

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    if err := engine.Start(ctx); err != nil {
        logrus.Fatalf("Failed to start monitoring engine: %v", err)
    }

    go webServer.Start(ctx)

    sigChan := make(chan os.Signal, 1)
    signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

    sig := <-sigChan
    logrus.WithField("signal", sig).Info("Received shutdown signal")

    cancel()
    engine.Stop()

    shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer shutdownCancel()
    if err := webServer.Stop(shutdownCtx); err != nil {
        logrus.WithError(err).Error("Failed to shut down web server cleanly")
    }

    logrus.Info("Shutdown complete")
}

func setupLogging(cfg config.LoggingConfig) {
    level, err := logrus.ParseLevel(cfg.Level)
    if err != nil {
        level = logrus.InfoLevel
    }
    logrus.SetLevel(level)

    if cfg.Format == "json" {
        logrus.SetFormatter(&logrus.JSONFormatter{})
    } else {
        logrus.SetFormatter(&logrus.TextFormatter{
            FullTimestamp: true,
        })
    }
}
