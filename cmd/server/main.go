package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	h "github.com/veranemoloko/task-observer/internal/api/http"
	cfgpkg "github.com/veranemoloko/task-observer/internal/config"
	"github.com/veranemoloko/task-observer/internal/metrics"
	"github.com/veranemoloko/task-observer/internal/notify"
	"github.com/veranemoloko/task-observer/internal/observer"
	repo "github.com/veranemoloko/task-observer/internal/repository"
	"github.com/veranemoloko/task-observer/internal/storage"
	svc "github.com/veranemoloko/task-observer/internal/service"
	"github.com/veranemoloko/task-observer/internal/validation"
	"github.com/veranemoloko/task-observer/internal/worker"
)

func main() {

	cfg, err := cfgpkg.Load()
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			slog.Error("download directory is not usable", "error", err)
		} else {
			slog.Error("failed to load configuration", "error", err)
		}
		os.Exit(1)
	}

	logger := cfgpkg.SetupLogger(cfg)
	logger.Info("configuration loaded successfully")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(cfg.MetricsNamespace, registry)

	bus := notify.NewBus(
		notify.WithLogger(logger),
		notify.WithFailureHook(collector.RecordSubscriberFailure),
	)
	collector.Attach(bus)

	taskStorage := repo.NewTaskStorage(logger)
	taskStorage.Attach(bus)

	recorderOpts := []observer.RecorderOption{
		observer.WithBus(bus),
		observer.WithLogger(logger),
		observer.WithName(cfg.RecorderName),
	}
	if cfg.StrictOrdering {
		recorderOpts = append(recorderOpts, observer.WithStrictOrdering())
	}
	recorder := observer.NewRecorder(recorderOpts...)
	logger.Info("recorder ready", "recorder_id", recorder.ID(), "name", recorder.Name(), "strict", cfg.StrictOrdering)

	downloadWorker := worker.NewDownloadWorker(storage.NewFileStorage(cfg.DownloadDir), recorder, logger, worker.Options{
		MaxFileSize:      cfg.MaxFileSize,
		PreviewInterval:  cfg.PreviewInterval,
		AllowedMIMETypes: cfg.AllowedMIMETypes,
		Timeout:          cfg.DownloadTimeout,
	})

	taskService := svc.NewTaskService(
		taskStorage,
		downloadWorker,
		recorder,
		validation.NewURLValidator(cfg.MaxURLsPerRequest, cfg.AllowPrivateHosts),
		logger,
		svc.Options{Workers: cfg.WorkerPoolSize, QueueSize: cfg.WorkerPoolSize * cfg.MaxURLsPerRequest},
	)

	router := h.NewRouter(taskService, registry, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	} else {
		logger.Info("server stopped gracefully")
	}

	if err := taskService.Shutdown(shutdownCtx); err != nil {
		logger.Error("task service shutdown failed", "error", err)
	}

	counts := recorder.Counts()
	logger.Info("final task counts",
		"started", counts.Started,
		"cancelled", counts.Cancelled,
		"completed", counts.Completed,
	)
}
