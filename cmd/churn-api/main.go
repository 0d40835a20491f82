package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miradorstack/churn-api/internal/api"
	"github.com/miradorstack/churn-api/internal/config"
	"github.com/miradorstack/churn-api/internal/engine"
	"github.com/miradorstack/churn-api/internal/metrics"
	"github.com/miradorstack/churn-api/internal/schema"
	"github.com/miradorstack/churn-api/internal/services"
	"github.com/miradorstack/churn-api/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	out, logCloser := utils.LogWriter(utils.FileSink{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer logCloser.Close()

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON, out)
	slog.SetDefault(logger)
	logger.Info("starting churn-api",
		slog.String("http_address", cfg.Server.HTTPAddress),
		slog.String("model_path", cfg.Model.Path),
	)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	pipeline, err := engine.LoadPipeline(cfg.Model.Path, logger)
	if err != nil {
		logger.Error("failed to load model artifact", slog.String("path", cfg.Model.Path), slog.Any("error", err))
		os.Exit(1)
	}
	metrics.SetModelInfo(pipeline.Name(), pipeline.Version())

	dispatcher, err := engine.NewDispatcher(logger, pipeline)
	if err != nil {
		logger.Error("model is incompatible with the request schema", slog.Any("error", err))
		os.Exit(1)
	}

	churnService := services.NewChurnService(logger, schema.New(), dispatcher)

	router, err := api.NewRouter(cfg.Server, churnService, logger)
	if err != nil {
		logger.Error("failed to build HTTP router", slog.Any("error", err))
		os.Exit(1)
	}
	httpServer, err := api.NewHTTPServer(cfg.Server, router)
	if err != nil {
		logger.Error("failed to create HTTP server", slog.Any("error", err))
		os.Exit(1)
	}

	var grpcServer *api.Server
	if cfg.Server.GRPCAddress != "" {
		grpcServer, err = api.NewServer(cfg.Server, churnService)
		if err != nil {
			logger.Error("failed to create gRPC server", slog.Any("error", err))
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		logger.Info("http server listening", slog.String("address", httpServer.Address()))
		if serveErr := httpServer.Start(); serveErr != nil {
			logger.Error("http server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	if grpcServer != nil {
		go func() {
			logger.Info("gRPC server listening", slog.String("address", grpcServer.Address()))
			if serveErr := grpcServer.Start(); serveErr != nil {
				logger.Error("gRPC server exited", slog.Any("error", serveErr))
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", slog.Any("error", err))
	}
	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("churn-api stopped", slog.Duration("inference_p95", churnService.LatencyP95()))
}
