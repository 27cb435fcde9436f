package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"heartrisk/config"
	qhttp "heartrisk/http"
	"heartrisk/logging"
	"heartrisk/ml"
	"heartrisk/monitoring"
	"heartrisk/session"
)

func main() {
	appDir, err := applicationDir()
	if err != nil {
		log.Fatalf("Failed to resolve application directory: %v", err)
	}

	// 1. Load config
	cfg, err := config.Load(filepath.Join(appDir, config.FileName))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}, appDir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 3. Locate and load the model
	metrics := monitoring.NewMetrics()
	machine := session.NewMachine()
	deps := qhttp.Dependencies{Metrics: metrics, Logger: logger}

	result, err := ml.NewModelLocator(ml.CandidatePaths(appDir), logger).Locate()
	deps.Warnings = result.Warnings
	if err != nil {
		_ = machine.ModelMissing()
		deps.HaltErr = err
		logger.Error("no usable model, serving halt page", zap.Error(err))
	} else {
		_ = machine.ModelLoaded()
		predictor, err := ml.NewPredictor(result.Model, cfg.Predict.CacheSize)
		if err != nil {
			logger.Fatal("Failed to build predictor", zap.Error(err))
		}
		deps.Predictor = predictor
		deps.ModelPath = result.Path
	}
	metrics.SetModelState(deps.HaltErr == nil, len(result.Warnings))
	logger.Info("startup complete",
		zap.String("state", string(machine.State())),
		zap.String("model_path", result.Path),
		zap.Int("warnings", len(result.Warnings)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if deps.HaltErr == nil && cfg.Model.Watch {
		watcher, err := monitoring.NewArtifactWatcher(result.Path, logger)
		if err != nil {
			logger.Warn("artifact watch disabled", zap.Error(err))
		} else {
			go watcher.Run(ctx)
			defer watcher.Stop()
		}
	}

	// 4. Start HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:    cfg.Http.Port,
		Timeout: cfg.Http.Timeout,
	}, deps)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cancel()
	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}

// applicationDir is the directory holding the executable. Model candidates
// and config.yaml are resolved against it.
func applicationDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}
