package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vineetdaniels2108/RxNormSIGProject/config"
	"github.com/vineetdaniels2108/RxNormSIGProject/data"
	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment"
	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/rules"
	"github.com/vineetdaniels2108/RxNormSIGProject/logging"
	"github.com/vineetdaniels2108/RxNormSIGProject/scheduler"
	"github.com/vineetdaniels2108/RxNormSIGProject/server"
	"github.com/vineetdaniels2108/RxNormSIGProject/validation"
)

func main() {
	// Read the env variables from the working directory, falling back to the
	// executable directory when started from elsewhere
	if err := godotenv.Load(); err != nil {
		ex, err := os.Executable()
		if err != nil {
			logging.Error("Failed to get executable path", "error", err)
			os.Exit(1)
		}

		if err := os.Chdir(filepath.Dir(ex)); err != nil {
			logging.Error("Failed to change directory", "error", err)
			os.Exit(1)
		}

		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := logging.Init("logs", logging.Options{
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	}); err != nil {
		logging.Error("Failed to initialize logging", "error", err)
		os.Exit(1)
	}
	defer logging.Close()

	var ruleSet *rules.RuleSet
	if cfg.RulesFile != "" {
		ruleSet, err = rules.LoadFile(cfg.RulesFile)
		if err != nil {
			logging.Error("Failed to load rules file", "file", cfg.RulesFile, "error", err)
			os.Exit(1)
		}
	} else {
		ruleSet, err = rules.Default()
		if err != nil {
			logging.Error("Failed to load built-in rules", "error", err)
			os.Exit(1)
		}
	}

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	loader := enrichment.NewSourceLoader(cfg.DataDir)
	pipeline := enrichment.NewBatchPipeline(ruleSet, cfg.EnrichWorkers)

	sched := scheduler.NewScheduler(dataContainer, loader, pipeline, cfg.EnrichedOutput)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	validator := validation.NewDataValidator()
	srv := server.NewServer(cfg, dataContainer, validator)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
		os.Exit(1)
	}
}
