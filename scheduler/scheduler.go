// Package scheduler drives the automated enrichment refreshes: an initial
// run at startup, a daily re-enrichment, the enriched table export, and
// staleness monitoring. It coordinates with the data container through
// dependency injection.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vineetdaniels2108/RxNormSIGProject/data"
	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment"
	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
	"github.com/vineetdaniels2108/RxNormSIGProject/interfaces"
	"github.com/vineetdaniels2108/RxNormSIGProject/logging"
	"github.com/vineetdaniels2108/RxNormSIGProject/metrics"
	"github.com/vineetdaniels2108/RxNormSIGProject/validation"
)

// Compile-time check to ensure Scheduler implements the Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// refreshTime is the daily re-enrichment schedule, chosen to sit in the
// lowest-traffic window
const refreshTime = "03:00"

// Scheduler handles enrichment refreshes and health monitoring
type Scheduler struct {
	dataStore  interfaces.DataStore
	loader     interfaces.SourceLoader
	pipeline   interfaces.Pipeline
	outputPath string
	scheduler  *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// outputPath may be empty to skip the enriched table export.
func NewScheduler(dataStore interfaces.DataStore, loader interfaces.SourceLoader, pipeline interfaces.Pipeline, outputPath string) *Scheduler {
	return &Scheduler{
		dataStore:  dataStore,
		loader:     loader,
		pipeline:   pipeline,
		outputPath: outputPath,
		scheduler:  gocron.NewScheduler(time.Local),
	}
}

// Start runs the initial enrichment and schedules the daily refresh
func (s *Scheduler) Start() error {
	// Initial load
	if err := s.refreshData(); err != nil {
		logging.Error("Failed to perform initial enrichment run", "error", err)
		return fmt.Errorf("initial enrichment run failed: %w", err)
	}

	_, err := s.scheduler.Every(1).Days().At(refreshTime).Do(func() {
		if err := s.refreshData(); err != nil {
			logging.Error("Failed to refresh enriched data", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule refreshes", "error", err)
		return fmt.Errorf("failed to schedule refreshes: %w", err)
	}

	s.scheduler.StartAsync()

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// refreshData performs a complete enrichment refresh: load the source
// files, run the pipeline, validate the result and swap it in atomically.
func (s *Scheduler) refreshData() error {
	// Prevent concurrent refreshes
	if !s.dataStore.BeginUpdate() {
		logging.Info("Refresh already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info("Starting enrichment refresh", "at", time.Now().Format(time.RFC3339))
	start := time.Now()

	sources, err := s.loader.Load()
	if err != nil {
		metrics.EnrichmentRunsTotal.WithLabelValues("load_error").Inc()
		logging.Error("Failed to load source records", "error", err)
		return fmt.Errorf("failed to load source records: %w", err)
	}

	enriched, stats, err := s.pipeline.Run(context.Background(), sources)
	if err != nil {
		metrics.EnrichmentRunsTotal.WithLabelValues("run_error").Inc()
		logging.Error("Enrichment run failed", "error", err)
		return fmt.Errorf("enrichment run failed: %w", err)
	}

	validator := validation.NewDataValidator()
	if err := validator.ValidateDataIntegrity(enriched); err != nil {
		metrics.EnrichmentRunsTotal.WithLabelValues("validation_error").Inc()
		logging.Error("Enriched table failed validation, keeping previous data", "error", err)
		return fmt.Errorf("enriched table validation failed: %w", err)
	}

	// Atomic swap (zero downtime replacement)
	s.dataStore.UpdateData(enriched, data.BuildRecordsMap(enriched), stats)

	if s.outputPath != "" {
		if err := enrichment.WriteEnrichedCSV(s.outputPath, enriched); err != nil {
			// The in-memory swap already happened; a failed export is not fatal
			logging.Error("Failed to write enriched table export", "error", err)
		}
	}

	elapsed := time.Since(start)
	s.recordRunMetrics(stats, elapsed)

	logging.Info("Enrichment refresh completed",
		"run_id", stats.RunID,
		"duration", elapsed.String(),
		"record_count", len(enriched),
		"skipped", stats.SkippedRecords)

	return nil
}

// recordRunMetrics publishes the run outcome to Prometheus
func (s *Scheduler) recordRunMetrics(stats *entities.RunStats, elapsed time.Duration) {
	metrics.EnrichmentRunsTotal.WithLabelValues("success").Inc()
	metrics.EnrichmentRunDuration.Observe(elapsed.Seconds())

	metrics.EnrichmentRecords.WithLabelValues("total").Set(float64(stats.TotalRecords))
	metrics.EnrichmentRecords.WithLabelValues("enriched").Set(float64(stats.EnrichedRecords))
	metrics.EnrichmentRecords.WithLabelValues("skipped").Set(float64(stats.SkippedRecords))
	metrics.EnrichmentRecords.WithLabelValues("companies_matched").Set(float64(stats.CompaniesMatched))
	metrics.EnrichmentRecords.WithLabelValues("companies_unmatched").Set(float64(stats.CompaniesUnmatched))
	metrics.EnrichmentRecords.WithLabelValues("codes_accepted").Set(float64(stats.NDCAccepted))
	metrics.EnrichmentRecords.WithLabelValues("codes_rejected").Set(float64(stats.NDCRejected))
	metrics.EnrichmentRecords.WithLabelValues("without_instructions").Set(float64(stats.RecordsWithoutSigs))
}

// startHealthMonitoring watches for stale data
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.dataStore.GetLastUpdated()
			if time.Since(lastUpdate) > 26*time.Hour {
				logging.Warn("Enriched data hasn't been refreshed in over 26 hours",
					"last_update", lastUpdate.Format(time.RFC3339),
					"age_hours", strconv.FormatFloat(time.Since(lastUpdate).Hours(), 'f', 1, 64))
			}
		}
	}()
}
