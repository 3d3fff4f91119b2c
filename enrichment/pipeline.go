package enrichment

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/rules"
	"github.com/vineetdaniels2108/RxNormSIGProject/interfaces"
	"github.com/vineetdaniels2108/RxNormSIGProject/logging"
	"github.com/vineetdaniels2108/RxNormSIGProject/validation"
)

// ErrEmptySource marks a run with nothing to process. It is fatal: an empty
// output table must never be mistaken for a successful empty result.
var ErrEmptySource = errors.New("empty source collection")

// BatchPipeline drives the record enricher over a full source collection
// with a worker pool. Records are independent, so workers share only the
// read-only rule tables; statistics are accumulated per worker and merged
// at the end.
type BatchPipeline struct {
	enricher  *RecordEnricher
	validator interfaces.DataValidator
	workers   int
}

// NewBatchPipeline creates a pipeline. workers <= 0 selects one worker per
// CPU.
func NewBatchPipeline(rs *rules.RuleSet, workers int) *BatchPipeline {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchPipeline{
		enricher:  NewRecordEnricher(rs),
		validator: validation.NewDataValidator(),
		workers:   workers,
	}
}

// Run enriches all source records. Malformed records are skipped and
// counted, never fatal; an empty source collection aborts the run. The
// output preserves input order regardless of worker count.
func (p *BatchPipeline) Run(ctx context.Context, records []entities.SourceRecord) ([]entities.EnrichedRecord, *entities.RunStats, error) {
	if len(records) == 0 {
		return nil, nil, ErrEmptySource
	}

	stats := &entities.RunStats{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	results := make([]*entities.EnrichedRecord, len(records))
	indexes := make(chan int)

	workerStats := make([]entities.RunStats, p.workers)
	var wg sync.WaitGroup
	wg.Add(p.workers)

	for w := 0; w < p.workers; w++ {
		go func(local *entities.RunStats) {
			defer wg.Done()
			for i := range indexes {
				src := &records[i]
				local.TotalRecords++

				if err := p.validator.ValidateSourceRecord(src); err != nil {
					logging.Warn("Skipping invalid source record", "error", err, "index", i)
					local.SkippedRecords++
					continue
				}

				rec, outcome := p.enricher.Enrich(src)
				results[i] = rec

				local.EnrichedRecords++
				local.CompaniesMatched += outcome.CompaniesMatched
				local.CompaniesUnmatched += outcome.CompaniesUnmatched
				local.NDCAccepted += outcome.NDCAccepted
				local.NDCRejected += outcome.NDCRejected
				if outcome.NoInstructions {
					local.RecordsWithoutSigs++
				}
			}
		}(&workerStats[w])
	}

	// Dispatch until done or the context is cancelled; cancellation stops
	// scheduling further records, already dispatched ones finish.
dispatch:
	for i := range records {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(indexes)
	wg.Wait()

	for w := range workerStats {
		stats.Merge(&workerStats[w])
	}
	stats.CompletedAt = time.Now()

	if err := ctx.Err(); err != nil {
		return nil, stats, fmt.Errorf("enrichment run abandoned: %w", err)
	}

	enriched := make([]entities.EnrichedRecord, 0, stats.EnrichedRecords)
	for _, rec := range results {
		if rec != nil {
			enriched = append(enriched, *rec)
		}
	}

	if len(enriched) == 0 {
		return nil, stats, fmt.Errorf("%w: no valid records after validation", ErrEmptySource)
	}

	logging.Info("Enrichment run completed",
		"run_id", stats.RunID,
		"total", stats.TotalRecords,
		"enriched", stats.EnrichedRecords,
		"skipped", stats.SkippedRecords,
		"duration", stats.CompletedAt.Sub(stats.StartedAt).String())

	return enriched, stats, nil
}
