package enrichment

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
)

func sourceBatch() []entities.SourceRecord {
	return []entities.SourceRecord{
		{
			RxCUI:    "197361",
			DrugName: "amoxicillin 500 MG oral tablet",
			TermType: "SCD",
			DoseForm: "tab",
			Strength: "500mg",
			Labelers: []string{"Lilly, Eli & Co."},
			NDCCodes: []string{"49452360601"},
		},
		{
			// Missing drug name, must be skipped
			RxCUI:    "999999",
			TermType: "SCD",
		},
		{
			RxCUI:    "617312",
			DrugName: "atorvastatin 10 MG oral tablet",
			TermType: "SCD",
			DoseForm: "tab",
			Strength: "10mg",
			Labelers: []string{"Pfizer Labs"},
			NDCCodes: []string{"00071-0155-23"},
		},
		{
			RxCUI:    "153165",
			DrugName: "Lipitor",
			TermType: "BN",
		},
	}
}

func TestPipelineRun(t *testing.T) {
	p := NewBatchPipeline(testRules(t), 4)

	enriched, stats, err := p.Run(context.Background(), sourceBatch())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.TotalRecords != 4 {
		t.Errorf("TotalRecords = %d, want 4", stats.TotalRecords)
	}
	if stats.EnrichedRecords != 3 {
		t.Errorf("EnrichedRecords = %d, want 3", stats.EnrichedRecords)
	}
	if stats.SkippedRecords != 1 {
		t.Errorf("SkippedRecords = %d, want 1", stats.SkippedRecords)
	}
	if stats.CompaniesMatched != 2 {
		t.Errorf("CompaniesMatched = %d, want 2", stats.CompaniesMatched)
	}
	if stats.NDCAccepted != 2 {
		t.Errorf("NDCAccepted = %d, want 2", stats.NDCAccepted)
	}
	if stats.RunID == "" {
		t.Error("RunID must be set")
	}

	// Output preserves input order regardless of worker scheduling
	wantOrder := []string{"197361", "617312", "153165"}
	if len(enriched) != len(wantOrder) {
		t.Fatalf("got %d records, want %d", len(enriched), len(wantOrder))
	}
	for i, want := range wantOrder {
		if enriched[i].RxCUI != want {
			t.Errorf("record %d = %s, want %s", i, enriched[i].RxCUI, want)
		}
	}
}

func TestPipelineEmptySource(t *testing.T) {
	p := NewBatchPipeline(testRules(t), 2)

	if _, _, err := p.Run(context.Background(), nil); !errors.Is(err, ErrEmptySource) {
		t.Errorf("error = %v, want ErrEmptySource", err)
	}
}

func TestPipelineAllRecordsInvalid(t *testing.T) {
	p := NewBatchPipeline(testRules(t), 2)

	records := []entities.SourceRecord{
		{RxCUI: "1"},
		{DrugName: "orphan"},
	}

	_, stats, err := p.Run(context.Background(), records)
	if !errors.Is(err, ErrEmptySource) {
		t.Errorf("error = %v, want ErrEmptySource", err)
	}
	if stats == nil || stats.SkippedRecords != 2 {
		t.Errorf("stats = %+v, want 2 skipped", stats)
	}
}

func TestPipelineCancelledContext(t *testing.T) {
	p := NewBatchPipeline(testRules(t), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if enriched, _, err := p.Run(ctx, sourceBatch()); err == nil {
		t.Errorf("expected an error for a cancelled context, got %d records", len(enriched))
	}
}

func TestPipelineIsDeterministicAcrossWorkerCounts(t *testing.T) {
	single := NewBatchPipeline(testRules(t), 1)
	parallel := NewBatchPipeline(testRules(t), 8)

	first, _, err := single.Run(context.Background(), sourceBatch())
	if err != nil {
		t.Fatalf("single worker run failed: %v", err)
	}
	second, _, err := parallel.Run(context.Background(), sourceBatch())
	if err != nil {
		t.Fatalf("parallel run failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("worker count changed the enriched output")
	}
}
