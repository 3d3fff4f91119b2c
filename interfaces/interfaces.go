// Package interfaces defines the core abstractions of the medication
// enrichment service to improve testability and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
)

// DataStore defines the contract for data storage operations.
// It provides thread-safe access to the enriched medication table with
// atomic operations for zero-downtime updates.
type DataStore interface {
	// Data retrieval methods
	GetRecords() []entities.EnrichedRecord
	GetRecordsMap() map[string]entities.EnrichedRecord
	GetRunStats() *entities.RunStats
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	// Data update methods
	UpdateData(records []entities.EnrichedRecord, recordsMap map[string]entities.EnrichedRecord, stats *entities.RunStats)
	BeginUpdate() bool
	EndUpdate()
}

// SourceLoader defines the contract for loading raw medication records from
// the RxNorm export files.
type SourceLoader interface {
	Load() ([]entities.SourceRecord, error)
}

// Pipeline defines the contract for the batch enrichment run over a full
// source collection.
type Pipeline interface {
	Run(ctx context.Context, records []entities.SourceRecord) ([]entities.EnrichedRecord, *entities.RunStats, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages automated enrichment refreshes and staleness checks.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)

	ServePagedRecords(w http.ResponseWriter, r *http.Request)
	ServeAllRecords(w http.ResponseWriter, r *http.Request)
	FindMedication(w http.ResponseWriter, r *http.Request)
	FindMedicationByRxCUI(w http.ResponseWriter, r *http.Request)
	ServeRunStats(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, data map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled refresh time
	CalculateNextUpdate() time.Time
}

// DataValidator defines the contract for validation operations covering both
// source data integrity and user-supplied input.
type DataValidator interface {
	// ValidateSourceRecord checks if a raw record can enter the pipeline
	ValidateSourceRecord(rec *entities.SourceRecord) error

	// ValidateDataIntegrity performs whole-table validation after a run
	ValidateDataIntegrity(records []entities.EnrichedRecord) error

	// ValidateInput validates user input strings
	ValidateInput(input string) error

	// ValidateRxCUI validates an RxNorm concept identifier
	ValidateRxCUI(input string) (string, error)
}
