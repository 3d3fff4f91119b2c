// Package health provides health checking for the enrichment service.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/vineetdaniels2108/RxNormSIGProject/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(dataStore interfaces.DataStore) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore: dataStore,
	}
}

// HealthCheck returns HTTP-specific health data with staleness thresholds.
// Used by the /health endpoint.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	records := h.dataStore.GetRecords()
	stats := h.dataStore.GetRunStats()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()

	dataAge := time.Since(lastUpdate)

	switch {
	case len(records) == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 72*time.Hour:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 48*time.Hour:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case isUpdating && dataAge > 6*time.Hour:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_update":      lastUpdate.Format(time.RFC3339),
		"data_age_hours":   math.Round(dataAge.Hours()*10) / 10,
		"records":          len(records),
		"enriched_records": stats.EnrichedRecords,
		"skipped_records":  stats.SkippedRecords,
		"last_run_id":      stats.RunID,
		"is_updating":      isUpdating,
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled refresh time. Refreshes run
// daily at 3:00 AM local time.
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	now := time.Now()

	threeAM := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
	if now.Before(threeAM) {
		return threeAM
	}

	return threeAM.AddDate(0, 0, 1)
}
