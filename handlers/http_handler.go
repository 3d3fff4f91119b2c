// Package handlers provides the HTTP request handlers of the enrichment
// service: paginated record listings, medication search over the enriched
// search text, rxcui lookup, run statistics and health checks.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
	"github.com/vineetdaniels2108/RxNormSIGProject/interfaces"
	"github.com/vineetdaniels2108/RxNormSIGProject/logging"
)

// pageSize is the fixed page length of the paged records endpoint
const pageSize = 10

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore interfaces.DataStore
	validator interfaces.DataValidator
	health    interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator, healthChecker interfaces.HealthChecker) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		dataStore: dataStore,
		validator: validator,
		health:    healthChecker,
	}
}

// ServeHTTP implements the http.Handler interface
func (h *HTTPHandlerImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Routing is handled by chi
	http.Error(w, "Not implemented", http.StatusNotImplemented)
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	LastUpdate    string         `json:"last_update"`
	DataAgeHours  float64        `json:"data_age_hours"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// ServeAllRecords returns the full enriched table
func (h *HTTPHandlerImpl) ServeAllRecords(w http.ResponseWriter, r *http.Request) {
	records := h.dataStore.GetRecords()
	h.RespondWithJSON(w, http.StatusOK, records)
}

// ServePagedRecords returns one page of the enriched table
func (h *HTTPHandlerImpl) ServePagedRecords(w http.ResponseWriter, r *http.Request) {
	pageNumber := chi.URLParam(r, "pageNumber")
	page, err := strconv.Atoi(pageNumber)
	if err != nil || page < 1 {
		logging.Warn("Unusual user input", "pageNumber", pageNumber)
		h.RespondWithError(w, http.StatusBadRequest, "Invalid page number")
		return
	}

	records := h.dataStore.GetRecords()
	start := (page - 1) * pageSize
	end := start + pageSize

	if start >= len(records) {
		h.RespondWithError(w, http.StatusNotFound, "Page not found")
		return
	}

	if end > len(records) {
		end = len(records)
	}

	pagedRecords := records[start:end]
	totalItems := len(records)
	maxPage := (totalItems + pageSize - 1) / pageSize

	response := map[string]any{
		"data":       pagedRecords,
		"page":       page,
		"pageSize":   pageSize,
		"totalItems": totalItems,
		"maxPage":    maxPage,
	}

	h.RespondWithJSON(w, http.StatusOK, response)
}

// FindMedication searches the enriched table by substring match over the
// search text, so queries hit names, companies, dose forms and codes alike
func (h *HTTPHandlerImpl) FindMedication(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	if query == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing search term")
		return
	}

	if err := h.validator.ValidateInput(query); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	needle := strings.ToLower(query)

	records := h.dataStore.GetRecords()
	results := make([]entities.EnrichedRecord, 0)

	for i := range records {
		if strings.Contains(records[i].SearchText, needle) {
			results = append(results, records[i])
		}
	}

	// Always return 200 with a results array, empty if nothing matched
	h.RespondWithJSON(w, http.StatusOK, results)
}

// FindMedicationByRxCUI finds a record by its RxNorm identifier
func (h *HTTPHandlerImpl) FindMedicationByRxCUI(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "rxcui")
	rxcui, err := h.validator.ValidateRxCUI(raw)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	recordsMap := h.dataStore.GetRecordsMap()
	rec, exists := recordsMap[rxcui]
	if !exists {
		h.RespondWithError(w, http.StatusNotFound, "Medication not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, rec)
}

// ServeRunStats returns the statistics of the last enrichment run
func (h *HTTPHandlerImpl) ServeRunStats(w http.ResponseWriter, r *http.Request) {
	stats := h.dataStore.GetRunStats()
	if stats.RunID == "" {
		h.RespondWithError(w, http.StatusServiceUnavailable, "No enrichment run has completed yet")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, stats)
}

// formatUptimeHuman formats duration into a human-readable string
func (h *HTTPHandlerImpl) formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.dataStore.GetServerStartTime())

	status, healthData, httpStatus := h.health.HealthCheck()

	lastUpdate, _ := healthData["last_update"].(string)
	dataAgeHours, _ := healthData["data_age_hours"].(float64)
	delete(healthData, "last_update")
	delete(healthData, "data_age_hours")

	healthData["api_version"] = "1.0"
	healthData["next_update"] = h.health.CalculateNextUpdate().Format(time.RFC3339)
	healthData["uptime_human"] = h.formatUptimeHuman(uptime)

	response := HealthResponse{
		Status:        status,
		LastUpdate:    lastUpdate,
		DataAgeHours:  dataAgeHours,
		UptimeSeconds: uptime.Seconds(),
		Data:          healthData,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}
