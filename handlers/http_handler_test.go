package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vineetdaniels2108/RxNormSIGProject/data"
	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
	"github.com/vineetdaniels2108/RxNormSIGProject/health"
	"github.com/vineetdaniels2108/RxNormSIGProject/validation"
)

func populatedHandler() *HTTPHandlerImpl {
	records := []entities.EnrichedRecord{
		{
			RxCUI:           "197361",
			DrugNameClean:   "Amoxicillin 500 MG Oral Tablet",
			DoseFormClean:   "Tablet",
			Company:         "Teva",
			NDCPrimary:      "49452-3606-01",
			SigPrimary:      "Take 1 tablet by mouth once daily",
			SigInstructions: []string{"Take 1 tablet by mouth once daily"},
			SearchText:      "amoxicillin 500 mg oral tablet teva scd 49452-3606-01 49452360601",
		},
		{
			RxCUI:         "617312",
			DrugNameClean: "Atorvastatin 10 MG Oral Tablet",
			DoseFormClean: "Tablet",
			Company:       "Pfizer",
			SearchText:    "atorvastatin 10 mg oral tablet pfizer scd",
		},
	}

	dc := data.NewDataContainer()
	dc.SetServerStartTime(time.Now())
	dc.UpdateData(records, data.BuildRecordsMap(records), &entities.RunStats{
		RunID:           "test-run",
		TotalRecords:    2,
		EnrichedRecords: 2,
	})

	return NewHTTPHandler(dc, validation.NewDataValidator(), health.NewHealthChecker(dc))
}

// withURLParam injects a chi route parameter into the request context
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestServeAllRecords(t *testing.T) {
	h := populatedHandler()

	req := httptest.NewRequest("GET", "/database", nil)
	w := httptest.NewRecorder()
	h.ServeAllRecords(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var records []entities.EnrichedRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestServePagedRecords(t *testing.T) {
	h := populatedHandler()

	req := withURLParam(httptest.NewRequest("GET", "/database/1", nil), "pageNumber", "1")
	w := httptest.NewRecorder()
	h.ServePagedRecords(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var response map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if response["totalItems"].(float64) != 2 {
		t.Errorf("totalItems = %v, want 2", response["totalItems"])
	}
	if response["maxPage"].(float64) != 1 {
		t.Errorf("maxPage = %v, want 1", response["maxPage"])
	}
}

func TestServePagedRecordsInvalidPage(t *testing.T) {
	h := populatedHandler()

	tests := []struct {
		page string
		code int
	}{
		{"0", http.StatusBadRequest},
		{"-1", http.StatusBadRequest},
		{"abc", http.StatusBadRequest},
		{"99", http.StatusNotFound},
	}

	for _, tt := range tests {
		req := withURLParam(httptest.NewRequest("GET", "/database/"+tt.page, nil), "pageNumber", tt.page)
		w := httptest.NewRecorder()
		h.ServePagedRecords(w, req)

		if w.Code != tt.code {
			t.Errorf("page %q: status = %d, want %d", tt.page, w.Code, tt.code)
		}
	}
}

func TestFindMedication(t *testing.T) {
	h := populatedHandler()

	req := withURLParam(httptest.NewRequest("GET", "/medication/amoxicillin", nil), "query", "amoxicillin")
	w := httptest.NewRecorder()
	h.FindMedication(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var results []entities.EnrichedRecord
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(results) != 1 || results[0].RxCUI != "197361" {
		t.Errorf("results = %v", results)
	}
}

func TestFindMedicationByCode(t *testing.T) {
	h := populatedHandler()

	// Codes live in the search text, so NDC queries work like name queries
	req := withURLParam(httptest.NewRequest("GET", "/medication/49452360601", nil), "query", "49452360601")
	w := httptest.NewRecorder()
	h.FindMedication(w, req)

	var results []entities.EnrichedRecord
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestFindMedicationNoMatches(t *testing.T) {
	h := populatedHandler()

	req := withURLParam(httptest.NewRequest("GET", "/medication/zzzquil", nil), "query", "zzzquil")
	w := httptest.NewRecorder()
	h.FindMedication(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with empty results", w.Code)
	}

	var results []entities.EnrichedRecord
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestFindMedicationRejectsInvalidInput(t *testing.T) {
	h := populatedHandler()

	req := withURLParam(httptest.NewRequest("GET", "/medication/x", nil), "query", "<script>alert(1)</script>")
	w := httptest.NewRecorder()
	h.FindMedication(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestFindMedicationByRxCUI(t *testing.T) {
	h := populatedHandler()

	req := withURLParam(httptest.NewRequest("GET", "/medication/id/197361", nil), "rxcui", "197361")
	w := httptest.NewRecorder()
	h.FindMedicationByRxCUI(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var rec entities.EnrichedRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if rec.DrugNameClean != "Amoxicillin 500 MG Oral Tablet" {
		t.Errorf("record = %+v", rec)
	}
}

func TestFindMedicationByRxCUINotFound(t *testing.T) {
	h := populatedHandler()

	req := withURLParam(httptest.NewRequest("GET", "/medication/id/42", nil), "rxcui", "42")
	w := httptest.NewRecorder()
	h.FindMedicationByRxCUI(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestFindMedicationByRxCUIInvalid(t *testing.T) {
	h := populatedHandler()

	req := withURLParam(httptest.NewRequest("GET", "/medication/id/abc", nil), "rxcui", "abc")
	w := httptest.NewRecorder()
	h.FindMedicationByRxCUI(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestServeRunStats(t *testing.T) {
	h := populatedHandler()

	req := httptest.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()
	h.ServeRunStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var stats entities.RunStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if stats.RunID != "test-run" || stats.EnrichedRecords != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestServeRunStatsBeforeFirstRun(t *testing.T) {
	dc := data.NewDataContainer()
	h := NewHTTPHandler(dc, validation.NewDataValidator(), health.NewHealthChecker(dc))

	req := httptest.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()
	h.ServeRunStats(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	h := populatedHandler()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.HealthCheck(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %s, want healthy", resp.Status)
	}
	if resp.Data["records"].(float64) != 2 {
		t.Errorf("records = %v, want 2", resp.Data["records"])
	}
}

func TestHealthCheckUnhealthyWithoutData(t *testing.T) {
	dc := data.NewDataContainer()
	h := NewHTTPHandler(dc, validation.NewDataValidator(), health.NewHealthChecker(dc))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.HealthCheck(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("status = %s, want unhealthy", resp.Status)
	}
}
