// Package diligence exposes the pipeline over HTTP: run a batch, then
// download each generated report.
package diligence

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"public_diligence/pkg/core/logger"
	"public_diligence/pkg/core/pipeline"
	"public_diligence/pkg/core/store"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves the diligence endpoints.
type Handler struct {
	orchestrator *pipeline.Orchestrator
	reports      *store.ReportStore
}

// NewHandler creates a Handler over the given orchestrator.
func NewHandler(orchestrator *pipeline.Orchestrator) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		reports:      store.NewReportStore(),
	}
}

// RunRequest is the batch submission payload. Companies is the same
// comma-separated input the interactive form takes.
type RunRequest struct {
	Companies string `json:"companies"`
}

// CompanyResult is the per-company entry in the batch response.
type CompanyResult struct {
	Company  string `json:"company"`
	Ticker   string `json:"ticker,omitempty"`
	Status   string `json:"status"`
	Notice   string `json:"notice,omitempty"`
	ReportID string `json:"report_id,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

// RunResponse is the full batch response.
type RunResponse struct {
	Results []CompanyResult `json:"results"`
}

// HandleRun runs a batch and registers each generated report for download.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	names := pipeline.SplitCompanies(req.Companies)
	if len(names) == 0 {
		http.Error(w, "no company names provided", http.StatusBadRequest)
		return
	}

	logger.Log.WithField("companies", names).Info("Running diligence batch")
	outcomes := h.orchestrator.RunBatch(r.Context(), names)

	resp := RunResponse{Results: make([]CompanyResult, 0, len(outcomes))}
	for _, outcome := range outcomes {
		result := CompanyResult{
			Company: outcome.Company,
			Ticker:  outcome.Ticker,
		}
		if outcome.Succeeded() {
			result.Status = "ok"
			result.ReportID = h.reports.Put(outcome.Report)
			result.FileName = outcome.Report.FileName
		} else {
			result.Status = "skipped"
			result.Notice = outcome.Notice()
		}
		resp.Results = append(resp.Results, result)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleDownload streams a stored report as an xlsx attachment.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing report id", http.StatusBadRequest)
		return
	}

	report, err := h.reports.Get(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	if _, err := io.Copy(w, report.Reader()); err != nil {
		logger.Log.WithField("report", report.FileName).Warnf("Download interrupted: %v", err)
	}
}
