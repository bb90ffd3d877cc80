// src/handlers/analysis_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/santyago-pixel/portfolio-analyzer/src/config"
	"github.com/santyago-pixel/portfolio-analyzer/src/logger"
	"github.com/santyago-pixel/portfolio-analyzer/src/models"
	"github.com/santyago-pixel/portfolio-analyzer/src/services"
	"github.com/santyago-pixel/portfolio-analyzer/src/utils"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
}

func NewAnalysisHandler(service services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: service}
}

// parseAnalysisParams reads the optional query parameters shared by all
// analysis endpoints: risk_free_rate (annualized decimal, falling back to the
// configured default), start and end (YYYY-MM-DD).
func parseAnalysisParams(r *http.Request) (models.AnalysisParams, error) {
	params := models.AnalysisParams{RiskFreeRate: config.Cfg.DefaultRiskFreeRate}

	if raw := r.URL.Query().Get("risk_free_rate"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, fmt.Errorf("invalid risk_free_rate '%s'", raw)
		}
		params.RiskFreeRate = rate
	}
	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return params, fmt.Errorf("invalid start date '%s', expected YYYY-MM-DD", raw)
		}
		params.StartDate = start
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return params, fmt.Errorf("invalid end date '%s', expected YYYY-MM-DD", raw)
		}
		params.EndDate = end
	}
	return params, nil
}

// getReport resolves the authenticated user, the dataset ID and the query
// params, then fetches the (possibly cached) analysis report. On failure it
// writes the error response and returns nil.
func (h *AnalysisHandler) getReport(w http.ResponseWriter, r *http.Request) *models.AnalysisReport {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return nil
	}

	datasetID, err := datasetIDFromURL(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	params, err := parseAnalysisParams(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	report, err := h.analysisService.GetAnalysis(userID, datasetID, params)
	if err != nil {
		h.writeAnalysisError(w, r, datasetID, err)
		return nil
	}
	return report
}

// writeAnalysisError maps pipeline failures onto status codes: a missing
// dataset is 404, a semantic problem in the data (oversell) is 422, anything
// else is a 500.
func (h *AnalysisHandler) writeAnalysisError(w http.ResponseWriter, r *http.Request, datasetID int64, err error) {
	var posErr *models.InsufficientPositionError
	switch {
	case errors.Is(err, services.ErrDatasetNotFound):
		utils.SendJSONError(w, "Dataset not found", http.StatusNotFound)
	case errors.As(err, &posErr):
		utils.SendJSONError(w, posErr.Error(), http.StatusUnprocessableEntity)
	default:
		logger.ErrorFromContext(r.Context(), "Analysis failed", "datasetID", datasetID, "error", err)
		utils.SendJSONError(w, "Analysis failed", http.StatusInternalServerError)
	}
}

// writeJSONWithETag encodes the payload with ETag revalidation support, the
// same shape the report endpoints have always had.
func writeJSONWithETag(w http.ResponseWriter, r *http.Request, payload interface{}) {
	currentETag, etagErr := utils.GenerateETag(payload)

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.ErrorFromContext(r.Context(), "Error encoding JSON response", "error", err)
	}
}

// HandleGetAnalysis returns the complete report: snapshots, returns,
// metrics and attribution in one payload.
func (h *AnalysisHandler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	report := h.getReport(w, r)
	if report == nil {
		return
	}
	writeJSONWithETag(w, r, report)
}

func (h *AnalysisHandler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	report := h.getReport(w, r)
	if report == nil {
		return
	}
	writeJSONWithETag(w, r, map[string]interface{}{
		"params":          report.Params,
		"metrics":         report.Metrics,
		"unpriced_assets": report.UnpricedAssets,
	})
}

func (h *AnalysisHandler) HandleGetSnapshots(w http.ResponseWriter, r *http.Request) {
	report := h.getReport(w, r)
	if report == nil {
		return
	}
	writeJSONWithETag(w, r, report.Snapshots)
}

func (h *AnalysisHandler) HandleGetReturns(w http.ResponseWriter, r *http.Request) {
	report := h.getReport(w, r)
	if report == nil {
		return
	}
	writeJSONWithETag(w, r, report.Returns)
}

func (h *AnalysisHandler) HandleGetAttribution(w http.ResponseWriter, r *http.Request) {
	report := h.getReport(w, r)
	if report == nil {
		return
	}
	writeJSONWithETag(w, r, map[string]interface{}{
		"per_asset": report.Attribution.PerAsset,
		"total":     report.Attribution.Total,
	})
}

func (h *AnalysisHandler) HandleGetMonthlyAttribution(w http.ResponseWriter, r *http.Request) {
	report := h.getReport(w, r)
	if report == nil {
		return
	}
	writeJSONWithETag(w, r, map[string]interface{}{
		"per_month": report.Attribution.PerMonth,
		"total":     report.Attribution.Total,
	})
}
