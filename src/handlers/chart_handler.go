// src/handlers/chart_handler.go
package handlers

import (
	"net/http"

	"github.com/santyago-pixel/portfolio-analyzer/src/logger"
	"github.com/santyago-pixel/portfolio-analyzer/src/models"
	"github.com/santyago-pixel/portfolio-analyzer/src/services"
	"github.com/santyago-pixel/portfolio-analyzer/src/utils"
)

type ChartHandler struct {
	analysis *AnalysisHandler
	charts   services.ChartService
}

func NewChartHandler(analysisHandler *AnalysisHandler, chartService services.ChartService) *ChartHandler {
	return &ChartHandler{analysis: analysisHandler, charts: chartService}
}

func (h *ChartHandler) HandleValueChart(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.charts.RenderValueChart)
}

func (h *ChartHandler) HandleDrawdownChart(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.charts.RenderDrawdownChart)
}

func (h *ChartHandler) render(w http.ResponseWriter, r *http.Request, renderFn func(*models.AnalysisReport) ([]byte, error)) {
	report := h.analysis.getReport(w, r)
	if report == nil {
		return
	}

	png, err := renderFn(report)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Chart rendering failed", "error", err)
		utils.SendJSONError(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache, private")
	w.Write(png)
}
