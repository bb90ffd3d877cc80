// src/services/chart_service.go
package services

import (
	"fmt"

	charts "github.com/vicanso/go-charts/v2"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
	"github.com/santyago-pixel/portfolio-analyzer/src/utils"
)

type chartServiceImpl struct{}

func NewChartService() ChartService {
	return &chartServiceImpl{}
}

// RenderValueChart draws the daily portfolio value curve as a PNG.
func (s *chartServiceImpl) RenderValueChart(report *models.AnalysisReport) ([]byte, error) {
	if len(report.Snapshots) == 0 {
		return nil, fmt.Errorf("no snapshots to chart")
	}

	values := make([]float64, len(report.Snapshots))
	labels := make([]string, len(report.Snapshots))
	for i, snap := range report.Snapshots {
		values[i] = snap.TotalValue
		labels[i] = snap.Date.Format("Jan 02")
	}

	title := "Portfolio value"
	if report.Metrics.TotalReturn.Valid {
		title = fmt.Sprintf("Portfolio value | Return: %.2f%%", report.Metrics.TotalReturn.Value*100)
	}
	return renderLine(values, labels, title)
}

// RenderDrawdownChart draws the drawdown of the compounded return curve,
// in percent below the running peak (0 at every new high).
func (s *chartServiceImpl) RenderDrawdownChart(report *models.AnalysisReport) ([]byte, error) {
	if len(report.Returns) == 0 {
		return nil, fmt.Errorf("no return series to chart")
	}

	drawdowns := make([]float64, len(report.Returns))
	labels := make([]string, len(report.Returns))
	value, peak := 1.0, 1.0
	for i, r := range report.Returns {
		value *= 1 + r.Value
		if value > peak {
			peak = value
		}
		drawdowns[i] = utils.RoundFloat(-(peak-value)/peak*100, 4)
		labels[i] = r.Date.Format("Jan 02")
	}

	title := "Drawdown (%)"
	if report.Metrics.MaxDrawdown.Valid {
		title = fmt.Sprintf("Drawdown (%%) | Max: %.2f%%", report.Metrics.MaxDrawdown.Value*100)
	}
	return renderLine(drawdowns, labels, title)
}

func renderLine(values []float64, labels []string, title string) ([]byte, error) {
	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	padding := (maxVal - minVal) * 0.05
	if padding == 0 {
		padding = maxVal*0.05 + 1
	}
	yMin := minVal - padding
	yMax := maxVal + padding

	splitNum := 6
	if len(labels) <= 30 {
		splitNum = len(labels) / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
