package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func TestRenderChartsProducePNG(t *testing.T) {
	transactions, prices := analyzableFixture()
	report, err := Analyze(transactions, prices, models.AnalysisParams{})
	require.NoError(t, err)

	svc := NewChartService()

	value, err := svc.RenderValueChart(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(value, pngMagic))

	drawdown, err := svc.RenderDrawdownChart(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(drawdown, pngMagic))
}

func TestRenderChartsRejectEmptyReport(t *testing.T) {
	svc := NewChartService()

	_, err := svc.RenderValueChart(&models.AnalysisReport{})
	assert.Error(t, err)
	_, err = svc.RenderDrawdownChart(&models.AnalysisReport{})
	assert.Error(t, err)
}
