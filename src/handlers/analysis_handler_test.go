package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santyago-pixel/portfolio-analyzer/src/config"
)

func init() {
	config.Cfg = &config.AppConfig{DefaultRiskFreeRate: 0.04}
}

func TestParseAnalysisParamsUsesConfiguredDefaultRate(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/datasets/1/metrics", nil)

	params, err := parseAnalysisParams(r)
	require.NoError(t, err)
	assert.Equal(t, 0.04, params.RiskFreeRate)
	assert.True(t, params.StartDate.IsZero())
	assert.True(t, params.EndDate.IsZero())
}

func TestParseAnalysisParamsQueryOverrides(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/datasets/1/metrics?risk_free_rate=0.015&start=2024-01-10&end=2024-02-01", nil)

	params, err := parseAnalysisParams(r)
	require.NoError(t, err)
	assert.Equal(t, 0.015, params.RiskFreeRate)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), params.StartDate)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), params.EndDate)
}

func TestParseAnalysisParamsRejectsBadValues(t *testing.T) {
	for _, query := range []string{
		"?risk_free_rate=four",
		"?start=10/01/2024",
		"?end=mañana",
	} {
		r := httptest.NewRequest("GET", "/api/datasets/1/metrics"+query, nil)
		_, err := parseAnalysisParams(r)
		assert.Error(t, err, query)
	}
}
