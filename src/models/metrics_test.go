package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricValueMarshalsNullWhenUndefined(t *testing.T) {
	report := MetricsReport{
		TotalReturn:  Metric(0.125),
		SortinoRatio: NoMetric(),
		Observations: 10,
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.InDelta(t, 0.125, decoded["total_return"].(float64), 1e-12)
	assert.Nil(t, decoded["sortino_ratio"])
	assert.Equal(t, float64(10), decoded["observations"])
}

func TestMetricValueRoundTrip(t *testing.T) {
	var m MetricValue
	require.NoError(t, json.Unmarshal([]byte("null"), &m))
	assert.False(t, m.Valid)

	require.NoError(t, json.Unmarshal([]byte("-0.05"), &m))
	assert.True(t, m.Valid)
	assert.Equal(t, -0.05, m.Value)
}

func TestParseDateLayouts(t *testing.T) {
	expected := d(2024, 3, 15)
	for _, raw := range []string{"2024-03-15", "15/03/2024", "15-03-2024", "2024-03-15 14:30:00"} {
		got, err := ParseDate(raw, 2)
		require.NoError(t, err, raw)
		assert.Equal(t, expected, got, raw)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("ayer", 7)
	var dateErr *InvalidDateError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, 7, dateErr.Row)
	assert.Equal(t, "ayer", dateErr.Raw)
}
