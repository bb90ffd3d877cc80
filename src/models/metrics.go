package models

import "encoding/json"

// MetricValue is a metric that may be undefined: either there were too few
// return observations, or the metric's denominator is degenerate (zero
// volatility, no negative returns, zero drawdown). Undefined values serialize
// as JSON null, never as a misleading zero.
type MetricValue struct {
	Value float64
	Valid bool
}

// Metric wraps a defined value.
func Metric(v float64) MetricValue { return MetricValue{Value: v, Valid: true} }

// NoMetric is the undefined sentinel.
func NoMetric() MetricValue { return MetricValue{} }

func (m MetricValue) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *MetricValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = MetricValue{}
		return nil
	}
	m.Valid = true
	return json.Unmarshal(data, &m.Value)
}

// MetricsReport is the scalar metrics record for one analysis run.
// Observations and PositiveDays are counts over the return series.
type MetricsReport struct {
	TotalReturn      MetricValue `json:"total_return"`
	AnnualizedReturn MetricValue `json:"annualized_return"`
	Volatility       MetricValue `json:"volatility"`
	SharpeRatio      MetricValue `json:"sharpe_ratio"`
	SortinoRatio     MetricValue `json:"sortino_ratio"`
	CalmarRatio      MetricValue `json:"calmar_ratio"`
	MaxDrawdown      MetricValue `json:"max_drawdown"`
	VaR95            MetricValue `json:"var_95"`
	CVaR95           MetricValue `json:"cvar_95"`
	WinRate          MetricValue `json:"win_rate"`
	Observations     int         `json:"observations"`
	PositiveDays     int         `json:"positive_days"`
}
