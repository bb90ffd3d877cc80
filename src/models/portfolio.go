package models

import "time"

// Position is one asset's state after replaying the ledger up to some day:
// held quantity and the weighted-average cost of acquiring it. Sells reduce
// quantity but leave the average cost untouched.
type Position struct {
	Quantity float64 `json:"quantity"`
	AvgCost  float64 `json:"avg_cost"`
}

// DayPositions is the full portfolio state as of one day: every asset with a
// nonzero history plus the running cash balance.
type DayPositions struct {
	Assets map[string]Position `json:"assets"`
	Cash   float64             `json:"cash"`
}

// PortfolioSnapshot is one day of the valued portfolio. TotalValue is always
// Cash + the sum of AssetValues; assets held on the day but without any quote
// on or before it are valued at zero and listed in Unpriced rather than
// silently folded in.
type PortfolioSnapshot struct {
	Date        time.Time          `json:"date"`
	TotalValue  float64            `json:"total_value"`
	Cash        float64            `json:"cash"`
	AssetValues map[string]float64 `json:"asset_values"`
	Unpriced    []string           `json:"unpriced,omitempty"`
}

// DailyReturn is one observation of the portfolio return series:
// r = V_t/V_{t-1} - 1. Days whose previous value is zero or negative produce
// no observation at all.
type DailyReturn struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// AssetContribution is one asset's share of the portfolio's price-driven P&L
// over the analysis window, with summary statistics of the asset's own price
// series while held.
type AssetContribution struct {
	Asset            string      `json:"asset"`
	Contribution     float64     `json:"contribution"`
	TotalReturn      MetricValue `json:"total_return"`
	AnnualizedReturn MetricValue `json:"annualized_return"`
	Volatility       MetricValue `json:"volatility"`
}

// MonthlyContribution is the portfolio's price-driven P&L bucketed into one
// calendar month, Month formatted as "2006-01".
type MonthlyContribution struct {
	Month        string  `json:"month"`
	Contribution float64 `json:"contribution"`
}

// AttributionResult decomposes total price-driven P&L by asset and by month.
// Both decompositions sum to Total (within floating-point tolerance).
type AttributionResult struct {
	PerAsset []AssetContribution   `json:"per_asset"`
	PerMonth []MonthlyContribution `json:"per_month"`
	Total    float64               `json:"total"`
}

// AnalysisParams configures one pipeline run. Zero StartDate/EndDate mean the
// full range of the price data. The struct is passed by value; a run never
// mutates it and no run-scoped state outlives the run.
type AnalysisParams struct {
	RiskFreeRate float64   `json:"risk_free_rate"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}

// AnalysisReport is the complete output of one pipeline run.
type AnalysisReport struct {
	Params      AnalysisParams      `json:"params"`
	Snapshots   []PortfolioSnapshot `json:"snapshots"`
	Returns     []DailyReturn       `json:"returns"`
	Metrics     MetricsReport       `json:"metrics"`
	Attribution AttributionResult   `json:"attribution"`
	// UnpricedAssets aggregates every asset that was held but unquoted on at
	// least one day of the window, for the presentation layer to warn about.
	UnpricedAssets []string `json:"unpriced_assets,omitempty"`
}
