// src/processors/attribution.go
package processors

import (
	"sort"
	"time"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

// AttributionEngine decomposes the portfolio's price-driven P&L: the part of
// each day's value change explained by price movement of assets already held
// entering the day. Quantity changes from trades are deliberately excluded;
// attribution explains performance, not capital flows.
type AttributionEngine struct{}

func NewAttributionEngine() *AttributionEngine { return &AttributionEngine{} }

// Attribute sums, per asset and per calendar month, the daily quantities
// q(d-1) x (p(d) - p(d-1)) with forward-filled prices. A day where either
// price is unknown contributes nothing for that asset. Both decompositions
// sum to the same total by construction.
func (e *AttributionEngine) Attribute(positions map[time.Time]models.DayPositions, prices *models.PriceTable, days []time.Time) models.AttributionResult {
	perAsset := make(map[string]float64)
	perMonth := make(map[string]float64)
	var monthOrder []string
	total := 0.0

	for i := 1; i < len(days); i++ {
		prevDay, day := days[i-1], days[i]
		state := positions[prevDay]
		dayPnL := 0.0
		for _, asset := range sortedAssets(state.Assets) {
			pos := state.Assets[asset]
			if pos.Quantity <= 0 {
				continue
			}
			prevPrice, okPrev := prices.PriceOn(asset, prevDay)
			price, ok := prices.PriceOn(asset, day)
			if !okPrev || !ok {
				continue
			}
			pnl := pos.Quantity * (price - prevPrice)
			perAsset[asset] += pnl
			dayPnL += pnl
		}

		month := day.Format("2006-01")
		if _, seen := perMonth[month]; !seen {
			monthOrder = append(monthOrder, month)
		}
		perMonth[month] += dayPnL
		total += dayPnL
	}

	result := models.AttributionResult{Total: total}
	assets := make([]string, 0, len(perAsset))
	for asset := range perAsset {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	for _, asset := range assets {
		contribution := models.AssetContribution{
			Asset:        asset,
			Contribution: perAsset[asset],
		}
		fillAssetStats(&contribution, prices, days)
		result.PerAsset = append(result.PerAsset, contribution)
	}
	for _, month := range monthOrder {
		result.PerMonth = append(result.PerMonth, models.MonthlyContribution{
			Month:        month,
			Contribution: perMonth[month],
		})
	}
	return result
}

// fillAssetStats computes summary statistics of the asset's own quoted price
// series inside the analysis window: total and annualized return and
// annualized volatility of its quote-to-quote returns.
func fillAssetStats(c *models.AssetContribution, prices *models.PriceTable, days []time.Time) {
	if len(days) == 0 {
		return
	}
	start, end := days[0], days[len(days)-1]

	var series []float64
	for _, point := range prices.Points(c.Asset) {
		if point.Date.Before(start) || point.Date.After(end) {
			continue
		}
		series = append(series, point.Price)
	}

	returns := make([]float64, 0, len(series))
	for i := 1; i < len(series); i++ {
		if series[i-1] > 0 {
			returns = append(returns, series[i]/series[i-1]-1)
		}
	}

	if total, err := TotalReturn(returns); err == nil {
		c.TotalReturn = models.Metric(total)
	}
	if annualized, err := AnnualizedReturn(returns); err == nil {
		c.AnnualizedReturn = models.Metric(annualized)
	}
	if vol, err := Volatility(returns); err == nil {
		c.Volatility = models.Metric(vol)
	}
}
