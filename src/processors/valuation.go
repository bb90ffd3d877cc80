// src/processors/valuation.go
package processors

import (
	"sort"
	"time"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

// ValuationEngine turns per-day positions plus the price table into the daily
// portfolio value series and its return series.
type ValuationEngine struct{}

func NewValuationEngine() *ValuationEngine { return &ValuationEngine{} }

// DateRange expands an inclusive [start, end] window into consecutive days.
func DateRange(start, end time.Time) []time.Time {
	start, end = models.Day(start), models.Day(end)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Value produces one snapshot per day. Asset prices are forward-filled; an
// asset held on a day with no quote on or before it contributes zero and is
// recorded in the snapshot's Unpriced list, so the caller can tell a genuine
// zero from a missing quote.
func (e *ValuationEngine) Value(positions map[time.Time]models.DayPositions, prices *models.PriceTable, days []time.Time) []models.PortfolioSnapshot {
	snapshots := make([]models.PortfolioSnapshot, 0, len(days))
	for _, day := range days {
		state := positions[day]

		snap := models.PortfolioSnapshot{
			Date:        day,
			Cash:        state.Cash,
			AssetValues: make(map[string]float64),
		}
		total := state.Cash
		for _, asset := range sortedAssets(state.Assets) {
			pos := state.Assets[asset]
			if pos.Quantity <= 0 {
				continue
			}
			price, ok := prices.PriceOn(asset, day)
			if !ok {
				snap.Unpriced = append(snap.Unpriced, asset)
				snap.AssetValues[asset] = 0
				continue
			}
			value := pos.Quantity * price
			snap.AssetValues[asset] = value
			total += value
		}
		sort.Strings(snap.Unpriced)
		snap.TotalValue = total
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// sortedAssets fixes the summation order over a positions map. Map iteration
// order is randomized, and float addition is order-sensitive in its low bits,
// so summing in map order would make repeated runs over the same inputs
// disagree.
func sortedAssets(assets map[string]models.Position) []string {
	names := make([]string, 0, len(assets))
	for asset := range assets {
		names = append(names, asset)
	}
	sort.Strings(names)
	return names
}

// Returns derives the simple daily return series from consecutive snapshots.
// The first day of the window has no previous value and yields no
// observation; likewise any day whose previous total is zero or negative,
// where the ratio would be meaningless.
func (e *ValuationEngine) Returns(snapshots []models.PortfolioSnapshot) []models.DailyReturn {
	var returns []models.DailyReturn
	for i := 1; i < len(snapshots); i++ {
		prev := snapshots[i-1].TotalValue
		if prev <= 0 {
			continue
		}
		returns = append(returns, models.DailyReturn{
			Date:  snapshots[i].Date,
			Value: snapshots[i].TotalValue/prev - 1,
		})
	}
	return returns
}
