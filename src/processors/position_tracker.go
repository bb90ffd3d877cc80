// src/processors/position_tracker.go
package processors

import (
	"time"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

// PositionTracker replays a normalized ledger to reconstruct, for each
// requested day, every asset's held quantity and weighted-average cost plus
// the running cash balance. The position emitted for a day depends only on
// transactions dated on or before it.
type PositionTracker struct{}

func NewPositionTracker() *PositionTracker { return &PositionTracker{} }

// Track walks the ledger once with a cursor, emitting the portfolio state as
// of each asOfDate (carry-forward of the most recent transaction <= the
// date). transactions must already be sorted by date with stable input order,
// as the ledger processor produces them; asOfDates must be ascending.
//
// A sell exceeding the held quantity aborts with InsufficientPositionError:
// every later valuation would be undefined, so there is no partial result.
func (p *PositionTracker) Track(transactions []models.Transaction, asOfDates []time.Time) (map[time.Time]models.DayPositions, error) {
	positions := make(map[string]models.Position)
	cash := 0.0

	out := make(map[time.Time]models.DayPositions, len(asOfDates))
	txIndex := 0
	for _, date := range asOfDates {
		for txIndex < len(transactions) && !transactions[txIndex].Date.After(date) {
			if err := apply(positions, &cash, transactions[txIndex]); err != nil {
				return nil, err
			}
			txIndex++
		}
		out[date] = snapshotState(positions, cash)
	}
	return out, nil
}

// apply folds one transaction into the running state.
func apply(positions map[string]models.Position, cash *float64, tx models.Transaction) error {
	switch tx.Type {
	case models.TypeBuy:
		pos := positions[tx.Asset]
		newQty := pos.Quantity + tx.Quantity
		if newQty > 0 {
			pos.AvgCost = (pos.Quantity*pos.AvgCost + tx.Quantity*tx.Price) / newQty
		} else {
			pos.AvgCost = tx.Price
		}
		pos.Quantity = newQty
		positions[tx.Asset] = pos
		*cash -= tx.Amount

	case models.TypeSell:
		pos := positions[tx.Asset]
		if tx.Quantity > pos.Quantity+quantityEpsilon {
			return &models.InsufficientPositionError{
				Asset: tx.Asset,
				Date:  tx.Date,
				Held:  pos.Quantity,
				Sell:  tx.Quantity,
			}
		}
		pos.Quantity -= tx.Quantity
		if pos.Quantity < quantityEpsilon {
			pos.Quantity = 0
		}
		// Average cost is left as-is: realized P&L is not tracked here,
		// only market value matters downstream.
		positions[tx.Asset] = pos
		*cash += tx.Amount

	case models.TypeCoupon, models.TypeDividend, models.TypeCashFlow:
		*cash += tx.Amount
	}
	return nil
}

func snapshotState(positions map[string]models.Position, cash float64) models.DayPositions {
	assets := make(map[string]models.Position, len(positions))
	for asset, pos := range positions {
		assets[asset] = pos
	}
	return models.DayPositions{Assets: assets, Cash: cash}
}

// quantityEpsilon absorbs float noise when a position is sold down to zero.
const quantityEpsilon = 1e-9
