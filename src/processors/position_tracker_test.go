package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(date time.Time, typ models.TransactionType, asset string, qty, price, amount float64) models.Transaction {
	return models.Transaction{Date: date, Type: typ, Asset: asset, Quantity: qty, Price: price, Amount: amount}
}

func TestTrackWeightedAverageCost(t *testing.T) {
	tracker := NewPositionTracker()
	d1, d2 := day(2024, 1, 10), day(2024, 1, 15)

	out, err := tracker.Track([]models.Transaction{
		tx(d1, models.TypeBuy, "BONO_GD30", 100, 95.0, 9500),
		tx(d2, models.TypeBuy, "BONO_GD30", 100, 105.0, 10500),
	}, []time.Time{d1, d2})
	require.NoError(t, err)

	pos := out[d2].Assets["BONO_GD30"]
	assert.InDelta(t, 200, pos.Quantity, 1e-12)
	assert.InDelta(t, 100.0, pos.AvgCost, 1e-12)
	assert.InDelta(t, -20000, out[d2].Cash, 1e-9)
}

func TestTrackSellKeepsAvgCost(t *testing.T) {
	tracker := NewPositionTracker()
	d1, d2 := day(2024, 1, 10), day(2024, 1, 15)

	out, err := tracker.Track([]models.Transaction{
		tx(d1, models.TypeBuy, "ACCION_YPF", 50, 8000, 400000),
		tx(d2, models.TypeSell, "ACCION_YPF", 20, 8500, 170000),
	}, []time.Time{d2})
	require.NoError(t, err)

	pos := out[d2].Assets["ACCION_YPF"]
	assert.InDelta(t, 30, pos.Quantity, 1e-12)
	assert.InDelta(t, 8000, pos.AvgCost, 1e-12)
	assert.InDelta(t, -400000+170000, out[d2].Cash, 1e-9)
}

func TestTrackCarryForward(t *testing.T) {
	tracker := NewPositionTracker()
	d1 := day(2024, 1, 10)
	days := DateRange(d1, day(2024, 1, 14))

	out, err := tracker.Track([]models.Transaction{
		tx(d1, models.TypeBuy, "A", 10, 100, 1000),
	}, days)
	require.NoError(t, err)

	for _, d := range days {
		assert.InDelta(t, 10, out[d].Assets["A"].Quantity, 1e-12, d.Format("2006-01-02"))
	}
}

func TestTrackOversellAborts(t *testing.T) {
	tracker := NewPositionTracker()
	d1, d2 := day(2024, 1, 10), day(2024, 1, 15)

	_, err := tracker.Track([]models.Transaction{
		tx(d1, models.TypeBuy, "A", 10, 100, 1000),
		tx(d2, models.TypeSell, "A", 15, 100, 1500),
	}, []time.Time{d1, d2})

	var posErr *models.InsufficientPositionError
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, "A", posErr.Asset)
	assert.Equal(t, d2, posErr.Date)
	assert.InDelta(t, 10, posErr.Held, 1e-12)
	assert.InDelta(t, 15, posErr.Sell, 1e-12)
}

func TestTrackSellToExactlyZero(t *testing.T) {
	tracker := NewPositionTracker()
	d1 := day(2024, 1, 10)

	out, err := tracker.Track([]models.Transaction{
		tx(d1, models.TypeBuy, "A", 10, 100, 1000),
		tx(d1, models.TypeSell, "A", 10, 110, 1100),
	}, []time.Time{d1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[d1].Assets["A"].Quantity)
}

func TestTrackIncomeOnlyMovesCash(t *testing.T) {
	tracker := NewPositionTracker()
	d1, d2 := day(2024, 1, 10), day(2024, 1, 20)

	out, err := tracker.Track([]models.Transaction{
		tx(d1, models.TypeBuy, "BONO_GD30", 100, 95, 9500),
		tx(d2, models.TypeCoupon, "BONO_GD30", 0, 0, 250),
		tx(d2, models.TypeDividend, "ACCION_YPF", 0, 0, 120),
		tx(d2, models.TypeCashFlow, "", 0, 0, 1000),
	}, []time.Time{d1, d2})
	require.NoError(t, err)

	assert.InDelta(t, 100, out[d2].Assets["BONO_GD30"].Quantity, 1e-12)
	assert.InDelta(t, -9500+250+120+1000, out[d2].Cash, 1e-9)
	// income never creates a holding
	_, held := out[d2].Assets["ACCION_YPF"]
	assert.False(t, held)
}

func TestTrackStateBeforeFirstTransaction(t *testing.T) {
	tracker := NewPositionTracker()
	d0, d1 := day(2024, 1, 5), day(2024, 1, 10)

	out, err := tracker.Track([]models.Transaction{
		tx(d1, models.TypeBuy, "A", 10, 100, 1000),
	}, []time.Time{d0, d1})
	require.NoError(t, err)
	assert.Empty(t, out[d0].Assets)
	assert.Equal(t, 0.0, out[d0].Cash)
}
