package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func TestPriceOnForwardFills(t *testing.T) {
	table := NewPriceTable()
	table.Add(PricePoint{Date: d(2024, 1, 10), Asset: "BONO_GD30", Price: 95})
	table.Add(PricePoint{Date: d(2024, 1, 15), Asset: "BONO_GD30", Price: 97})

	// Exact quote days.
	price, ok := table.PriceOn("BONO_GD30", d(2024, 1, 10))
	require.True(t, ok)
	assert.Equal(t, 95.0, price)

	// Gap days fill from the latest quote on or before.
	price, ok = table.PriceOn("BONO_GD30", d(2024, 1, 12))
	require.True(t, ok)
	assert.Equal(t, 95.0, price)

	// After the last quote the last quote carries forward.
	price, ok = table.PriceOn("BONO_GD30", d(2024, 2, 1))
	require.True(t, ok)
	assert.Equal(t, 97.0, price)
}

func TestPriceOnNeverLooksAhead(t *testing.T) {
	table := NewPriceTable()
	table.Add(PricePoint{Date: d(2024, 1, 10), Asset: "ACCION_YPF", Price: 8500})

	_, ok := table.PriceOn("ACCION_YPF", d(2024, 1, 9))
	assert.False(t, ok)
	_, ok = table.PriceOn("SIN_COTIZACION", d(2024, 1, 10))
	assert.False(t, ok)
}

func TestPriceTableKeepsSeriesSorted(t *testing.T) {
	table := NewPriceTable()
	table.Add(PricePoint{Date: d(2024, 1, 15), Asset: "BONO_AL30", Price: 93})
	table.Add(PricePoint{Date: d(2024, 1, 10), Asset: "BONO_AL30", Price: 92})
	table.Add(PricePoint{Date: d(2024, 1, 12), Asset: "BONO_AL30", Price: 91})

	points := table.Points("BONO_AL30")
	require.Len(t, points, 3)
	assert.Equal(t, d(2024, 1, 10), points[0].Date)
	assert.Equal(t, d(2024, 1, 12), points[1].Date)
	assert.Equal(t, d(2024, 1, 15), points[2].Date)
}

func TestPriceTableRange(t *testing.T) {
	table := NewPriceTable()
	_, _, ok := table.Range()
	assert.False(t, ok)

	table.Add(PricePoint{Date: d(2024, 3, 1), Asset: "A", Price: 1})
	table.Add(PricePoint{Date: d(2024, 1, 5), Asset: "B", Price: 2})
	min, max, ok := table.Range()
	require.True(t, ok)
	assert.Equal(t, d(2024, 1, 5), min)
	assert.Equal(t, d(2024, 3, 1), max)
}

func TestPriceTableAssetsAndLen(t *testing.T) {
	table := NewPriceTableFromPoints([]PricePoint{
		{Date: d(2024, 1, 1), Asset: "B", Price: 1},
		{Date: d(2024, 1, 1), Asset: "A", Price: 2},
		{Date: d(2024, 1, 2), Asset: "A", Price: 3},
	})
	assert.Equal(t, []string{"A", "B"}, table.Assets())
	assert.Equal(t, 3, table.Len())
}
