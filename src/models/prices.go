package models

import (
	"sort"
	"time"
)

// PricePoint is one quoted price for one asset on one day.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Asset string    `json:"asset"`
	Price float64   `json:"price"`
}

type assetSeries struct {
	dates  []time.Time
	prices []float64
}

// PriceTable indexes price points by asset, keeping each asset's series sorted
// by date so lookups can forward-fill: the price for a day without a quote is
// the most recent quote on or before that day.
type PriceTable struct {
	series map[string]*assetSeries
	min    time.Time
	max    time.Time
}

func NewPriceTable() *PriceTable {
	return &PriceTable{series: make(map[string]*assetSeries)}
}

// NewPriceTableFromPoints builds a table from unordered points.
func NewPriceTableFromPoints(points []PricePoint) *PriceTable {
	t := NewPriceTable()
	for _, p := range points {
		t.Add(p)
	}
	return t
}

// Add inserts a point, keeping the per-asset series sorted.
func (t *PriceTable) Add(p PricePoint) {
	s, ok := t.series[p.Asset]
	if !ok {
		s = &assetSeries{}
		t.series[p.Asset] = s
	}
	i := sort.Search(len(s.dates), func(i int) bool { return s.dates[i].After(p.Date) })
	s.dates = append(s.dates, time.Time{})
	s.prices = append(s.prices, 0)
	copy(s.dates[i+1:], s.dates[i:])
	copy(s.prices[i+1:], s.prices[i:])
	s.dates[i] = p.Date
	s.prices[i] = p.Price

	if t.min.IsZero() || p.Date.Before(t.min) {
		t.min = p.Date
	}
	if t.max.IsZero() || p.Date.After(t.max) {
		t.max = p.Date
	}
}

// PriceOn returns the forward-filled price of asset on date: the latest quote
// with quote date <= date. ok is false when the asset has no quote on or
// before the date at all.
func (t *PriceTable) PriceOn(asset string, date time.Time) (price float64, ok bool) {
	s, found := t.series[asset]
	if !found || len(s.dates) == 0 {
		return 0, false
	}
	i := sort.Search(len(s.dates), func(i int) bool { return s.dates[i].After(date) })
	if i == 0 {
		return 0, false
	}
	return s.prices[i-1], true
}

// Assets lists the assets the table has quotes for, sorted.
func (t *PriceTable) Assets() []string {
	out := make([]string, 0, len(t.series))
	for a := range t.series {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Points returns a copy of one asset's quoted series in date order.
func (t *PriceTable) Points(asset string) []PricePoint {
	s, ok := t.series[asset]
	if !ok {
		return nil
	}
	out := make([]PricePoint, len(s.dates))
	for i := range s.dates {
		out[i] = PricePoint{Date: s.dates[i], Asset: asset, Price: s.prices[i]}
	}
	return out
}

// Range returns the earliest and latest quoted dates across all assets, and
// false when the table is empty. It is the default analysis window.
func (t *PriceTable) Range() (min, max time.Time, ok bool) {
	if t.min.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return t.min, t.max, true
}

// Len reports the total number of stored points.
func (t *PriceTable) Len() int {
	n := 0
	for _, s := range t.series {
		n += len(s.dates)
	}
	return n
}
