package services

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func analyzableFixture() ([]models.Transaction, *models.PriceTable) {
	d1 := day(2024, 1, 10)
	transactions := []models.Transaction{
		{Date: d1, Type: models.TypeCashFlow, Amount: 20000, Row: 2},
		{Date: d1, Type: models.TypeBuy, Asset: "BONO_GD30", Quantity: 100, Price: 95, Amount: 9500, Row: 3},
		{Date: d1, Type: models.TypeBuy, Asset: "ACCION_YPF", Quantity: 1, Price: 8500, Amount: 8500, Row: 4},
	}

	prices := models.NewPriceTable()
	bond := []float64{95, 96, 94, 97, 98}
	stock := []float64{8500, 8400, 8600, 8700, 8650}
	for i := 0; i < 5; i++ {
		d := d1.AddDate(0, 0, i)
		prices.Add(models.PricePoint{Date: d, Asset: "BONO_GD30", Price: bond[i]})
		prices.Add(models.PricePoint{Date: d, Asset: "ACCION_YPF", Price: stock[i]})
	}
	return transactions, prices
}

func TestAnalyzeDefaultsToPriceRange(t *testing.T) {
	transactions, prices := analyzableFixture()

	report, err := Analyze(transactions, prices, models.AnalysisParams{})
	require.NoError(t, err)

	assert.Equal(t, day(2024, 1, 10), report.Params.StartDate)
	assert.Equal(t, day(2024, 1, 14), report.Params.EndDate)
	require.Len(t, report.Snapshots, 5)
	assert.Len(t, report.Returns, 4)
	assert.Equal(t, 4, report.Metrics.Observations)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	transactions, prices := analyzableFixture()
	params := models.AnalysisParams{RiskFreeRate: 0.03}

	first, err := Analyze(transactions, prices, params)
	require.NoError(t, err)
	second, err := Analyze(transactions, prices, params)
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(first, second))
}

func TestAnalyzeIsBitIdenticalAcrossRuns(t *testing.T) {
	// Prices like 0.1/0.2/0.3 sum differently depending on addition order, so
	// any map-order summation inside the pipeline shows up as diverging low
	// bits between runs. Compare full reports exactly, not within a delta.
	d1 := day(2024, 1, 10)
	transactions := []models.Transaction{
		{Date: d1, Type: models.TypeCashFlow, Amount: 10, Row: 2},
		{Date: d1, Type: models.TypeBuy, Asset: "A", Quantity: 1, Price: 0.1, Amount: 0.1, Row: 3},
		{Date: d1, Type: models.TypeBuy, Asset: "B", Quantity: 1, Price: 0.2, Amount: 0.2, Row: 4},
		{Date: d1, Type: models.TypeBuy, Asset: "C", Quantity: 1, Price: 0.3, Amount: 0.3, Row: 5},
	}
	prices := models.NewPriceTable()
	for i := 0; i < 4; i++ {
		dd := d1.AddDate(0, 0, i)
		prices.Add(models.PricePoint{Date: dd, Asset: "A", Price: 0.1 + float64(i)*0.01})
		prices.Add(models.PricePoint{Date: dd, Asset: "B", Price: 0.2 + float64(i)*0.01})
		prices.Add(models.PricePoint{Date: dd, Asset: "C", Price: 0.3 + float64(i)*0.01})
	}

	reference, err := Analyze(transactions, prices, models.AnalysisParams{})
	require.NoError(t, err)
	for run := 0; run < 20; run++ {
		report, err := Analyze(transactions, prices, models.AnalysisParams{})
		require.NoError(t, err)
		require.True(t, reflect.DeepEqual(reference, report), "run %d diverged", run)
	}
}

func TestAnalyzeSnapshotAccounting(t *testing.T) {
	transactions, prices := analyzableFixture()

	report, err := Analyze(transactions, prices, models.AnalysisParams{})
	require.NoError(t, err)

	for _, snap := range report.Snapshots {
		sum := snap.Cash
		for _, v := range snap.AssetValues {
			sum += v
		}
		assert.InDelta(t, snap.TotalValue, sum, 1e-9, snap.Date.Format("2006-01-02"))
	}
	// 20000 deposited, 18000 invested
	assert.InDelta(t, 2000, report.Snapshots[0].Cash, 1e-9)
	assert.Empty(t, report.UnpricedAssets)
}

func TestAnalyzeAttributionMatchesValueChange(t *testing.T) {
	transactions, prices := analyzableFixture()

	report, err := Analyze(transactions, prices, models.AnalysisParams{})
	require.NoError(t, err)

	first := report.Snapshots[0].TotalValue
	last := report.Snapshots[len(report.Snapshots)-1].TotalValue
	assert.InDelta(t, last-first, report.Attribution.Total, 1e-6)
}

func TestAnalyzeExplicitWindow(t *testing.T) {
	transactions, prices := analyzableFixture()
	params := models.AnalysisParams{
		StartDate: day(2024, 1, 11),
		EndDate:   day(2024, 1, 13),
	}

	report, err := Analyze(transactions, prices, params)
	require.NoError(t, err)
	require.Len(t, report.Snapshots, 3)
	assert.Equal(t, day(2024, 1, 11), report.Snapshots[0].Date)
	assert.Equal(t, day(2024, 1, 13), report.Snapshots[2].Date)
}

func TestAnalyzeRejectsInvertedWindow(t *testing.T) {
	transactions, prices := analyzableFixture()
	params := models.AnalysisParams{
		StartDate: day(2024, 1, 13),
		EndDate:   day(2024, 1, 11),
	}

	_, err := Analyze(transactions, prices, params)
	assert.Error(t, err)
}

func TestAnalyzeOversellAborts(t *testing.T) {
	transactions, prices := analyzableFixture()
	transactions = append(transactions, models.Transaction{
		Date: day(2024, 1, 12), Type: models.TypeSell, Asset: "BONO_GD30",
		Quantity: 500, Price: 94, Amount: 47000, Row: 5,
	})

	_, err := Analyze(transactions, prices, models.AnalysisParams{})
	var posErr *models.InsufficientPositionError
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, "BONO_GD30", posErr.Asset)
}

func TestAnalyzeEmptyPriceTable(t *testing.T) {
	transactions, _ := analyzableFixture()
	_, err := Analyze(transactions, models.NewPriceTable(), models.AnalysisParams{})
	assert.ErrorIs(t, err, ErrEmptyDataset)
}
