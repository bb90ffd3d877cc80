package processors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

// twentyReturns is a fixed series used to pin down the VaR/CVaR percentile
// math. Sorted, its two worst observations are -0.05 and -0.03.
func twentyReturns() []float64 {
	return []float64{
		0.010, -0.030, 0.005, 0.012, -0.008,
		0.020, 0.003, -0.050, 0.007, 0.015,
		-0.002, 0.009, 0.011, -0.012, 0.004,
		0.018, -0.006, 0.002, 0.013, 0.001,
	}
}

func TestTotalReturnCompounds(t *testing.T) {
	total, err := TotalReturn([]float64{0.10, -0.05, 0.02})
	require.NoError(t, err)
	assert.InDelta(t, 1.10*0.95*1.02-1, total, 1e-12)
}

func TestTotalReturnEmpty(t *testing.T) {
	_, err := TotalReturn(nil)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestAnnualizedReturnReconstruction(t *testing.T) {
	// (1+annualized)^(N/252) must rebuild 1+total exactly.
	returns := twentyReturns()
	total, err := TotalReturn(returns)
	require.NoError(t, err)
	annualized, err := AnnualizedReturn(returns)
	require.NoError(t, err)

	rebuilt := math.Pow(1+annualized, float64(len(returns))/TradingDaysPerYear)
	assert.InDelta(t, 1+total, rebuilt, 1e-9)
}

func TestVolatilitySampleStddev(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.02, 0.00}
	// mean 0.005, sample variance = sum(diff^2)/3
	diffs := []float64{0.005, -0.015, 0.015, -0.005}
	sumSq := 0.0
	for _, d := range diffs {
		sumSq += d * d
	}
	expected := math.Sqrt(sumSq/3) * math.Sqrt(252)

	vol, err := Volatility(returns)
	require.NoError(t, err)
	assert.InDelta(t, expected, vol, 1e-12)
}

func TestVolatilityNeedsTwoObservations(t *testing.T) {
	_, err := Volatility([]float64{0.01})
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestMaxDrawdownBounds(t *testing.T) {
	dd, err := MaxDrawdown(twentyReturns())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, dd, 0.0)
	assert.LessOrEqual(t, dd, 1.0)
}

func TestMaxDrawdownZeroOnMonotonicCurve(t *testing.T) {
	dd, err := MaxDrawdown([]float64{0.01, 0.00, 0.02, 0.005})
	require.NoError(t, err)
	assert.Equal(t, 0.0, dd)
}

func TestMaxDrawdownKnownDecline(t *testing.T) {
	// Curve: 1.0 -> 1.10 -> 0.88 -> 0.968. Peak 1.10, trough 0.88.
	dd, err := MaxDrawdown([]float64{0.10, -0.20, 0.10})
	require.NoError(t, err)
	assert.InDelta(t, 0.20, dd, 1e-12)
}

func TestMaxDrawdownCapsAtTotalLoss(t *testing.T) {
	// A sub-(-100%) return drives the compounded curve negative; the drawdown
	// still reports at most a total loss.
	dd, err := MaxDrawdown([]float64{0.10, -1.5})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dd, 1e-12)
}

func TestVaR95LinearInterpolation(t *testing.T) {
	// With 20 observations the 5th percentile sits at position
	// 0.05*19 = 0.95, between the two worst returns:
	// -0.05*(1-0.95) + -0.03*0.95 = -0.0310.
	v, err := VaR95(twentyReturns())
	require.NoError(t, err)
	assert.InDelta(t, 0.0310, v, 1e-12)
}

func TestCVaR95MeanOfTail(t *testing.T) {
	// Only -0.05 lies at or below the -0.0310 threshold.
	cv, err := CVaR95(twentyReturns())
	require.NoError(t, err)
	assert.InDelta(t, 0.050, cv, 1e-12)
}

func TestWinRate(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		want    float64
	}{
		{"all positive", []float64{0.01, 0.02, 0.03}, 1.0},
		{"none positive", []float64{-0.01, 0.0, -0.02}, 0.0},
		{"zero is not a win", []float64{0.01, 0.0, -0.01, 0.02}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wr, err := WinRate(tt.returns)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, wr, 1e-12)
		})
	}
}

func TestComputeFullReport(t *testing.T) {
	report := Compute(twentyReturns(), 0.02)

	require.True(t, report.TotalReturn.Valid)
	require.True(t, report.AnnualizedReturn.Valid)
	require.True(t, report.Volatility.Valid)
	require.True(t, report.SharpeRatio.Valid)
	require.True(t, report.SortinoRatio.Valid)
	require.True(t, report.MaxDrawdown.Valid)
	require.True(t, report.CalmarRatio.Valid)
	require.True(t, report.VaR95.Valid)
	require.True(t, report.CVaR95.Valid)
	require.True(t, report.WinRate.Valid)

	assert.Equal(t, 20, report.Observations)
	assert.Equal(t, 14, report.PositiveDays)

	excess := report.AnnualizedReturn.Value - 0.02
	assert.InDelta(t, excess/report.Volatility.Value, report.SharpeRatio.Value, 1e-12)
	assert.InDelta(t, report.AnnualizedReturn.Value/report.MaxDrawdown.Value, report.CalmarRatio.Value, 1e-12)
}

func TestComputeSingleObservation(t *testing.T) {
	// One return: compounding metrics exist, variance metrics do not.
	report := Compute([]float64{0.01}, 0.0)

	assert.True(t, report.TotalReturn.Valid)
	assert.InDelta(t, 0.01, report.TotalReturn.Value, 1e-12)
	assert.True(t, report.AnnualizedReturn.Valid)
	assert.True(t, report.MaxDrawdown.Valid)
	assert.True(t, report.WinRate.Valid)

	assert.False(t, report.Volatility.Valid)
	assert.False(t, report.SharpeRatio.Valid)
	assert.False(t, report.SortinoRatio.Valid)
	assert.False(t, report.CalmarRatio.Valid)
}

func TestComputeEmptySeries(t *testing.T) {
	report := Compute(nil, 0.0)
	assert.Equal(t, 0, report.Observations)
	assert.False(t, report.TotalReturn.Valid)
	assert.False(t, report.AnnualizedReturn.Valid)
	assert.False(t, report.MaxDrawdown.Valid)
	assert.False(t, report.VaR95.Valid)
	assert.False(t, report.WinRate.Valid)
}

func TestComputeSortinoUndefinedWithoutLosses(t *testing.T) {
	report := Compute([]float64{0.01, 0.02, 0.015}, 0.0)
	assert.True(t, report.SharpeRatio.Valid)
	assert.False(t, report.SortinoRatio.Valid)
}

func TestComputeCalmarUndefinedWithoutDrawdown(t *testing.T) {
	report := Compute([]float64{0.01, 0.02, 0.015}, 0.0)
	require.True(t, report.MaxDrawdown.Valid)
	assert.Equal(t, 0.0, report.MaxDrawdown.Value)
	assert.False(t, report.CalmarRatio.Valid)
}

func TestDownsideDeviationTargetZero(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.03, -0.02}
	expected := math.Sqrt((0.01*0.01+0.02*0.02)/4) * math.Sqrt(252)

	dd, err := DownsideDeviation(returns)
	require.NoError(t, err)
	assert.InDelta(t, expected, dd, 1e-12)
}
