// src/processors/metrics.go
//
// Pure statistics over a daily return series. Every function is deterministic
// in its inputs; none keeps state. Functions that need more observations than
// they were given return ErrInsufficientData instead of a number.
package processors

import (
	"math"
	"sort"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

// TradingDaysPerYear is the annualization constant T.
const TradingDaysPerYear = 252.0

// TotalReturn is the compounded return over the whole series.
func TotalReturn(returns []float64) (float64, error) {
	if len(returns) == 0 {
		return 0, models.ErrInsufficientData
	}
	cumulative := 1.0
	for _, r := range returns {
		cumulative *= 1 + r
	}
	return cumulative - 1, nil
}

// AnnualizedReturn geometrically scales the total return to a year of
// TradingDaysPerYear observations.
func AnnualizedReturn(returns []float64) (float64, error) {
	total, err := TotalReturn(returns)
	if err != nil {
		return 0, err
	}
	return math.Pow(1+total, TradingDaysPerYear/float64(len(returns))) - 1, nil
}

// Volatility is the annualized sample standard deviation (N-1) of the series.
// It needs at least two observations to estimate variance.
func Volatility(returns []float64) (float64, error) {
	if len(returns) < 2 {
		return 0, models.ErrInsufficientData
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance) * math.Sqrt(TradingDaysPerYear), nil
}

// DownsideDeviation is the annualized target-0 downside deviation: the root
// mean square of the negative observations over the full series length
// (non-negative days count as zero). A series with no negative day has zero
// downside deviation; callers treat that as an undefined Sortino denominator.
func DownsideDeviation(returns []float64) (float64, error) {
	if len(returns) < 2 {
		return 0, models.ErrInsufficientData
	}
	sumSq := 0.0
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
		}
	}
	return math.Sqrt(sumSq/float64(len(returns))) * math.Sqrt(TradingDaysPerYear), nil
}

// MaxDrawdown is the largest peak-to-trough decline of the cumulative value
// curve compounded from the series, tracked against a running peak. It is
// always in [0, 1] and zero exactly when the curve never declines.
func MaxDrawdown(returns []float64) (float64, error) {
	if len(returns) == 0 {
		return 0, models.ErrInsufficientData
	}
	value, peak, maxDD := 1.0, 1.0, 0.0
	for _, r := range returns {
		value *= 1 + r
		if value > peak {
			peak = value
		}
		if dd := (peak - value) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	// A return below -100% (negative cash can drive the value through zero)
	// would compound to a negative curve and a drawdown above 1; a total loss
	// is the floor of what a drawdown can express.
	if maxDD > 1 {
		maxDD = 1
	}
	return maxDD, nil
}

// VaR95 is the empirical 5th-percentile daily return, reported as a positive
// loss magnitude.
func VaR95(returns []float64) (float64, error) {
	if len(returns) == 0 {
		return 0, models.ErrInsufficientData
	}
	return lossMagnitude(quantile(sortedCopy(returns), 0.05)), nil
}

// CVaR95 is the mean of the observations at or below the VaR95 threshold,
// reported as a positive loss magnitude.
func CVaR95(returns []float64) (float64, error) {
	if len(returns) == 0 {
		return 0, models.ErrInsufficientData
	}
	threshold := quantile(sortedCopy(returns), 0.05)
	sum, n := 0.0, 0
	for _, r := range returns {
		if r <= threshold {
			sum += r
			n++
		}
	}
	return lossMagnitude(sum / float64(n)), nil
}

// WinRate is the fraction of observations strictly above zero.
func WinRate(returns []float64) (float64, error) {
	if len(returns) == 0 {
		return 0, models.ErrInsufficientData
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns)), nil
}

// Compute assembles the full metrics record for one run. Metrics whose
// observation requirement is not met, or whose denominator is degenerate
// (zero volatility, no negative day, zero drawdown), come back as null
// sentinels; they never abort the report.
func Compute(returns []float64, riskFreeRate float64) models.MetricsReport {
	report := models.MetricsReport{Observations: len(returns)}
	for _, r := range returns {
		if r > 0 {
			report.PositiveDays++
		}
	}

	if total, err := TotalReturn(returns); err == nil {
		report.TotalReturn = models.Metric(total)
	}
	annualized, annErr := AnnualizedReturn(returns)
	if annErr == nil {
		report.AnnualizedReturn = models.Metric(annualized)
	}
	if dd, err := MaxDrawdown(returns); err == nil {
		report.MaxDrawdown = models.Metric(dd)
		if annErr == nil && len(returns) >= 2 && dd > 0 {
			report.CalmarRatio = models.Metric(annualized / dd)
		}
	}
	if v, err := VaR95(returns); err == nil {
		report.VaR95 = models.Metric(v)
	}
	if cv, err := CVaR95(returns); err == nil {
		report.CVaR95 = models.Metric(cv)
	}
	if wr, err := WinRate(returns); err == nil {
		report.WinRate = models.Metric(wr)
	}

	excess := annualized - riskFreeRate
	if vol, err := Volatility(returns); err == nil {
		report.Volatility = models.Metric(vol)
		if annErr == nil && vol > 0 {
			report.SharpeRatio = models.Metric(excess / vol)
		}
	}
	if downside, err := DownsideDeviation(returns); err == nil && downside > 0 && annErr == nil {
		report.SortinoRatio = models.Metric(excess / downside)
	}
	return report
}

// quantile is the linear-interpolated empirical quantile of an already sorted
// series, with q in [0, 1].
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// lossMagnitude sign-flips a negative percentile into a positive loss figure.
func lossMagnitude(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
