// src/services/analysis_service.go
package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/santyago-pixel/portfolio-analyzer/src/logger"
	"github.com/santyago-pixel/portfolio-analyzer/src/models"
	"github.com/santyago-pixel/portfolio-analyzer/src/processors"
)

const (
	ckAnalysisReport       = "res_analysis_user_%d_ds_%d_rf_%.6f_from_%s_to_%s"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type analysisServiceImpl struct {
	datasets    DatasetService
	reportCache *cache.Cache
}

func NewAnalysisService(datasets DatasetService, reportCache *cache.Cache) AnalysisService {
	return &analysisServiceImpl{
		datasets:    datasets,
		reportCache: reportCache,
	}
}

// GetAnalysis loads the dataset, resolves the analysis window and runs the
// pipeline, caching the report per (dataset, params). The pipeline is pure,
// so a cache hit and a recomputation are indistinguishable to the caller.
func (s *analysisServiceImpl) GetAnalysis(userID, datasetID int64, params models.AnalysisParams) (*models.AnalysisReport, error) {
	cacheKey := fmt.Sprintf(ckAnalysisReport, userID, datasetID,
		params.RiskFreeRate, keyDate(params.StartDate), keyDate(params.EndDate))
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.AnalysisReport), nil
	}

	startTime := time.Now()
	transactions, prices, err := s.datasets.LoadDataset(userID, datasetID)
	if err != nil {
		return nil, err
	}

	report, err := Analyze(transactions, prices, params)
	if err != nil {
		return nil, err
	}

	logger.L.Info("Analysis computed",
		"userID", userID, "datasetID", datasetID,
		"observations", report.Metrics.Observations,
		"duration", time.Since(startTime).String())

	s.reportCache.Set(cacheKey, report, DefaultCacheExpiration)
	return report, nil
}

func (s *analysisServiceImpl) InvalidateDatasetCache(userID, datasetID int64) {
	prefix := fmt.Sprintf("res_analysis_user_%d_ds_%d_", userID, datasetID)
	for key := range s.reportCache.Items() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			s.reportCache.Delete(key)
		}
	}
}

// Analyze runs the whole computation pipeline over an already loaded dataset:
// position replay, daily valuation, the return series, the metrics report and
// the P&L attribution. Zero dates in params default to the price table's full
// span. The function is deterministic; running it twice over the same inputs
// yields identical reports.
func Analyze(transactions []models.Transaction, prices *models.PriceTable, params models.AnalysisParams) (*models.AnalysisReport, error) {
	start, end := params.StartDate, params.EndDate
	if start.IsZero() || end.IsZero() {
		priceMin, priceMax, ok := prices.Range()
		if !ok {
			return nil, ErrEmptyDataset
		}
		if start.IsZero() {
			start = priceMin
		}
		if end.IsZero() {
			end = priceMax
		}
	}
	if end.Before(start) {
		return nil, fmt.Errorf("analysis window ends (%s) before it starts (%s)",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	days := processors.DateRange(start, end)
	resolved := models.AnalysisParams{RiskFreeRate: params.RiskFreeRate, StartDate: days[0], EndDate: days[len(days)-1]}

	positions, err := processors.NewPositionTracker().Track(transactions, days)
	if err != nil {
		return nil, err
	}

	valuation := processors.NewValuationEngine()
	snapshots := valuation.Value(positions, prices, days)
	returns := valuation.Returns(snapshots)

	series := make([]float64, len(returns))
	for i, r := range returns {
		series[i] = r.Value
	}
	metrics := processors.Compute(series, params.RiskFreeRate)
	attribution := processors.NewAttributionEngine().Attribute(positions, prices, days)

	return &models.AnalysisReport{
		Params:         resolved,
		Snapshots:      snapshots,
		Returns:        returns,
		Metrics:        metrics,
		Attribution:    attribution,
		UnpricedAssets: collectUnpriced(snapshots),
	}, nil
}

// collectUnpriced gathers the distinct assets that were ever held on a day
// without a usable quote.
func collectUnpriced(snapshots []models.PortfolioSnapshot) []string {
	seen := make(map[string]struct{})
	for _, snap := range snapshots {
		for _, asset := range snap.Unpriced {
			seen[asset] = struct{}{}
		}
	}
	assets := make([]string, 0, len(seen))
	for asset := range seen {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}

func keyDate(t time.Time) string {
	if t.IsZero() {
		return "auto"
	}
	return t.Format("2006-01-02")
}
