// src/services/interfaces.go
package services

import (
	"errors"
	"io"

	"github.com/santyago-pixel/portfolio-analyzer/src/model"
	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

// Define common service errors
var (
	ErrParsingFailed    = errors.New("csv parsing failed")
	ErrProcessingFailed = errors.New("transaction processing failed")
	ErrDatasetNotFound  = errors.New("dataset not found")
	ErrEmptyDataset     = errors.New("dataset has no transactions or prices")
)

// DatasetService owns the stored datasets: ingestion of uploaded sheets,
// the generated sample, listing, deletion and loading for analysis.
type DatasetService interface {
	CreateDataset(userID int64, name string, transactionsFile, pricesFile io.Reader) (*model.Dataset, error)
	CreateSampleDataset(userID int64, name string) (*model.Dataset, error)
	ListDatasets(userID int64) ([]model.Dataset, error)
	DeleteDataset(userID, datasetID int64) error
	// LoadDataset returns the normalized ledger and the price table of a
	// stored dataset.
	LoadDataset(userID, datasetID int64) ([]models.Transaction, *models.PriceTable, error)
}

// AnalysisService runs the full computation pipeline over a stored dataset
// and caches the resulting report per parameter set.
type AnalysisService interface {
	GetAnalysis(userID, datasetID int64, params models.AnalysisParams) (*models.AnalysisReport, error)
	InvalidateDatasetCache(userID, datasetID int64)
}

// ChartService renders PNG charts from an analysis report.
type ChartService interface {
	RenderValueChart(report *models.AnalysisReport) ([]byte, error)
	RenderDrawdownChart(report *models.AnalysisReport) ([]byte, error)
}
