// src/services/dataset_service.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/santyago-pixel/portfolio-analyzer/src/database"
	"github.com/santyago-pixel/portfolio-analyzer/src/logger"
	"github.com/santyago-pixel/portfolio-analyzer/src/model"
	"github.com/santyago-pixel/portfolio-analyzer/src/models"
	"github.com/santyago-pixel/portfolio-analyzer/src/parsers/spreadsheet"
	"github.com/santyago-pixel/portfolio-analyzer/src/processors"
	"github.com/santyago-pixel/portfolio-analyzer/src/security/validation"
)

type datasetServiceImpl struct {
	ledger   *processors.LedgerProcessor
	analysis AnalysisService
}

// NewDatasetService builds the dataset service. analysis may be nil in tests;
// when set, its cache is invalidated on dataset deletion.
func NewDatasetService(ledger *processors.LedgerProcessor, analysis AnalysisService) DatasetService {
	return &datasetServiceImpl{ledger: ledger, analysis: analysis}
}

// CreateDataset parses both sheets, validates the ledger up front and stores
// the typed rows. A dataset only ever exists fully validated: analysis can
// still fail later on semantic grounds (oversell), never on malformed cells.
func (s *datasetServiceImpl) CreateDataset(userID int64, name string, transactionsFile, pricesFile io.Reader) (*model.Dataset, error) {
	startTime := time.Now()
	logger.L.Info("CreateDataset START", "userID", userID, "name", name)

	rawRows, err := spreadsheet.ParseTransactions(transactionsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	pricePoints, err := spreadsheet.ParsePrices(pricesFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	transactions, err := s.ledger.Process(rawRows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
	}
	if len(transactions) == 0 || len(pricePoints) == 0 {
		return nil, ErrEmptyDataset
	}

	return s.persist(userID, name, transactions, pricePoints, startTime)
}

func (s *datasetServiceImpl) persist(userID int64, name string, transactions []models.Transaction, pricePoints []models.PricePoint, startTime time.Time) (*model.Dataset, error) {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.Exec(`
		INSERT INTO datasets (user_id, name, transaction_count, price_count)
		VALUES (?, ?, ?, ?)`,
		userID, name, len(transactions), len(pricePoints),
	)
	if err != nil {
		return nil, fmt.Errorf("error inserting dataset: %w", err)
	}
	datasetID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading dataset id: %w", err)
	}

	txStmt, err := dbTx.Prepare(`
		INSERT INTO dataset_transactions
		(dataset_id, row_idx, date, type, asset, quantity, price, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("error preparing transaction insert: %w", err)
	}
	defer txStmt.Close()

	for _, tx := range transactions {
		asset := sanitizeAssetName(tx.Asset)
		_, err := txStmt.Exec(
			datasetID, tx.Row, tx.Date.Format("2006-01-02"), string(tx.Type),
			asset, tx.Quantity, tx.Price, tx.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("error inserting transaction (row %d): %w", tx.Row, err)
		}
	}

	// last quote wins if a sheet repeats an (asset, date) pair
	priceStmt, err := dbTx.Prepare(`
		INSERT OR REPLACE INTO dataset_prices (dataset_id, date, asset, price)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("error preparing price insert: %w", err)
	}
	defer priceStmt.Close()

	for _, point := range pricePoints {
		_, err := priceStmt.Exec(datasetID, point.Date.Format("2006-01-02"), sanitizeAssetName(point.Asset), point.Price)
		if err != nil {
			return nil, fmt.Errorf("error inserting price (%s %s): %w", point.Asset, point.Date.Format("2006-01-02"), err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing dataset: %w", err)
	}

	logger.L.Info("CreateDataset END",
		"userID", userID, "datasetID", datasetID,
		"transactions", len(transactions), "prices", len(pricePoints),
		"duration", time.Since(startTime).String())

	return model.GetDataset(database.DB, datasetID, userID)
}

func (s *datasetServiceImpl) CreateSampleDataset(userID int64, name string) (*model.Dataset, error) {
	transactions, prices := GenerateSampleData(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	if name == "" {
		name = "Sample portfolio"
	}
	return s.persist(userID, name, transactions, prices, time.Now())
}

func (s *datasetServiceImpl) ListDatasets(userID int64) ([]model.Dataset, error) {
	return model.ListDatasetsByUser(database.DB, userID)
}

func (s *datasetServiceImpl) DeleteDataset(userID, datasetID int64) error {
	deleted, err := model.DeleteDataset(database.DB, datasetID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrDatasetNotFound
	}
	if s.analysis != nil {
		s.analysis.InvalidateDatasetCache(userID, datasetID)
	}
	logger.L.Info("Dataset deleted", "userID", userID, "datasetID", datasetID)
	return nil
}

func (s *datasetServiceImpl) LoadDataset(userID, datasetID int64) ([]models.Transaction, *models.PriceTable, error) {
	if _, err := model.GetDataset(database.DB, datasetID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrDatasetNotFound
		}
		return nil, nil, err
	}

	rows, err := database.DB.Query(`
		SELECT row_idx, date, type, asset, quantity, price, amount
		FROM dataset_transactions
		WHERE dataset_id = ?
		ORDER BY date ASC, row_idx ASC`, datasetID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var dateStr, typeStr string
		if err := rows.Scan(&tx.Row, &dateStr, &typeStr, &tx.Asset, &tx.Quantity, &tx.Price, &tx.Amount); err != nil {
			return nil, nil, err
		}
		tx.Date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, nil, fmt.Errorf("corrupt stored date %q: %w", dateStr, err)
		}
		tx.Type = models.TransactionType(typeStr)
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	priceRows, err := database.DB.Query(`
		SELECT date, asset, price
		FROM dataset_prices
		WHERE dataset_id = ?
		ORDER BY asset ASC, date ASC`, datasetID)
	if err != nil {
		return nil, nil, err
	}
	defer priceRows.Close()

	prices := models.NewPriceTable()
	for priceRows.Next() {
		var dateStr, asset string
		var price float64
		if err := priceRows.Scan(&dateStr, &asset, &price); err != nil {
			return nil, nil, err
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, nil, fmt.Errorf("corrupt stored price date %q: %w", dateStr, err)
		}
		prices.Add(models.PricePoint{Date: date, Asset: asset, Price: price})
	}
	if err := priceRows.Err(); err != nil {
		return nil, nil, err
	}

	// restore the ledger's ordering guarantee after the SQL sort
	sort.SliceStable(transactions, func(i, j int) bool {
		if transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Row < transactions[j].Row
		}
		return transactions[i].Date.Before(transactions[j].Date)
	})

	return transactions, prices, nil
}

// sanitizeAssetName strips HTML and neutralizes spreadsheet formula triggers
// before an asset name is stored or echoed back to clients.
func sanitizeAssetName(asset string) string {
	return validation.SanitizeForFormulaInjection(validation.SanitizeText(asset))
}
