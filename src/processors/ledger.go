// src/processors/ledger.go
package processors

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

// LedgerProcessor normalizes raw spreadsheet rows into typed, chronologically
// ordered transactions. All typing decisions happen here: downstream
// components only ever see the closed enum and parsed values.
type LedgerProcessor struct{}

func NewLedgerProcessor() *LedgerProcessor { return &LedgerProcessor{} }

// Process validates and types every row, then sorts by date. The sort is
// stable and the rows keep their source index, so transactions sharing a date
// replay in input order.
//
// Quantity and Price may be blank for Coupon, Dividend and CashFlow rows (the
// original sheets leave them empty); they are read as zero. A blank Amount on
// a Buy or Sell falls back to Quantity x Price. Any unparseable date or
// unknown Tipo aborts normalization.
func (p *LedgerProcessor) Process(rows []models.RawTransactionRow) ([]models.Transaction, error) {
	txs := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		date, err := models.ParseDate(row.Date, row.Row)
		if err != nil {
			return nil, err
		}

		txType, err := models.ParseTransactionType(row.Type)
		if err != nil {
			if typeErr, ok := err.(*models.InvalidTransactionTypeError); ok {
				typeErr.Row = row.Row
			}
			return nil, err
		}

		asset := strings.TrimSpace(row.Asset)
		if asset == "" && txType != models.TypeCashFlow {
			return nil, fmt.Errorf("row %d: %s transaction has no asset", row.Row, txType)
		}

		quantity, err := parseNumberCell(row.Quantity, txType != models.TypeBuy && txType != models.TypeSell)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid quantity %q: %w", row.Row, row.Quantity, err)
		}
		price, err := parseNumberCell(row.Price, txType != models.TypeBuy && txType != models.TypeSell)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q: %w", row.Row, row.Price, err)
		}
		amount, err := parseNumberCell(row.Amount, true)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid amount %q: %w", row.Row, row.Amount, err)
		}
		if amount == 0 && (txType == models.TypeBuy || txType == models.TypeSell) {
			amount = quantity * price
		}

		if quantity < 0 {
			return nil, fmt.Errorf("row %d: negative quantity %g", row.Row, quantity)
		}

		txs = append(txs, models.Transaction{
			Date:     date,
			Type:     txType,
			Asset:    asset,
			Quantity: quantity,
			Price:    price,
			Amount:   amount,
			Row:      row.Row,
		})
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return txs, nil
}

// parseNumberCell parses a numeric cell, accepting comma decimal separators.
// When optional, a blank cell reads as zero.
func parseNumberCell(cell string, optional bool) (float64, error) {
	cleaned := strings.TrimSpace(strings.Trim(strings.TrimSpace(cell), "\""))
	if cleaned == "" {
		if optional {
			return 0, nil
		}
		return 0, fmt.Errorf("empty cell")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	return strconv.ParseFloat(cleaned, 64)
}
