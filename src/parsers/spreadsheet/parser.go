// src/parsers/spreadsheet/parser.go
//
// Readers for the two tabular inputs of an analysis: the transactions sheet
// and the prices sheet, both as CSV exports of the original spreadsheets.
// Parsing here is purely structural (locating columns, collecting cells);
// typing and validation of transaction rows happen in the ledger processor.
package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

// Column header aliases seen in real exports. The canonical headers are
// Fecha, Tipo, Activo, Cantidad, Precio, Monto; the raw broker layout uses
// Operacion, Nominales and Valor for three of them.
var transactionAliases = map[string]string{
	"fecha":                  "fecha",
	"tipo":                   "tipo",
	"operacion":              "tipo",
	"operación":              "tipo",
	"activo":                 "activo",
	"cantidad":               "cantidad",
	"nominales":              "cantidad",
	"precio":                 "precio",
	"precio_concertacion":    "precio",
	"precio de concertacion": "precio",
	"monto":                  "monto",
	"valor":                  "monto",
}

// ParseTransactions reads the transactions sheet into raw rows, preserving
// source order. Rows that are entirely blank are skipped; everything else is
// kept for the ledger processor to validate.
func ParseTransactions(file io.Reader) ([]models.RawTransactionRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("transactions sheet: failed to read header: %w", err)
	}
	cols := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.Trim(name, "\uFEFF")))
		if canonical, ok := transactionAliases[key]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}
	for _, required := range []string{"fecha", "tipo", "monto"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("transactions sheet: missing column %q", required)
		}
	}

	cell := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []models.RawTransactionRow
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("transactions sheet: read error at row %d: %w", rowNum+1, err)
		}
		rowNum++
		if isBlankRecord(record) {
			continue
		}
		rows = append(rows, models.RawTransactionRow{
			Date:     cell(record, "fecha"),
			Type:     cell(record, "tipo"),
			Asset:    cell(record, "activo"),
			Quantity: cell(record, "cantidad"),
			Price:    cell(record, "precio"),
			Amount:   cell(record, "monto"),
			Row:      rowNum,
		})
	}
	return rows, nil
}

// ParsePrices reads the prices sheet in either accepted layout. Long form has
// the header Fecha,Activo,Precio; anything else is treated as wide form,
// where the first column is the date and every other header names an asset.
// Blank price cells are skipped in both layouts.
func ParsePrices(file io.Reader) ([]models.PricePoint, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("prices sheet: failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.Trim(header[i], "\uFEFF"))
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("prices sheet: expected at least two columns, got %d", len(header))
	}

	if isLongPriceHeader(header) {
		return parseLongPrices(reader)
	}
	return parseWidePrices(reader, header)
}

func isLongPriceHeader(header []string) bool {
	if len(header) != 3 {
		return false
	}
	return strings.EqualFold(header[1], "Activo") && strings.EqualFold(header[2], "Precio")
}

func parseLongPrices(reader *csv.Reader) ([]models.PricePoint, error) {
	var points []models.PricePoint
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("prices sheet: read error at row %d: %w", rowNum+1, err)
		}
		rowNum++
		if isBlankRecord(record) || len(record) < 3 {
			continue
		}
		if strings.TrimSpace(record[2]) == "" {
			continue
		}
		date, err := models.ParseDate(record[0], rowNum)
		if err != nil {
			return nil, err
		}
		price, err := parsePriceCell(record[2])
		if err != nil {
			return nil, fmt.Errorf("prices sheet: invalid price %q at row %d: %w", record[2], rowNum, err)
		}
		points = append(points, models.PricePoint{
			Date:  date,
			Asset: strings.TrimSpace(record[1]),
			Price: price,
		})
	}
	return points, nil
}

func parseWidePrices(reader *csv.Reader, header []string) ([]models.PricePoint, error) {
	var points []models.PricePoint
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("prices sheet: read error at row %d: %w", rowNum+1, err)
		}
		rowNum++
		if isBlankRecord(record) {
			continue
		}
		date, err := models.ParseDate(record[0], rowNum)
		if err != nil {
			return nil, err
		}
		for col := 1; col < len(record) && col < len(header); col++ {
			cell := strings.TrimSpace(record[col])
			if cell == "" {
				continue
			}
			price, err := parsePriceCell(cell)
			if err != nil {
				return nil, fmt.Errorf("prices sheet: invalid price %q at row %d: %w", cell, rowNum, err)
			}
			points = append(points, models.PricePoint{
				Date:  date,
				Asset: header[col],
				Price: price,
			})
		}
	}
	return points, nil
}

func parsePriceCell(cell string) (float64, error) {
	cleaned := strings.TrimSpace(strings.Trim(strings.TrimSpace(cell), "\""))
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	return strconv.ParseFloat(cleaned, 64)
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
