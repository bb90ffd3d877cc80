package spreadsheet

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

func TestParseTransactionsCanonicalHeaders(t *testing.T) {
	csv := "Fecha,Tipo,Activo,Cantidad,Precio,Monto\n" +
		"2024-01-10,Compra,BONO_GD30,100,95.50,9550\n" +
		"2024-01-20,Cupón,BONO_GD30,,,250\n"

	rows, err := ParseTransactions(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-01-10", rows[0].Date)
	assert.Equal(t, "Compra", rows[0].Type)
	assert.Equal(t, "BONO_GD30", rows[0].Asset)
	assert.Equal(t, "100", rows[0].Quantity)
	assert.Equal(t, "9550", rows[0].Amount)
	assert.Equal(t, 2, rows[0].Row)

	assert.Equal(t, "Cupón", rows[1].Type)
	assert.Equal(t, "", rows[1].Quantity)
	assert.Equal(t, 3, rows[1].Row)
}

func TestParseTransactionsBrokerAliases(t *testing.T) {
	csv := "Fecha,Operacion,Activo,Nominales,Precio,Valor\n" +
		"10/01/2024,Compra,ACCION_YPF,5,8500,42500\n"

	rows, err := ParseTransactions(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Compra", rows[0].Type)
	assert.Equal(t, "5", rows[0].Quantity)
	assert.Equal(t, "42500", rows[0].Amount)
}

func TestParseTransactionsStripsByteOrderMark(t *testing.T) {
	// Excel CSV exports prepend a UTF-8 BOM to the first header cell.
	csv := "\ufeffFecha,Tipo,Activo,Cantidad,Precio,Monto\n" +
		"2024-01-10,Compra,BONO_GD30,100,95.50,9550\n"

	rows, err := ParseTransactions(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-10", rows[0].Date)

	prices := "\ufeffFecha,Activo,Precio\n2024-01-10,BONO_GD30,95.50\n"
	points, err := ParsePrices(strings.NewReader(prices))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "BONO_GD30", points[0].Asset)
}

func TestParseTransactionsMissingColumn(t *testing.T) {
	csv := "Fecha,Activo,Cantidad\n2024-01-10,A,5\n"
	_, err := ParseTransactions(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tipo")
}

func TestParseTransactionsSkipsBlankRows(t *testing.T) {
	csv := "Fecha,Tipo,Activo,Cantidad,Precio,Monto\n" +
		"2024-01-10,Compra,A,1,100,100\n" +
		",,,,,\n" +
		"2024-01-11,Venta,A,1,110,110\n"

	rows, err := ParseTransactions(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// row numbers reflect the sheet, not the filtered slice
	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, 4, rows[1].Row)
}

func TestParsePricesLongFormat(t *testing.T) {
	csv := "Fecha,Activo,Precio\n" +
		"2024-01-10,BONO_GD30,95.50\n" +
		"2024-01-10,ACCION_YPF,8500\n" +
		"2024-01-11,BONO_GD30,\"95,80\"\n"

	points, err := ParsePrices(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "BONO_GD30", points[0].Asset)
	assert.InDelta(t, 95.50, points[0].Price, 1e-12)
	assert.InDelta(t, 95.80, points[2].Price, 1e-12)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), points[2].Date)
}

func TestParsePricesWideFormat(t *testing.T) {
	csv := "Fecha,BONO_GD30,ACCION_YPF\n" +
		"2024-01-10,95.50,8500\n" +
		"2024-01-11,95.80,\n" +
		"2024-01-12,,8600\n"

	points, err := ParsePrices(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, points, 4)

	table := models.NewPriceTableFromPoints(points)
	p, ok := table.PriceOn("BONO_GD30", time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.InDelta(t, 95.80, p, 1e-12)

	// blank cell on the 11th means no YPF quote that day
	p, ok = table.PriceOn("ACCION_YPF", time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.InDelta(t, 8500, p, 1e-12)
}

func TestParsePricesBadDateFatal(t *testing.T) {
	csv := "Fecha,BONO_GD30\nayer,95.50\n"
	_, err := ParsePrices(strings.NewReader(csv))
	var dateErr *models.InvalidDateError
	require.ErrorAs(t, err, &dateErr)
}

func TestParsePricesBadPrice(t *testing.T) {
	csv := "Fecha,Activo,Precio\n2024-01-10,BONO_GD30,n/a\n"
	_, err := ParsePrices(strings.NewReader(csv))
	assert.Error(t, err)
}
