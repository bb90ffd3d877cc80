// src/services/sample_service.go
package services

import (
	"math"
	"math/rand"
	"time"

	"github.com/santyago-pixel/portfolio-analyzer/src/models"
)

// sampleSeed fixes the generator so every sample dataset is identical.
const sampleSeed = 42

type sampleAsset struct {
	name         string
	isBond       bool
	initialPrice float64
	volatility   float64
}

// Five Argentine instruments, two sovereign bonds and three stocks.
var sampleAssets = []sampleAsset{
	{"BONO_GD30", true, 95.0, 0.02},
	{"BONO_AL30", true, 92.0, 0.025},
	{"ACCION_YPF", false, 8500.0, 0.03},
	{"ACCION_GGAL", false, 1200.0, 0.035},
	{"ACCION_MIRG", false, 450.0, 0.04},
}

// GenerateSampleData builds a deterministic demo portfolio over [start, end]:
// a daily geometric random walk per asset, an opening buy of every asset on
// the first day, and twenty random later operations. Bonds drift less than
// stocks. Sells are clamped to the held quantity so the ledger always
// replays cleanly.
func GenerateSampleData(start, end time.Time) ([]models.Transaction, []models.PricePoint) {
	rng := rand.New(rand.NewSource(sampleSeed))

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	var prices []models.PricePoint
	priceByAssetDay := make(map[string]map[time.Time]float64, len(sampleAssets))
	for _, asset := range sampleAssets {
		drift := 0.0005
		if asset.isBond {
			drift = 0.0002
		}
		byDay := make(map[time.Time]float64, len(days))
		price := asset.initialPrice
		for _, d := range days {
			price *= 1 + drift + asset.volatility*rng.NormFloat64()
			rounded := math.Round(price*100) / 100
			prices = append(prices, models.PricePoint{Date: d, Asset: asset.name, Price: rounded})
			byDay[d] = rounded
		}
		priceByAssetDay[asset.name] = byDay
	}

	var transactions []models.Transaction
	opening := make(map[string]float64, len(sampleAssets))
	sold := make(map[string]float64, len(sampleAssets))
	row := 2 // matches a sheet with a header row

	for _, asset := range sampleAssets {
		qty := float64(50 + rng.Intn(151))
		transactions = append(transactions, models.Transaction{
			Date:     start,
			Type:     models.TypeBuy,
			Asset:    asset.name,
			Quantity: qty,
			Price:    asset.initialPrice,
			Amount:   qty * asset.initialPrice,
			Row:      row,
		})
		opening[asset.name] = qty
		row++
	}

	// Random operations after the opening month.
	laterDays := days[30:]
	opTypes := []models.TransactionType{models.TypeBuy, models.TypeSell, models.TypeCoupon, models.TypeDividend}
	for i := 0; i < 20; i++ {
		d := laterDays[rng.Intn(len(laterDays))]
		asset := sampleAssets[rng.Intn(len(sampleAssets))]
		opType := opTypes[rng.Intn(len(opTypes))]

		tx := models.Transaction{Date: d, Type: opType, Asset: asset.name, Row: row}
		switch opType {
		case models.TypeBuy, models.TypeSell:
			qty := float64(10 + rng.Intn(91))
			if opType == models.TypeSell {
				// Sells draw only on the opening position so the ledger
				// never oversells regardless of the dates drawn.
				available := opening[asset.name] - sold[asset.name]
				if available <= 0 {
					tx.Type = models.TypeBuy
				} else {
					if qty > available {
						qty = available
					}
					sold[asset.name] += qty
				}
			}
			price := priceByAssetDay[asset.name][d]
			tx.Quantity = qty
			tx.Price = price
			tx.Amount = qty * price
		case models.TypeCoupon, models.TypeDividend:
			tx.Amount = float64(100 + rng.Intn(901))
		}
		transactions = append(transactions, tx)
		row++
	}

	return transactions, prices
}
