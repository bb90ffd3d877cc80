package models

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType is the closed set of ledger event kinds. Raw spreadsheet
// rows carry free-form Spanish labels (Compra, Venta, ...); they are mapped to
// this enum at the normalization boundary and anything unrecognized is
// rejected there.
type TransactionType string

const (
	TypeBuy      TransactionType = "BUY"
	TypeSell     TransactionType = "SELL"
	TypeCoupon   TransactionType = "COUPON"
	TypeDividend TransactionType = "DIVIDEND"
	TypeCashFlow TransactionType = "CASHFLOW"
)

// ParseTransactionType maps a raw Tipo cell to the enum. Matching is
// case-insensitive, whitespace-tolerant and accepts "Cupon" without the
// accent, since real spreadsheets carry both spellings.
func ParseTransactionType(raw string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "compra":
		return TypeBuy, nil
	case "venta":
		return TypeSell, nil
	case "cupón", "cupon":
		return TypeCoupon, nil
	case "dividendo":
		return TypeDividend, nil
	case "flujo":
		return TypeCashFlow, nil
	}
	return "", &InvalidTransactionTypeError{Raw: raw}
}

// RawTransactionRow holds the direct string values from a single row of the
// transactions sheet, before any typing or validation.
type RawTransactionRow struct {
	Date     string `json:"date"`
	Type     string `json:"type"`
	Asset    string `json:"asset"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Amount   string `json:"amount"`
	Row      int    `json:"row"` // 1-based position in the source file
}

// Transaction is a normalized, immutable ledger event.
//
// Sign conventions: a Buy reduces cash by Amount and increases the asset
// quantity; a Sell increases cash and decreases quantity; Coupon, Dividend and
// CashFlow add Amount to cash (Amount may be negative for withdrawals) and
// never touch quantity. Asset is empty for pure cash flows.
type Transaction struct {
	Date     time.Time       `json:"date"`
	Type     TransactionType `json:"type"`
	Asset    string          `json:"asset"`
	Quantity float64         `json:"quantity"`
	Price    float64         `json:"price"`
	Amount   float64         `json:"amount"`
	// Row preserves source order so same-date transactions replay
	// deterministically.
	Row int `json:"row"`
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s qty=%g price=%g amount=%g (row %d)",
		t.Date.Format("2006-01-02"), t.Type, t.Asset, t.Quantity, t.Price, t.Amount, t.Row)
}
