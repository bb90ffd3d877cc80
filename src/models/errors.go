package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientData marks a metric that cannot be computed from the number
// of return observations available. It degrades that metric to a null value in
// the report; it never aborts an analysis run.
var ErrInsufficientData = errors.New("insufficient data")

// InvalidDateError is a fatal input error: a date cell that cannot be parsed
// or falls outside any representable range.
type InvalidDateError struct {
	Raw string
	Row int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q at row %d", e.Raw, e.Row)
}

// InvalidTransactionTypeError is a fatal input error: a Tipo value outside the
// closed transaction-type set. Unknown types are rejected rather than silently
// ignored.
type InvalidTransactionTypeError struct {
	Raw string
	Row int
}

func (e *InvalidTransactionTypeError) Error() string {
	return fmt.Sprintf("unrecognized transaction type %q at row %d", e.Raw, e.Row)
}

// InsufficientPositionError is a fatal input error: a sell that would drive an
// asset's held quantity negative. Valuation downstream of a negative position
// would be undefined, so the whole run aborts.
type InsufficientPositionError struct {
	Asset string
	Date  time.Time
	Held  float64
	Sell  float64
}

func (e *InsufficientPositionError) Error() string {
	return fmt.Sprintf("sell of %g %s on %s exceeds held quantity %g",
		e.Sell, e.Asset, e.Date.Format("2006-01-02"), e.Held)
}
