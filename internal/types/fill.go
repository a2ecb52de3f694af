package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Fill is a single trade execution ingested from the trade-log reader.
// Fills sharing a BatchID are partial executions of one logical order and
// are merged into a single volume-weighted lot before they touch a Position.
type Fill struct {
	ID        string    `yaml:"id" json:"id"`
	Symbol    string    `yaml:"symbol" json:"symbol" validate:"required"`
	Side      Side      `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	Quantity  int64     `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
	Price     float64   `yaml:"price" json:"price" validate:"required,gt=0"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp" validate:"required"`
	// BatchID groups partial executions of one order. Empty means the fill
	// stands alone.
	BatchID string `yaml:"batch_id" json:"batch_id"`
}

// Validate validates the Fill struct.
func (f *Fill) Validate() error {
	validate := validator.New()
	if err := validate.Struct(f); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFill, "invalid fill", err)
	}

	return nil
}
