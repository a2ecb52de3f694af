package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
)

// SnapshotRecord is one normalized row of the broker's end-of-prior-day
// holdings file. Header localization and source-format differences are
// fully resolved by the snapshot adapter before records reach the ledger.
type SnapshotRecord struct {
	Symbol     string  `yaml:"symbol" json:"symbol" validate:"required"`
	SettledQty int64   `yaml:"settled_qty" json:"settled_qty" validate:"gte=0"`
	AvgCost    float64 `yaml:"avg_cost" json:"avg_cost" validate:"gte=0"`
	MarkPrice  float64 `yaml:"mark_price" json:"mark_price" validate:"gte=0"`
	// FrozenQty are settled shares locked by pending unconfirmed sells
	// carried over in the broker file. Optional column, defaults to zero.
	FrozenQty int64 `yaml:"frozen_qty" json:"frozen_qty" validate:"gte=0"`
}

// Validate validates the SnapshotRecord struct.
func (r *SnapshotRecord) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSnapshotRecord, "invalid snapshot record", err)
	}

	if r.FrozenQty > r.SettledQty {
		return errors.Newf(errors.ErrCodeInvalidSnapshotRecord,
			"frozen quantity %d exceeds settled quantity %d for %s", r.FrozenQty, r.SettledQty, r.Symbol)
	}

	return nil
}
