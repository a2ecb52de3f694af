package types

import (
	"github.com/shopspring/decimal"
)

// Position is the per-symbol bookkeeping state owned by the ledger.
// SettledQty are shares held as of the prior close that are still in the
// book; VirtualQty are shares bought today that settle next session and
// can never be sold today. AvailableQty is the sellable remainder of the
// settled shares after today's sells and any frozen quantity.
type Position struct {
	Symbol       string  `yaml:"symbol" json:"symbol"`
	SettledQty   int64   `yaml:"settled_qty" json:"settled_qty"`
	AvailableQty int64   `yaml:"available_qty" json:"available_qty"`
	VirtualQty   int64   `yaml:"virtual_qty" json:"virtual_qty"`
	FrozenQty    int64   `yaml:"frozen_qty" json:"frozen_qty"`
	CostBasis    float64 `yaml:"cost_basis" json:"cost_basis"`
	MarkPrice    float64 `yaml:"mark_price" json:"mark_price"`

	RealizedPnL   float64 `yaml:"realized_pnl" json:"realized_pnl"`
	UnrealizedPnL float64 `yaml:"unrealized_pnl" json:"unrealized_pnl"`

	// Reconciliation counters: quantities at snapshot load and the gross
	// buys/sells applied since, used to verify the book after every batch.
	SnapshotQty int64 `yaml:"snapshot_qty" json:"snapshot_qty"`
	BoughtQty   int64 `yaml:"bought_qty" json:"bought_qty"`
	SoldQty     int64 `yaml:"sold_qty" json:"sold_qty"`

	// Quarantined marks a symbol whose post-batch reconciliation failed.
	// The position is frozen for signal generation but reported as-is.
	Quarantined bool `yaml:"quarantined" json:"quarantined"`
}

// TotalQty returns the total shares held (settled + virtual).
func (p *Position) TotalQty() int64 {
	return p.SettledQty + p.VirtualQty
}

// MarketValue returns total shares valued at the current mark price.
func (p *Position) MarketValue() float64 {
	qty := decimal.NewFromInt(p.TotalQty())
	value, _ := qty.Mul(decimal.NewFromFloat(p.MarkPrice)).Float64()

	return value
}

// PnLRatio returns the unrealized profit/loss as a fraction of cost basis.
// Returns 0 when there is no cost basis or no holdings.
func (p *Position) PnLRatio() float64 {
	if p.CostBasis <= 0 || p.TotalQty() == 0 {
		return 0
	}

	mark := decimal.NewFromFloat(p.MarkPrice)
	cost := decimal.NewFromFloat(p.CostBasis)
	ratio, _ := mark.Sub(cost).Div(cost).Float64()

	return ratio
}
