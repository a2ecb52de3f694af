package types

// T0Stat summarizes today's intraday round-trip activity for one symbol,
// derived from the fill journal by FIFO-pairing buys against sells.
type T0Stat struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	// BuyQty and SellQty are today's gross applied quantities.
	BuyQty  int64 `yaml:"buy_qty" json:"buy_qty"`
	SellQty int64 `yaml:"sell_qty" json:"sell_qty"`
	// MatchedQty is the volume paired into completed T0 rounds.
	MatchedQty int64 `yaml:"matched_qty" json:"matched_qty"`
	// MatchedProfit is the sum of (sell price - buy price) * qty over the
	// paired volume.
	MatchedProfit float64 `yaml:"matched_profit" json:"matched_profit"`
	// PendingQty is the unpaired remainder, the quantity a pending-pair
	// completion signal would close.
	PendingQty int64 `yaml:"pending_qty" json:"pending_qty"`
}
