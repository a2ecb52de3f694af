package ledger

import (
	"sort"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/t0-trading/internal/logger"
	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger merges the broker snapshot with intraday fills into a consistent
// per-symbol holdings view. It is rebuilt from scratch on every run; nothing
// survives across invocations.
type Ledger struct {
	positions map[string]*types.Position
	logger    *logger.Logger
	journal   *Journal
}

// SkippedFill is a fill that was rejected without being applied. The
// position it targeted is left untouched.
type SkippedFill struct {
	Fill   types.Fill       `yaml:"fill" json:"fill"`
	Code   errors.ErrorCode `yaml:"code" json:"code"`
	Reason string           `yaml:"reason" json:"reason"`
}

// AppliedFill is a batch-merged fill that updated a position, together with
// the realized P&L it produced (zero for buys).
type AppliedFill struct {
	Fill        types.Fill `yaml:"fill" json:"fill"`
	RealizedPnL float64    `yaml:"realized_pnl" json:"realized_pnl"`
}

// BatchResult reports the outcome of one ApplyFills pass.
type BatchResult struct {
	Applied []AppliedFill `yaml:"applied" json:"applied"`
	Skipped []SkippedFill `yaml:"skipped" json:"skipped"`
	// Quarantined lists symbols whose post-batch reconciliation failed.
	Quarantined []string `yaml:"quarantined" json:"quarantined"`
}

func NewLedger(log *logger.Logger) *Ledger {
	return &Ledger{
		positions: make(map[string]*types.Position),
		logger:    log,
		journal:   nil,
	}
}

// AttachJournal wires a fill journal into the ledger. Every applied and
// skipped fill is recorded there. Optional; a nil journal disables recording.
func (l *Ledger) AttachJournal(j *Journal) {
	l.journal = j
}

// ApplySnapshot initializes the book from normalized snapshot records,
// discarding any previous state. Records failing validation abort the load;
// a risk pass over a half-initialized book is worse than no pass at all.
func (l *Ledger) ApplySnapshot(records []types.SnapshotRecord) error {
	positions := make(map[string]*types.Position, len(records))

	for i := range records {
		record := records[i]
		if err := record.Validate(); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidSnapshotRecord, err, "snapshot record %d (%s)", i, record.Symbol)
		}

		positions[record.Symbol] = &types.Position{
			Symbol:       record.Symbol,
			SettledQty:   record.SettledQty,
			AvailableQty: record.SettledQty - record.FrozenQty,
			FrozenQty:    record.FrozenQty,
			CostBasis:    record.AvgCost,
			MarkPrice:    record.MarkPrice,
			SnapshotQty:  record.SettledQty,
		}
		recomputeUnrealized(positions[record.Symbol])
	}

	l.positions = positions

	if l.logger != nil {
		l.logger.Debug("snapshot applied", zap.Int("positions", len(positions)))
	}

	return nil
}

// ApplyFill updates exactly one position's quantities, cost basis, and P&L.
// Returns the realized P&L delta (zero for buys). A sell exceeding the
// available quantity is rejected whole; partial application would misstate
// the trader's intent.
func (l *Ledger) ApplyFill(fill types.Fill) (float64, error) {
	if err := fill.Validate(); err != nil {
		return 0, err
	}

	position := l.getOrCreate(fill.Symbol)
	if position.Quarantined {
		return 0, errors.Newf(errors.ErrCodeSymbolQuarantined,
			"symbol %s is quarantined after a reconciliation mismatch", fill.Symbol)
	}

	switch fill.Side {
	case types.SideBuy:
		applyBuy(position, fill)
		return 0, nil
	case types.SideSell:
		return applySell(position, fill)
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidFill, "unknown side %q", fill.Side)
	}
}

// ApplyFills applies a batch of fills: fills sharing a batch_id are merged
// into one volume-weighted synthetic fill, merged fills are ordered by
// ascending timestamp, and each is applied under the single-fill rules.
// Rejected fills are collected, not fatal. After the batch every touched
// symbol is reconciled; a mismatch quarantines that symbol only.
func (l *Ledger) ApplyFills(fills []types.Fill) BatchResult {
	result := BatchResult{}

	merged, skipped := mergeBatches(fills)
	result.Skipped = append(result.Skipped, skipped...)

	touched := make(map[string]bool)

	for _, fill := range merged {
		realized, err := l.ApplyFill(fill)
		if err != nil {
			skip := SkippedFill{Fill: fill, Code: errors.GetCode(err), Reason: err.Error()}
			result.Skipped = append(result.Skipped, skip)
			l.record(fill, "skipped", skip.Reason, 0)

			if l.logger != nil {
				l.logger.Warn("fill skipped",
					zap.String("symbol", fill.Symbol),
					zap.String("fill_id", fill.ID),
					zap.String("reason", skip.Reason),
				)
			}

			continue
		}

		touched[fill.Symbol] = true
		result.Applied = append(result.Applied, AppliedFill{Fill: fill, RealizedPnL: realized})
		l.record(fill, "applied", "", realized)
	}

	for symbol := range touched {
		if err := l.reconcile(symbol); err != nil {
			result.Quarantined = append(result.Quarantined, symbol)

			if l.logger != nil {
				l.logger.Error("reconciliation mismatch", zap.String("symbol", symbol), zap.Error(err))
			}
		}
	}

	sort.Strings(result.Quarantined)

	return result
}

// MarkPrices updates mark prices for known symbols and recomputes
// unrealized P&L. Marks for symbols not in the book are ignored.
func (l *Ledger) MarkPrices(marks map[string]float64) {
	for symbol, price := range marks {
		position, ok := l.positions[symbol]
		if !ok || price <= 0 {
			continue
		}

		position.MarkPrice = price
		recomputeUnrealized(position)
	}
}

// Position returns a copy of the position for a symbol.
func (l *Ledger) Position(symbol string) optional.Option[types.Position] {
	position, ok := l.positions[symbol]
	if !ok {
		return optional.None[types.Position]()
	}

	return optional.Some(*position)
}

// Snapshot returns an immutable view of all positions, sorted by symbol.
func (l *Ledger) Snapshot() []types.Position {
	positions := make([]types.Position, 0, len(l.positions))
	for _, position := range l.positions {
		positions = append(positions, *position)
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})

	return positions
}

// reconcile verifies the quantity invariants for one symbol. On failure the
// symbol is quarantined: excluded from further fills and signal generation,
// but still reported.
func (l *Ledger) reconcile(symbol string) error {
	position, ok := l.positions[symbol]
	if !ok {
		return nil
	}

	total := position.SettledQty + position.VirtualQty
	expected := position.SnapshotQty + position.BoughtQty - position.SoldQty

	valid := position.SettledQty >= 0 &&
		position.VirtualQty >= 0 &&
		position.AvailableQty >= 0 &&
		position.AvailableQty <= position.SettledQty &&
		total == expected

	if !valid {
		position.Quarantined = true

		return errors.Newf(errors.ErrCodeReconciliationMismatch,
			"symbol %s: settled=%d virtual=%d available=%d, expected total %d got %d",
			symbol, position.SettledQty, position.VirtualQty, position.AvailableQty, expected, total)
	}

	return nil
}

func (l *Ledger) getOrCreate(symbol string) *types.Position {
	position, ok := l.positions[symbol]
	if !ok {
		// Unknown symbol is not an error: first fill for an unseen symbol
		// opens a zero position.
		position = &types.Position{Symbol: symbol}
		l.positions[symbol] = position
	}

	return position
}

func (l *Ledger) record(fill types.Fill, status, reason string, realized float64) {
	if l.journal == nil {
		return
	}

	if err := l.journal.Record(fill, status, reason, realized); err != nil && l.logger != nil {
		l.logger.Warn("failed to record fill in journal",
			zap.String("fill_id", fill.ID),
			zap.Error(err),
		)
	}
}

// applyBuy increases the virtual quantity and recomputes the cost basis as
// the volume-weighted average of existing holdings and the new lot.
func applyBuy(position *types.Position, fill types.Fill) {
	totalBefore := decimal.NewFromInt(position.TotalQty())
	lotQty := decimal.NewFromInt(fill.Quantity)

	existingCost := decimal.NewFromFloat(position.CostBasis).Mul(totalBefore)
	lotCost := decimal.NewFromFloat(fill.Price).Mul(lotQty)

	totalAfter := totalBefore.Add(lotQty)
	position.CostBasis, _ = existingCost.Add(lotCost).Div(totalAfter).Float64()

	position.VirtualQty += fill.Quantity
	position.BoughtQty += fill.Quantity

	recomputeUnrealized(position)
}

// applySell reduces the settled/available quantities and realizes P&L
// against the weighted-average cost basis. The cost basis itself is
// unchanged by a sell.
func applySell(position *types.Position, fill types.Fill) (float64, error) {
	if fill.Quantity > position.AvailableQty {
		return 0, errors.Newf(errors.ErrCodeInsufficientPosition,
			"sell %d exceeds available %d for %s (fill %s)",
			fill.Quantity, position.AvailableQty, fill.Symbol, fill.ID)
	}

	qty := decimal.NewFromInt(fill.Quantity)
	realizedDec := decimal.NewFromFloat(fill.Price).
		Sub(decimal.NewFromFloat(position.CostBasis)).
		Mul(qty)
	realized, _ := realizedDec.Float64()

	position.SettledQty -= fill.Quantity
	position.AvailableQty -= fill.Quantity
	position.SoldQty += fill.Quantity
	position.RealizedPnL, _ = decimal.NewFromFloat(position.RealizedPnL).Add(realizedDec).Float64()

	recomputeUnrealized(position)

	return realized, nil
}

func recomputeUnrealized(position *types.Position) {
	if position.MarkPrice <= 0 || position.TotalQty() == 0 {
		position.UnrealizedPnL = 0
		return
	}

	unrealized := decimal.NewFromFloat(position.MarkPrice).
		Sub(decimal.NewFromFloat(position.CostBasis)).
		Mul(decimal.NewFromInt(position.TotalQty()))
	position.UnrealizedPnL, _ = unrealized.Float64()
}
