package strategy

import (
	"fmt"
	"sort"

	"github.com/rxtech-lab/t0-trading/internal/logger"
	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/rxtech-lab/t0-trading/internal/utils"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config controls signal generation. Premium and discount shift the target
// price away from the mark so resting orders have a chance to fill at an
// edge instead of crossing the spread.
type Config struct {
	Mode            types.StrategyMode `yaml:"mode" json:"mode" validate:"required"`
	MaxLotPerSignal int64              `yaml:"max_lot_per_signal" json:"max_lot_per_signal" validate:"gte=0"`
	SellPremium     float64            `yaml:"sell_premium" json:"sell_premium" validate:"gte=0,lt=1"`
	BuyDiscount     float64            `yaml:"buy_discount" json:"buy_discount" validate:"gte=0,lt=1"`
}

func (c Config) Validate() error {
	switch c.Mode {
	case types.StrategyModeBasePosition, types.StrategyModePendingPair:
	default:
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown strategy mode %q", c.Mode)
	}

	if c.MaxLotPerSignal < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "max_lot_per_signal must be >= 0, got %d", c.MaxLotPerSignal)
	}
	if c.SellPremium < 0 || c.SellPremium >= 1 {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "sell_premium must be in [0,1), got %f", c.SellPremium)
	}
	if c.BuyDiscount < 0 || c.BuyDiscount >= 1 {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "buy_discount must be in [0,1), got %f", c.BuyDiscount)
	}

	return nil
}

// Engine turns the current book and the day's applied fills into an ordered
// list of signal suggestions. It never mutates the ledger and emits no
// errors for individual symbols: a symbol that cannot produce a valid pair
// is simply skipped.
type Engine struct {
	config Config
	logger *logger.Logger
}

func NewEngine(config Config, log *logger.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Engine{config: config, logger: log}, nil
}

// candidate groups the signals for one symbol with its ordering key.
type candidate struct {
	symbol        string
	unrealizedPnL float64
	signals       []types.Signal
}

// Generate produces signals for the configured mode, ordered loss-first:
// symbols carrying the largest unrealized loss come before smaller losses
// and gains, ties broken by ascending symbol. Priorities are assigned 1..n
// after the sort.
func (e *Engine) Generate(positions []types.Position, fills []types.Fill) []types.Signal {
	var candidates []candidate

	switch e.config.Mode {
	case types.StrategyModeBasePosition:
		candidates = e.basePosition(positions)
	case types.StrategyModePendingPair:
		candidates = e.pendingPair(positions, fills)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].unrealizedPnL != candidates[j].unrealizedPnL {
			return candidates[i].unrealizedPnL < candidates[j].unrealizedPnL
		}
		return candidates[i].symbol < candidates[j].symbol
	})

	var signals []types.Signal
	for _, cand := range candidates {
		signals = append(signals, cand.signals...)
	}
	for i := range signals {
		signals[i].Priority = i + 1
	}

	if e.logger != nil {
		e.logger.Debug("signals generated",
			zap.String("mode", string(e.config.Mode)),
			zap.Int("count", len(signals)),
		)
	}

	return signals
}

// basePosition emits a sell/buy-back round trip for every symbol with a
// sellable base holding. Both legs carry the same quantity so the base
// position is restored once both fill.
func (e *Engine) basePosition(positions []types.Position) []candidate {
	var candidates []candidate

	for _, position := range positions {
		if position.Quarantined || position.SettledQty <= 0 {
			continue
		}

		qty := utils.RoundToLot(position.AvailableQty, utils.BoardLot)
		if qty < utils.BoardLot {
			continue
		}

		if limit := e.config.MaxLotPerSignal * utils.BoardLot; limit > 0 {
			qty = utils.MinQty(qty, limit)
		}

		mark := markOf(position)
		if mark <= 0 {
			continue
		}

		candidates = append(candidates, candidate{
			symbol:        position.Symbol,
			unrealizedPnL: position.UnrealizedPnL,
			signals: []types.Signal{
				{
					Symbol:      position.Symbol,
					Action:      types.SignalActionClose,
					Side:        types.SideSell,
					Quantity:    qty,
					TargetPrice: e.sellTarget(mark),
					Rationale:   fmt.Sprintf("sell %d against base position of %d, buy back on dip", qty, position.SettledQty),
				},
				{
					Symbol:      position.Symbol,
					Action:      types.SignalActionOpen,
					Side:        types.SideBuy,
					Quantity:    qty,
					TargetPrice: e.buyTarget(mark),
					Rationale:   fmt.Sprintf("buy back %d to restore base position of %d", qty, position.SettledQty),
				},
			},
		})
	}

	return candidates
}

// pendingPair nets the day's applied fills per symbol and emits only the
// missing leg of an unfinished round trip. A net bought symbol needs a
// sell to flatten; a net sold symbol needs a buy back.
func (e *Engine) pendingPair(positions []types.Position, fills []types.Fill) []candidate {
	bySymbol := make(map[string]types.Position, len(positions))
	for _, position := range positions {
		bySymbol[position.Symbol] = position
	}

	netted := make(map[string]int64)
	var symbols []string

	for _, fill := range fills {
		if _, ok := netted[fill.Symbol]; !ok {
			symbols = append(symbols, fill.Symbol)
		}

		switch fill.Side {
		case types.SideBuy:
			netted[fill.Symbol] += fill.Quantity
		case types.SideSell:
			netted[fill.Symbol] -= fill.Quantity
		}
	}

	var candidates []candidate

	for _, symbol := range symbols {
		imbalance := netted[symbol]
		if imbalance == 0 {
			continue
		}

		position := bySymbol[symbol]
		if position.Quarantined {
			continue
		}

		mark := markOf(position)
		if mark <= 0 {
			continue
		}

		var signal types.Signal
		if imbalance > 0 {
			qty := utils.MinQty(imbalance, position.AvailableQty)
			if qty <= 0 {
				continue
			}

			signal = types.Signal{
				Symbol:      symbol,
				Action:      types.SignalActionClose,
				Side:        types.SideSell,
				Quantity:    qty,
				TargetPrice: e.sellTarget(mark),
				Rationale:   fmt.Sprintf("sell %d to complete pending pair (net bought %d today)", qty, imbalance),
			}
		} else {
			qty := -imbalance

			signal = types.Signal{
				Symbol:      symbol,
				Action:      types.SignalActionOpen,
				Side:        types.SideBuy,
				Quantity:    qty,
				TargetPrice: e.buyTarget(mark),
				Rationale:   fmt.Sprintf("buy back %d to complete pending pair (net sold %d today)", qty, qty),
			}
		}

		candidates = append(candidates, candidate{
			symbol:        symbol,
			unrealizedPnL: position.UnrealizedPnL,
			signals:       []types.Signal{signal},
		})
	}

	return candidates
}

func (e *Engine) sellTarget(mark float64) float64 {
	target, _ := decimal.NewFromFloat(mark).
		Mul(decimal.NewFromFloat(1 + e.config.SellPremium)).
		Float64()
	return target
}

func (e *Engine) buyTarget(mark float64) float64 {
	target, _ := decimal.NewFromFloat(mark).
		Mul(decimal.NewFromFloat(1 - e.config.BuyDiscount)).
		Float64()
	return target
}

// markOf prefers the mark price, falling back to cost basis when the day's
// marks never covered the symbol.
func markOf(position types.Position) float64 {
	if position.MarkPrice > 0 {
		return position.MarkPrice
	}
	return position.CostBasis
}
