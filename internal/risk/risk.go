package risk

import (
	"fmt"
	"sort"

	"github.com/rxtech-lab/t0-trading/internal/logger"
	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// warningRatio is the fraction of the exposure cap at which an advisory
// warning fires before the hard breach.
const warningRatio = 0.8

// Limit is one enableable risk threshold.
type Limit struct {
	Enabled   bool    `yaml:"enabled" json:"enabled"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

// Config holds the four controller limits. Thresholds are validated up
// front; a controller with a nonsensical limit must never run.
type Config struct {
	// MaxAggregateExposure caps the total market value across all
	// positions, in currency units.
	MaxAggregateExposure Limit `yaml:"max_aggregate_exposure" json:"max_aggregate_exposure"`
	// MaxConcentrationRatio caps each symbol's share of the aggregate
	// market value, in (0, 1].
	MaxConcentrationRatio Limit `yaml:"max_concentration_ratio" json:"max_concentration_ratio"`
	// StopLossRatio flags positions whose P&L ratio fell below this
	// negative threshold.
	StopLossRatio Limit `yaml:"stop_loss_ratio" json:"stop_loss_ratio"`
	// TakeProfitRatio flags positions whose P&L ratio rose above this
	// positive threshold.
	TakeProfitRatio Limit `yaml:"take_profit_ratio" json:"take_profit_ratio"`
}

func (c Config) Validate() error {
	if c.MaxAggregateExposure.Enabled && c.MaxAggregateExposure.Threshold <= 0 {
		return errors.Newf(errors.ErrCodeInvalidThreshold,
			"max_aggregate_exposure must be > 0, got %f", c.MaxAggregateExposure.Threshold)
	}
	if c.MaxConcentrationRatio.Enabled &&
		(c.MaxConcentrationRatio.Threshold <= 0 || c.MaxConcentrationRatio.Threshold > 1) {
		return errors.Newf(errors.ErrCodeInvalidThreshold,
			"max_concentration_ratio must be in (0,1], got %f", c.MaxConcentrationRatio.Threshold)
	}
	if c.StopLossRatio.Enabled && c.StopLossRatio.Threshold >= 0 {
		return errors.Newf(errors.ErrCodeInvalidThreshold,
			"stop_loss_ratio must be < 0, got %f", c.StopLossRatio.Threshold)
	}
	if c.TakeProfitRatio.Enabled && c.TakeProfitRatio.Threshold <= 0 {
		return errors.Newf(errors.ErrCodeInvalidThreshold,
			"take_profit_ratio must be > 0, got %f", c.TakeProfitRatio.Threshold)
	}

	return nil
}

// Result is one controller pass: the surviving signals, re-numbered, plus
// every alert raised. Status is RISK when any error-severity alert fired.
type Result struct {
	Signals []types.Signal   `yaml:"signals" json:"signals"`
	Alerts  []types.Alert    `yaml:"alerts" json:"alerts"`
	Status  types.RiskStatus `yaml:"status" json:"status"`
}

// Controller evaluates positions and gates signals against the configured
// limits. It only reads the book; suppression removes signals from the
// output, never touches the ledger.
type Controller struct {
	config Config
	logger *logger.Logger
}

func NewController(config Config, log *logger.Logger) (*Controller, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Controller{config: config, logger: log}, nil
}

// Evaluate runs the checks in a fixed order: aggregate exposure, then
// concentration, then stop-loss/take-profit. Exposure and concentration
// breaches suppress open (buy) signals; close (sell) signals always pass.
// Surviving signals keep their relative order and are re-numbered 1..n.
func (c *Controller) Evaluate(positions []types.Position, signals []types.Signal) Result {
	result := Result{Status: types.RiskStatusOK}

	aggregate := aggregateExposure(positions)
	suppressAll := false
	suppressed := make(map[string]bool)

	if c.config.MaxAggregateExposure.Enabled {
		limit := c.config.MaxAggregateExposure.Threshold

		switch {
		case aggregate > limit:
			suppressAll = true
			result.Alerts = append(result.Alerts, types.Alert{
				Kind:         types.AlertKindAggregateExposure,
				Severity:     types.AlertSeverityError,
				Message:      fmt.Sprintf("aggregate exposure %.2f breaches cap %.2f, suppressing all buy signals", aggregate, limit),
				CurrentValue: aggregate,
				LimitValue:   limit,
			})
		case aggregate > limit*warningRatio:
			result.Alerts = append(result.Alerts, types.Alert{
				Kind:         types.AlertKindAggregateExposure,
				Severity:     types.AlertSeverityWarning,
				Message:      fmt.Sprintf("aggregate exposure %.2f above %.0f%% of cap %.2f", aggregate, warningRatio*100, limit),
				CurrentValue: aggregate,
				LimitValue:   limit,
			})
		}
	}

	if c.config.MaxConcentrationRatio.Enabled && aggregate > 0 {
		ratio := c.config.MaxConcentrationRatio.Threshold

		for _, position := range sortedBySymbol(positions) {
			share := position.MarketValue() / aggregate

			if share > ratio {
				suppressed[position.Symbol] = true
				result.Alerts = append(result.Alerts, types.Alert{
					Kind:         types.AlertKindConcentration,
					Severity:     types.AlertSeverityError,
					Symbol:       position.Symbol,
					Message:      fmt.Sprintf("%s holds %.1f%% of aggregate exposure, limit %.1f%%", position.Symbol, share*100, ratio*100),
					CurrentValue: share,
					LimitValue:   ratio,
				})
			}
		}
	}

	for _, position := range sortedBySymbol(positions) {
		if position.TotalQty() == 0 {
			continue
		}

		pnlRatio := position.PnLRatio()

		if c.config.StopLossRatio.Enabled && pnlRatio < c.config.StopLossRatio.Threshold {
			result.Alerts = append(result.Alerts, types.Alert{
				Kind:         types.AlertKindStopLoss,
				Severity:     types.AlertSeverityWarning,
				Symbol:       position.Symbol,
				Message:      fmt.Sprintf("%s P&L ratio %.2f%% below stop loss %.2f%%", position.Symbol, pnlRatio*100, c.config.StopLossRatio.Threshold*100),
				CurrentValue: pnlRatio,
				LimitValue:   c.config.StopLossRatio.Threshold,
			})
		}

		if c.config.TakeProfitRatio.Enabled && pnlRatio > c.config.TakeProfitRatio.Threshold {
			result.Alerts = append(result.Alerts, types.Alert{
				Kind:         types.AlertKindTakeProfit,
				Severity:     types.AlertSeverityInfo,
				Symbol:       position.Symbol,
				Message:      fmt.Sprintf("%s P&L ratio %.2f%% above take profit %.2f%%", position.Symbol, pnlRatio*100, c.config.TakeProfitRatio.Threshold*100),
				CurrentValue: pnlRatio,
				LimitValue:   c.config.TakeProfitRatio.Threshold,
			})
		}
	}

	for _, signal := range signals {
		if signal.Action == types.SignalActionOpen && (suppressAll || suppressed[signal.Symbol]) {
			if c.logger != nil {
				c.logger.Info("signal suppressed",
					zap.String("symbol", signal.Symbol),
					zap.Int64("quantity", signal.Quantity),
				)
			}

			continue
		}

		result.Signals = append(result.Signals, signal)
	}

	for i := range result.Signals {
		result.Signals[i].Priority = i + 1
	}

	for _, alert := range result.Alerts {
		if alert.Severity == types.AlertSeverityError {
			result.Status = types.RiskStatusRisk
			break
		}
	}

	return result
}

// aggregateExposure sums market value over settled plus virtual shares.
func aggregateExposure(positions []types.Position) float64 {
	total := decimal.Zero
	for _, position := range positions {
		total = total.Add(decimal.NewFromFloat(position.MarketValue()))
	}

	value, _ := total.Float64()
	return value
}

func sortedBySymbol(positions []types.Position) []types.Position {
	sorted := make([]types.Position, len(positions))
	copy(sorted, positions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Symbol < sorted[j].Symbol
	})

	return sorted
}
