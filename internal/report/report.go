package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/t0-trading/internal/datasource"
	"github.com/rxtech-lab/t0-trading/internal/ledger"
	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Summary is the headline block of a run report.
type Summary struct {
	GeneratedAt        time.Time          `yaml:"generated_at" json:"generated_at"`
	Mode               types.StrategyMode `yaml:"mode" json:"mode"`
	RiskStatus         types.RiskStatus   `yaml:"risk_status" json:"risk_status"`
	TotalMarketValue   float64            `yaml:"total_market_value" json:"total_market_value"`
	TotalRealizedPnL   float64            `yaml:"total_realized_pnl" json:"total_realized_pnl"`
	TotalUnrealizedPnL float64            `yaml:"total_unrealized_pnl" json:"total_unrealized_pnl"`
	T0MatchedProfit    float64            `yaml:"t0_matched_profit" json:"t0_matched_profit"`
	PositionCount      int                `yaml:"position_count" json:"position_count"`
	SignalCount        int                `yaml:"signal_count" json:"signal_count"`
	AlertCount         int                `yaml:"alert_count" json:"alert_count"`
	SkippedFillCount   int                `yaml:"skipped_fill_count" json:"skipped_fill_count"`
}

// Report is the complete output of one pipeline run. It is written as YAML
// next to the journal's parquet export and is what the view command renders.
type Report struct {
	Summary        Summary               `yaml:"summary" json:"summary"`
	Positions      []types.Position      `yaml:"positions" json:"positions"`
	Signals        []types.Signal        `yaml:"signals" json:"signals"`
	Alerts         []types.Alert         `yaml:"alerts" json:"alerts"`
	SkippedFills   []ledger.SkippedFill  `yaml:"skipped_fills,omitempty" json:"skipped_fills,omitempty"`
	T0Stats        []types.T0Stat        `yaml:"t0_stats,omitempty" json:"t0_stats,omitempty"`
	SnapshotErrors []datasource.RowError `yaml:"snapshot_errors,omitempty" json:"snapshot_errors,omitempty"`
	FillErrors     []datasource.RowError `yaml:"fill_errors,omitempty" json:"fill_errors,omitempty"`
}

// NewReport assembles a report and computes the summary totals.
func NewReport(mode types.StrategyMode, status types.RiskStatus, positions []types.Position, signals []types.Signal, alerts []types.Alert, skipped []ledger.SkippedFill, stats []types.T0Stat) *Report {
	marketValue := decimal.Zero
	realized := decimal.Zero
	unrealized := decimal.Zero

	for _, position := range positions {
		marketValue = marketValue.Add(decimal.NewFromFloat(position.MarketValue()))
		realized = realized.Add(decimal.NewFromFloat(position.RealizedPnL))
		unrealized = unrealized.Add(decimal.NewFromFloat(position.UnrealizedPnL))
	}

	matched := decimal.Zero
	for _, stat := range stats {
		matched = matched.Add(decimal.NewFromFloat(stat.MatchedProfit))
	}

	report := &Report{
		Positions:    positions,
		Signals:      signals,
		Alerts:       alerts,
		SkippedFills: skipped,
		T0Stats:      stats,
	}

	report.Summary = Summary{
		GeneratedAt:      time.Now(),
		Mode:             mode,
		RiskStatus:       status,
		PositionCount:    len(positions),
		SignalCount:      len(signals),
		AlertCount:       len(alerts),
		SkippedFillCount: len(skipped),
	}
	report.Summary.TotalMarketValue, _ = marketValue.Float64()
	report.Summary.TotalRealizedPnL, _ = realized.Float64()
	report.Summary.TotalUnrealizedPnL, _ = unrealized.Float64()
	report.Summary.T0MatchedProfit, _ = matched.Float64()

	return report
}

// Write serializes the report to report.yaml under the given folder,
// creating the folder if needed.
func (r *Report) Write(folder string) (string, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report folder: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(folder, "report.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

// Load reads a previously written report.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read report %s", path)
	}

	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDecodeFailed, err, "failed to decode report %s", path)
	}

	return &report, nil
}
