package types

type AlertKind string

const (
	AlertKindAggregateExposure AlertKind = "aggregate_exposure"
	AlertKindConcentration     AlertKind = "concentration"
	AlertKindStopLoss          AlertKind = "stop_loss"
	AlertKindTakeProfit        AlertKind = "take_profit"
)

type AlertSeverity string

const (
	AlertSeverityInfo    AlertSeverity = "INFO"
	AlertSeverityWarning AlertSeverity = "WARNING"
	AlertSeverityError   AlertSeverity = "ERROR"
)

// Alert is a risk finding produced by one controller pass. Portfolio-level
// alerts carry an empty Symbol.
type Alert struct {
	Kind     AlertKind     `yaml:"kind" json:"kind"`
	Severity AlertSeverity `yaml:"severity" json:"severity"`
	Symbol   string        `yaml:"symbol,omitempty" json:"symbol,omitempty"`
	Message  string        `yaml:"message" json:"message"`
	// CurrentValue and LimitValue give the observed value and the breached
	// threshold so the alert is actionable without further lookup.
	CurrentValue float64 `yaml:"current_value" json:"current_value"`
	LimitValue   float64 `yaml:"limit_value" json:"limit_value"`
}

// RiskStatus summarizes one risk pass for the report header.
type RiskStatus string

const (
	RiskStatusOK RiskStatus = "OK"
	// RiskStatusRisk means at least one error-severity alert fired.
	RiskStatusRisk RiskStatus = "RISK"
)

// StrategyMode selects which pairing rule the strategy engine runs.
type StrategyMode string

const (
	// StrategyModeBasePosition proposes paired sell/buy-back legs against
	// the settled base position.
	StrategyModeBasePosition StrategyMode = "base_position"
	// StrategyModePendingPair proposes only the missing leg of a T0 round
	// already opened by today's fills.
	StrategyModePendingPair StrategyMode = "pending_pair"
)
