package types

// SignalAction classifies a pairing signal by its effect on exposure.
type SignalAction string

const (
	// SignalActionOpen is a buy leg: it increases intraday exposure and is
	// the leg suppressed by risk gating.
	SignalActionOpen SignalAction = "open"
	// SignalActionClose is a sell leg: it reduces exposure against settled
	// shares and always passes exposure gating.
	SignalActionClose SignalAction = "close"
)

// Side returns the order side that executes this action.
func (a SignalAction) Side() Side {
	if a == SignalActionOpen {
		return SideBuy
	}

	return SideSell
}

// Signal is a recommended pairing action produced by one strategy pass.
// Signals are ephemeral: they are recomputed from the current ledger and
// fill state on every run and carry no identity beyond it.
type Signal struct {
	Symbol string       `yaml:"symbol" json:"symbol"`
	Action SignalAction `yaml:"action" json:"action"`
	Side   Side         `yaml:"side" json:"side"`
	// Quantity is in shares, always a positive multiple of the board lot.
	Quantity int64 `yaml:"quantity" json:"quantity"`
	// TargetPrice is the suggested limit price (mark adjusted by the
	// configured premium/discount). Zero when no mark is known.
	TargetPrice float64 `yaml:"target_price" json:"target_price"`
	// Priority is the execution ordering key, lower value first. Assigned
	// after sorting by unrealized loss then symbol.
	Priority  int    `yaml:"priority" json:"priority"`
	Rationale string `yaml:"rationale" json:"rationale"`
}
