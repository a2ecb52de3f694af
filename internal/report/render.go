package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/t0-trading/internal/types"
)

// Style definitions.
var (
	// titleStyle for the report header.
	titleStyle = lipgloss.NewStyle().Bold(true)

	// okStyle for a clean risk status.
	okStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// riskStyle for a breached risk status.
	riskStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	// faintStyle for secondary lines.
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// RenderSummary formats the report's headline block for terminal output.
func (r *Report) RenderSummary() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("T0 run summary"))
	b.WriteString("\n")

	status := okStyle.Render(string(r.Summary.RiskStatus))
	if r.Summary.RiskStatus == types.RiskStatusRisk {
		status = riskStyle.Render(string(r.Summary.RiskStatus))
	}

	fmt.Fprintf(&b, "mode: %s    risk: %s\n", r.Summary.Mode, status)
	fmt.Fprintf(&b, "market value: %.2f    realized: %.2f    unrealized: %.2f    t0 matched: %.2f\n",
		r.Summary.TotalMarketValue,
		r.Summary.TotalRealizedPnL,
		r.Summary.TotalUnrealizedPnL,
		r.Summary.T0MatchedProfit,
	)
	fmt.Fprintf(&b, "positions: %d    signals: %d    alerts: %d    skipped fills: %d\n",
		r.Summary.PositionCount,
		r.Summary.SignalCount,
		r.Summary.AlertCount,
		r.Summary.SkippedFillCount,
	)

	for _, alert := range r.Alerts {
		line := fmt.Sprintf("[%s] %s", alert.Severity, alert.Message)
		if alert.Severity == types.AlertSeverityError {
			b.WriteString(riskStyle.Render(line))
		} else {
			b.WriteString(faintStyle.Render(line))
		}
		b.WriteString("\n")
	}

	for _, signal := range r.Signals {
		fmt.Fprintf(&b, "#%d %-5s %-6s %s x%d @ %.3f\n",
			signal.Priority, signal.Side, signal.Action, signal.Symbol, signal.Quantity, signal.TargetPrice)
	}

	return b.String()
}
