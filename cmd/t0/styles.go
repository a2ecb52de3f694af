package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// RiskStyle for a breached risk status.
	RiskStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	// OkStyle for a clean risk status.
	OkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// ActiveTabStyle for the selected tab label.
	ActiveTabStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// FormatPnL formats a signed P&L figure with a direction indicator.
func FormatPnL(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)

	if value > 0 {
		return formatted + " ▲"
	} else if value < 0 {
		return formatted + " ▼"
	}

	return formatted
}
