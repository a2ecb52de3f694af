package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/rxtech-lab/t0-trading/internal/report"
)

// NewPositionsTable creates the positions tab table.
func NewPositionsTable(r *report.Report) table.Model {
	columns := []table.Column{
		{Title: "Symbol", Width: 10},
		{Title: "Settled", Width: 9},
		{Title: "Virtual", Width: 9},
		{Title: "Avail", Width: 9},
		{Title: "Cost", Width: 10},
		{Title: "Mark", Width: 10},
		{Title: "Realized", Width: 12},
		{Title: "Unrealized", Width: 12},
		{Title: "Flag", Width: 12},
	}

	rows := make([]table.Row, 0, len(r.Positions))
	for _, position := range r.Positions {
		flag := ""
		if position.Quarantined {
			flag = "quarantined"
		}

		rows = append(rows, table.Row{
			position.Symbol,
			fmt.Sprintf("%d", position.SettledQty),
			fmt.Sprintf("%d", position.VirtualQty),
			fmt.Sprintf("%d", position.AvailableQty),
			fmt.Sprintf("%.3f", position.CostBasis),
			fmt.Sprintf("%.3f", position.MarkPrice),
			FormatPnL(position.RealizedPnL),
			FormatPnL(position.UnrealizedPnL),
			flag,
		})
	}

	return newTable(columns, rows)
}

// NewSignalsTable creates the signals tab table.
func NewSignalsTable(r *report.Report) table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Symbol", Width: 10},
		{Title: "Side", Width: 6},
		{Title: "Action", Width: 7},
		{Title: "Qty", Width: 9},
		{Title: "Target", Width: 10},
		{Title: "Rationale", Width: 48},
	}

	rows := make([]table.Row, 0, len(r.Signals))
	for _, signal := range r.Signals {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", signal.Priority),
			signal.Symbol,
			string(signal.Side),
			string(signal.Action),
			fmt.Sprintf("%d", signal.Quantity),
			fmt.Sprintf("%.3f", signal.TargetPrice),
			signal.Rationale,
		})
	}

	return newTable(columns, rows)
}

// NewAlertsTable creates the alerts tab table.
func NewAlertsTable(r *report.Report) table.Model {
	columns := []table.Column{
		{Title: "Severity", Width: 9},
		{Title: "Kind", Width: 20},
		{Title: "Symbol", Width: 10},
		{Title: "Message", Width: 56},
	}

	rows := make([]table.Row, 0, len(r.Alerts))
	for _, alert := range r.Alerts {
		rows = append(rows, table.Row{
			string(alert.Severity),
			string(alert.Kind),
			alert.Symbol,
			alert.Message,
		})
	}

	return newTable(columns, rows)
}

// NewStatsTable creates the T0 statistics tab table.
func NewStatsTable(r *report.Report) table.Model {
	columns := []table.Column{
		{Title: "Symbol", Width: 10},
		{Title: "Bought", Width: 9},
		{Title: "Sold", Width: 9},
		{Title: "Matched", Width: 9},
		{Title: "Profit", Width: 12},
		{Title: "Pending", Width: 9},
	}

	rows := make([]table.Row, 0, len(r.T0Stats))
	for _, stat := range r.T0Stats {
		rows = append(rows, table.Row{
			stat.Symbol,
			fmt.Sprintf("%d", stat.BuyQty),
			fmt.Sprintf("%d", stat.SellQty),
			fmt.Sprintf("%d", stat.MatchedQty),
			FormatPnL(stat.MatchedProfit),
			fmt.Sprintf("%d", stat.PendingQty),
		})
	}

	return newTable(columns, rows)
}

func newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	t.SetStyles(styles)

	return t
}
