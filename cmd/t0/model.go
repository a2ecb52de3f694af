package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/t0-trading/internal/report"
	"github.com/rxtech-lab/t0-trading/internal/types"
)

// Report tabs.
const (
	TabPositions = iota
	TabSignals
	TabAlerts
	TabStats
	tabCount
)

var tabNames = []string{"Positions", "Signals", "Alerts", "T0 Stats"}

// Model is the Bubble Tea model for the report browser.
type Model struct {
	report *report.Report
	tab    int
	tables []table.Model
	width  int
	height int
}

// NewModel creates a Model over a loaded report.
func NewModel(r *report.Report) Model {
	return Model{
		report: r,
		tab:    TabPositions,
		tables: []table.Model{
			NewPositionsTable(r),
			NewSignalsTable(r),
			NewAlertsTable(r),
			NewStatsTable(r),
		},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab", "right", "l":
			m.tab = (m.tab + 1) % tabCount
			return m, nil
		case "shift+tab", "left", "h":
			m.tab = (m.tab + tabCount - 1) % tabCount
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for i := range m.tables {
			m.tables[i].SetWidth(msg.Width)
			m.tables[i].SetHeight(msg.Height - 8)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.tables[m.tab], cmd = m.tables[m.tab].Update(msg)

	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	status := OkStyle.Render(string(m.report.Summary.RiskStatus))
	if m.report.Summary.RiskStatus == types.RiskStatusRisk {
		status = RiskStyle.Render(string(m.report.Summary.RiskStatus))
	}

	b.WriteString(TitleStyle.Render("T0 report"))
	fmt.Fprintf(&b, "  %s  risk: %s\n", m.report.Summary.Mode, status)
	fmt.Fprintf(&b, "market value %.2f  realized %s  unrealized %s\n",
		m.report.Summary.TotalMarketValue,
		FormatPnL(m.report.Summary.TotalRealizedPnL),
		FormatPnL(m.report.Summary.TotalUnrealizedPnL),
	)

	for i, name := range tabNames {
		if i == m.tab {
			b.WriteString(ActiveTabStyle.Render(name))
		} else {
			b.WriteString(HelpStyle.Render(name))
		}
		if i < len(tabNames)-1 {
			b.WriteString("  ")
		}
	}
	b.WriteString("\n\n")

	b.WriteString(m.tables[m.tab].View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("tab: switch  ↑/↓: scroll  q: quit"))

	return b.String()
}
