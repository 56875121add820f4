package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableStyle provides consistent styling for tables across the CLI.
type TableStyle struct {
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
}

// DefaultTableStyle returns the default table styling.
func DefaultTableStyle() TableStyle {
	return TableStyle{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),
		Cell: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Selected: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Background(ColorMuted),
		Border: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	// Apply styling
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	s.Selected = s.Selected.
		Foreground(ColorPrimary).
		Background(ColorMuted).
		Bold(false)

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
// This is for CLI output (not TUI), producing a simple formatted table.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	// Create the table
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// PortRow is one serial port in the ports listing.
type PortRow struct {
	Name        string
	Description string
	USBID       string // "VID:PID", empty for non-USB ports
	Match       bool   // matched the discovery markers
}

// RenderPortTable renders the serial port listing. Ports that discovery
// would pick are marked with a filled dot.
func RenderPortTable(rows []PortRow) string {
	if len(rows) == 0 {
		return "No serial ports found"
	}

	columns := []TableColumn{
		{Title: " ", Width: 1},
		{Title: "PORT", Width: 24},
		{Title: "DESCRIPTION", Width: 32},
		{Title: "USB ID", Width: 9},
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		// Cells are truncated by display width, so the marker stays unstyled.
		marker := SymbolPending
		if row.Match {
			marker = SymbolComplete
		}
		desc := row.Description
		if desc == "" {
			desc = "-"
		}
		cells[i] = []string{marker, row.Name, truncate(desc, 32), row.USBID}
	}

	return RenderSimpleTable(columns, cells)
}

// truncate shortens s to width display cells, adding an ellipsis.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width || width < 2 {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
