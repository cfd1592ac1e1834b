package render

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

var (
	tableHeader = lipgloss.NewStyle().Bold(true).Foreground(Primary).Padding(0, 1)
	tableCell   = lipgloss.NewStyle().Foreground(Text).Padding(0, 1)
	tableTotal  = tableCell.Bold(true)
)

// Table renders rows under headers. When total is true the last row is
// a totals line and is set in bold.
func Table(headers []string, rows [][]string, total bool) string {
	last := len(rows) - 1
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeader
			case total && row == last:
				return tableTotal
			default:
				return tableCell
			}
		}).
		String()
}
