package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
	faint = color.New(color.Faint)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// money formats d with two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// signed colours d green when positive and red when negative.
func signed(d decimal.Decimal) string {
	s := money(d)
	switch {
	case d.IsPositive():
		return green.Sprint(s)
	case d.IsNegative():
		return red.Sprint(s)
	}
	return s
}

// renderTable writes rows under headers. Empty row sets print placeholder.
func renderTable(w io.Writer, placeholder string, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, faint.Sprint(placeholder))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}
