package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/retail-insights/internal/model"
)

// TableOptions controls how RenderTable prints a result table.
type TableOptions struct {
	// Currency lists header names whose cells are printed as money.
	Currency []string
	// MaxRows truncates the output; zero prints every row.
	MaxRows int
}

// FormatCurrency renders a numeric string as $1,234.57. Non-numeric input is returned unchanged.
func FormatCurrency(value string) string {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return value
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

// RenderTable lays out a result table in aligned columns. Numeric columns are right-aligned.
func RenderTable(t model.Table, opts TableOptions) string {
	header := t.Header()
	records := t.Records()
	if opts.MaxRows > 0 && len(records) > opts.MaxRows {
		records = records[:opts.MaxRows]
	}

	currency := make(map[int]bool, len(opts.Currency))
	for i, h := range header {
		for _, c := range opts.Currency {
			if h == c {
				currency[i] = true
			}
		}
	}

	cells := make([][]string, len(records))
	for r, record := range records {
		row := make([]string, len(record))
		for i, cell := range record {
			if currency[i] {
				cell = FormatCurrency(cell)
			}
			row[i] = cell
		}
		cells[r] = row
	}

	widths := make([]int, len(header))
	numeric := make([]bool, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
		numeric[i] = len(cells) > 0
	}
	for _, row := range cells {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
			if cell != "" && !isNumeric(cell) {
				numeric[i] = false
			}
		}
	}

	align := func(i int) lipgloss.Position {
		if numeric[i] {
			return lipgloss.Right
		}
		return lipgloss.Left
	}

	headerCells := make([]string, len(header))
	for i, h := range header {
		headerCells[i] = TableCellStyle.Width(widths[i] + 2).Align(align(i)).Render(h)
	}

	lines := []string{TableHeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, headerCells...))}
	for _, row := range cells {
		rendered := make([]string, len(row))
		for i, cell := range row {
			rendered[i] = TableCellStyle.Width(widths[i] + 2).Align(align(i)).Render(cell)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func isNumeric(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "$")
	if s == "" {
		return false
	}
	_, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	return err == nil
}
