package summary

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/Veraticus/retail-insights/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PromptRows caps how many future forecast rows are embedded in the prompt.
const PromptRows = 12

// PromptBuilder renders the analyst prompt from a forecast.
type PromptBuilder struct {
	tmpl *template.Template
}

// PromptData is the template input.
type PromptData struct {
	Table string
	Weeks int
}

// NewPromptBuilder parses the embedded prompt template.
func NewPromptBuilder() (*PromptBuilder, error) {
	tmpl, err := template.New("summary_prompt.tmpl").ParseFS(templateFS, "templates/summary_prompt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template summary_prompt: %w", err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// Build renders the prompt for the last PromptRows future rows of the forecast.
// Fitted history rows never reach the prompt, and Weeks is the number of rows shown.
func (pb *PromptBuilder) Build(forecast model.Forecast) (string, error) {
	future := forecast.Future().Tail(PromptRows)
	data := PromptData{
		Table: FormatTable(future),
		Weeks: len(future.Points),
	}

	var buf bytes.Buffer
	if err := pb.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// FormatTable renders the ds and yhat columns as a plain-text table with every
// column right-aligned to its widest cell and no index column.
func FormatTable(forecast model.Forecast) string {
	header := []string{"ds", "yhat"}
	rows := make([][]string, 0, len(forecast.Points))
	for _, p := range forecast.Points {
		rows = append(rows, []string{model.FormatDate(p.Date), fmt.Sprintf("%.6f", p.Mean)})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := utf8.RuneCountInString(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%*s", widths[i], cell)
		}
	}

	writeRow(header)
	for _, row := range rows {
		b.WriteByte('\n')
		writeRow(row)
	}
	return b.String()
}
