package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders static rows under a styled header line.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given title and column headers.
func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers}
}

// AddRow appends one row. Missing trailing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// View renders the table. A table without rows renders nothing.
func (t *Table) View(st Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	// Widths must cover the cell padding too.
	for i := range widths {
		widths[i] += 2
	}
	total := len(t.Headers) - 1
	for _, w := range widths {
		total += w
	}

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(st.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	for i, h := range t.Headers {
		sb.WriteString(st.Header.Width(widths[i]).Render(h))
		if i < len(t.Headers)-1 {
			sb.WriteString(st.Muted.Render("|"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(st.Muted.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		for i := range t.Headers {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(st.Cell.Width(widths[i]).Render(cell))
			if i < len(t.Headers)-1 {
				sb.WriteString(st.Muted.Render("|"))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
