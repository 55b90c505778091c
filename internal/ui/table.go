package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values. Cells may already be styled.
type Row []string

// Table renders a fixed-width lipgloss table.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates a new table.
func NewTable(cols ...Column) *Table {
	return &Table{Columns: cols}
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, Row(cells))
}

// Render returns the table as a string. Widths are measured on the visible
// text, so pre-styled cells line up.
func (t *Table) Render() string {
	var sb strings.Builder
	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)

	var cells []string
	for _, col := range t.Columns {
		cells = append(cells, header.Render(pad(col.Title, col.Width)))
	}
	sb.WriteString(strings.Join(cells, " ") + "\n")

	cells = cells[:0]
	for _, col := range t.Columns {
		cells = append(cells, StyleMeta.Render(strings.Repeat("─", col.Width)))
	}
	sb.WriteString(strings.Join(cells, " ") + "\n")

	for _, row := range t.Rows {
		cells = cells[:0]
		for j, col := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cells = append(cells, pad(val, col.Width))
		}
		sb.WriteString(strings.Join(cells, " ") + "\n")
	}
	return sb.String()
}

// pad left-aligns s within width visible columns. Plain text that is too
// long is cut with an ellipsis; styled text is left alone.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w > width {
		if w == len([]rune(s)) && width > 1 {
			return string([]rune(s)[:width-1]) + "…"
		}
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// KeyValueBlock renders key/value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	keyWidth := 0
	for _, p := range pairs {
		if w := lipgloss.Width(p[0]) + 1; w > keyWidth {
			keyWidth = w
		}
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title) + "\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-*s", keyWidth, p[0]+":"))
		sb.WriteString(key + "  " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(strings.TrimRight(sb.String(), "\n"))
}
