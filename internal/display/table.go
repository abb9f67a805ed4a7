package display

import (
	"strings"
	"unicode/utf8"
)

// RowState controls how a table row is painted.
type RowState int

const (
	RowNormal RowState = iota
	RowPassed          // gray
	RowActive          // accent
)

// indent prefixes every rendered line.
const indent = "  "

type row struct {
	cells []string
	state RowState
}

// Table is a left-aligned text table. Widths count runes, so cells such
// as "18.5°" line up.
type Table struct {
	headers []string
	rows    []row
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, row{cells: cells})
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Mark sets the state of row i. Out of range indexes are ignored.
func (t *Table) Mark(i int, s RowState) {
	if i >= 0 && i < len(t.rows) {
		t.rows[i].state = s
	}
}

// MarkProgress marks every row before active as passed and active itself
// as the active row. A negative active leaves the table untouched.
func (t *Table) MarkProgress(active int) {
	if active < 0 {
		return
	}
	for i := range t.rows {
		switch {
		case i < active:
			t.rows[i].state = RowPassed
		case i == active:
			t.rows[i].state = RowActive
		}
	}
}

// Render returns the header, a rule and every row, each indented and
// newline terminated.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, r := range t.rows {
		for i, c := range r.cells {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(c))
			}
		}
	}

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}

	var sb strings.Builder
	sb.WriteString(indent + Bold(pad(t.headers, widths)) + "\n")
	sb.WriteString(Dim(indent+strings.Join(rule, "  ")) + "\n")
	for _, r := range t.rows {
		line := pad(r.cells, widths)
		switch r.state {
		case RowActive:
			line = Accent(line)
		case RowPassed:
			line = Gray(line)
		}
		sb.WriteString(indent + line + "\n")
	}
	return sb.String()
}

// pad joins cells, right-padding each to its column width.
func pad(cells []string, widths []int) string {
	var sb strings.Builder
	for i, w := range widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		c := ""
		if i < len(cells) {
			c = cells[i]
		}
		sb.WriteString(c)
		sb.WriteString(strings.Repeat(" ", w-utf8.RuneCountInString(c)))
	}
	return sb.String()
}
