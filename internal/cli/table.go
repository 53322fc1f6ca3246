package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table writes aligned columns with a styled header.
type Table struct {
	w       *tabwriter.Writer
	columns int
}

// NewTable writes the header row and returns a table ready for rows.
func NewTable(out io.Writer, headers ...string) *Table {
	t := &Table{
		w:       tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
		columns: len(headers),
	}

	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = TableHeaderStyle.Render(h)
		rules[i] = strings.Repeat("-", max(len(h), 4))
	}
	t.line(styled)
	t.line(rules)

	return t
}

// Row appends a row. Missing cells are left empty and extra cells dropped.
func (t *Table) Row(cells ...string) {
	row := make([]string, t.columns)
	copy(row, cells)
	t.line(row)
}

// Flush writes the buffered rows.
func (t *Table) Flush() error {
	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func (t *Table) line(cells []string) {
	// tabwriter buffers; errors surface on Flush.
	_, _ = fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}
