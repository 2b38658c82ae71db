// Package format renders command output tables with go-pretty.
package format

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// Table is a build-once, render-once table.
type Table struct {
	w    table.Writer
	mode Mode
}

// NewTable returns a table rendered in mode m.
func NewTable(m Mode) *Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return &Table{w: w, mode: m}
}

// Title sets an optional caption above the table.
func (t *Table) Title(s string) {
	t.w.SetTitle(s)
}

// Header sets the column headers.
func (t *Table) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	t.w.AppendHeader(row)
}

// Row appends a data row.
func (t *Table) Row(vals ...any) {
	t.w.AppendRow(table.Row(vals))
}

// Footer appends a footer row, e.g. totals.
func (t *Table) Footer(vals ...any) {
	t.w.AppendFooter(table.Row(vals))
}

// AlignRight right-aligns the given 1-based columns.
func (t *Table) AlignRight(cols ...int) {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{Number: c, Align: text.AlignRight, AlignFooter: text.AlignRight}
	}
	t.w.SetColumnConfigs(cfgs)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return t.w.Length()
}

func (t *Table) String() string {
	if t.mode == Markdown {
		return t.w.RenderMarkdown()
	}
	return t.w.Render()
}

// Render writes the table and a trailing newline to w.
func (t *Table) Render(w io.Writer) error {
	_, err := io.WriteString(w, t.String()+"\n")
	return err
}
