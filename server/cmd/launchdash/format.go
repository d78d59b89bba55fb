package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Output formats for the query subcommands.
const (
	formatTable    = "table"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

func checkFormat(f string) error {
	switch f {
	case formatTable, formatMarkdown, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q (want table, markdown or json)", f)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTable returns a table writer with right-aligned numeric columns.
func newTable(title string, numeric ...int) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	cfgs := make([]table.ColumnConfig, 0, len(numeric))
	for _, n := range numeric {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	t.SetColumnConfigs(cfgs)
	return t
}

func renderTable(w io.Writer, t table.Writer, format string) error {
	out := t.Render()
	if format == formatMarkdown {
		out = t.RenderMarkdown()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

func percent(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}
