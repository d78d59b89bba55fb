package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// siteRow is one line of the sites listing.
type siteRow struct {
	Site      string `json:"site"`
	Launches  int    `json:"launches"`
	Successes int    `json:"successes"`
}

func newSitesCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sites",
		Short: "List launch sites in dataset order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			_, ds, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			return writeSites(cmd.OutOrStdout(), siteRows(ds), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "output format: table, markdown or json")
	return cmd
}

func siteRows(ds *dataset.Dataset) []siteRow {
	idx := make(map[string]int)
	rows := make([]siteRow, 0, len(ds.Sites()))
	for i, s := range ds.Sites() {
		idx[s] = i
		rows = append(rows, siteRow{Site: s})
	}
	ds.Each(func(r types.LaunchRecord) {
		row := &rows[idx[r.LaunchSite]]
		row.Launches++
		row.Successes += r.OutcomeClass
	})
	return rows
}

func writeSites(w io.Writer, rows []siteRow, format string) error {
	if format == formatJSON {
		return writeJSON(w, rows)
	}

	t := newTable("Launch Sites", 2, 3)
	t.AppendHeader(table.Row{"Site", "Launches", "Successes"})
	launches, successes := 0, 0
	for _, r := range rows {
		t.AppendRow(table.Row{r.Site, r.Launches, r.Successes})
		launches += r.Launches
		successes += r.Successes
	}
	t.AppendFooter(table.Row{"Total", launches, successes})
	return renderTable(w, t, format)
}
