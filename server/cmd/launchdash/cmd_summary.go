package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/pipeline"
)

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var site, format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print successful launches by site, or outcomes at one site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			_, ds, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			summary, err := pipeline.SummarizeOutcomesBySite(ds, site)
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), summary, format)
		},
	}

	f := cmd.Flags()
	f.StringVar(&site, "site", types.AllSites, "launch site, or ALL")
	f.StringVarP(&format, "format", "o", formatTable, "output format: table, markdown or json")
	return cmd
}

func writeSummary(w io.Writer, s types.SiteOutcomeSummary, format string) error {
	if format == formatJSON {
		return writeJSON(w, s)
	}

	if s.Site == types.AllSites {
		t := newTable("Total Successful Launches by Site", 2, 3)
		t.AppendHeader(table.Row{"Site", "Successes", "Share"})
		for _, r := range s.BySite {
			t.AppendRow(table.Row{r.Site, r.SuccessCount, percent(r.Share)})
		}
		t.AppendFooter(table.Row{"Total", s.Total(), ""})
		return renderTable(w, t, format)
	}

	t := newTable("Success vs Failure for site "+s.Site, 3, 4)
	t.AppendHeader(table.Row{"Class", "Outcome", "Launches", "Share"})
	for _, r := range s.ByClass {
		t.AppendRow(table.Row{r.Class, outcomeName(r.Class), r.Count, percent(r.Share)})
	}
	t.AppendFooter(table.Row{"", "Total", s.Total(), ""})
	return renderTable(w, t, format)
}

func outcomeName(class int) string {
	if class == 1 {
		return "success"
	}
	return "failure"
}
