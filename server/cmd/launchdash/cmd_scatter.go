package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/pipeline"
)

func newScatterCmd(opts *rootOptions) *cobra.Command {
	var (
		site, format string
		low, high    float64
	)

	cmd := &cobra.Command{
		Use:   "scatter",
		Short: "Print launches within a payload range with their outcomes",
		Long: "Prints every launch whose payload mass lies in [low, high], optionally\n" +
			"restricted to one site. Omitted bounds default to the dataset extremes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			_, ds, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			sel := pipeline.DefaultSelection(ds)
			sel.Site = site
			if cmd.Flags().Changed("low") {
				sel.PayloadRange.Low = low
			}
			if cmd.Flags().Changed("high") {
				sel.PayloadRange.High = high
			}

			charts, err := pipeline.BuildCharts(ds, sel)
			if err != nil {
				return err
			}
			return writeScatter(cmd.OutOrStdout(), charts.Scatter, format)
		},
	}

	f := cmd.Flags()
	f.StringVar(&site, "site", types.AllSites, "launch site, or ALL")
	f.Float64Var(&low, "low", 0, "lowest payload mass in kg (inclusive)")
	f.Float64Var(&high, "high", 0, "highest payload mass in kg (inclusive)")
	f.StringVarP(&format, "format", "o", formatTable, "output format: table, markdown or json")
	return cmd
}

func writeScatter(w io.Writer, sc pipeline.ScatterChart, format string) error {
	if format == formatJSON {
		return writeJSON(w, sc)
	}

	t := newTable(sc.Title, 1, 2)
	t.AppendHeader(table.Row{"Payload (kg)", "Class", "Booster"})
	for _, p := range sc.Points {
		t.AppendRow(table.Row{p.PayloadMassKg, p.OutcomeClass, p.BoosterVersionCategory})
	}

	corr := "n/a"
	if sc.Stats.Correlation != nil {
		corr = fmt.Sprintf("%.3f", *sc.Stats.Correlation)
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d launches", sc.Stats.Count),
		percent(sc.Stats.SuccessRate) + " success",
		"r = " + corr,
	})
	return renderTable(w, t, format)
}
