package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/dataset"
	"github.com/launchdash/launchdash/server/internal/pipeline"
)

// version is set at build time via -ldflags.
var version = "dev"

const rootLong = `launchdash loads a table of historical launches and serves an interactive
dashboard of success rates by site and payload mass against outcome.`

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	dataPath   string

	// level is shared by the logger and the config watcher.
	level *slog.LevelVar
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{level: new(slog.LevelVar)}

	root := &cobra.Command{
		Use:           "launchdash",
		Short:         "Launch records dashboard",
		Long:          rootLong,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "path to config file (defaults and environment only when empty)")
	f.StringVar(&opts.dataPath, "data", "", "dataset file; overrides server.dataset.path")

	root.AddCommand(
		newServeCmd(opts),
		newSummaryCmd(opts),
		newScatterCmd(opts),
		newSitesCmd(opts),
	)
	return root
}

// setupLogging installs a JSON slog handler on w at the shared level.
func (o *rootOptions) setupLogging(w io.Writer) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: o.level})))
}

// loadConfig loads the layered configuration and applies the --data override.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dataPath != "" {
		cfg.Server.Dataset.Path = o.dataPath
	}
	o.level.Set(cfg.Server.SlogLevel())
	return cfg, nil
}

// loadDataset reads the table named by cfg.
func loadDataset(cfg *config.Config) (*dataset.Dataset, error) {
	dc := cfg.Server.Dataset
	ds, err := dataset.Load(dc.Path, dataset.Options{
		Columns:   dataset.Columns(dc.Columns),
		Delimiter: dc.DelimiterRune(),
	})
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	return ds, nil
}

// sliderBounds converts the configured slider to the pipeline's form.
func sliderBounds(cfg *config.Config) pipeline.SliderBounds {
	return pipeline.SliderBounds(cfg.Server.Slider)
}

// setup loads config and dataset for the query subcommands. Logs go to
// stderr so tables on stdout stay clean.
func (o *rootOptions) setup(cmd *cobra.Command) (*config.Config, *dataset.Dataset, error) {
	o.setupLogging(cmd.ErrOrStderr())
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	ds, err := loadDataset(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, ds, nil
}
