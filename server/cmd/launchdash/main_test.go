package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/dataset"
	"github.com/launchdash/launchdash/server/internal/metrics"
	"github.com/launchdash/launchdash/server/internal/pipeline"
	"github.com/launchdash/launchdash/server/internal/ws"
)

var launches = filepath.Join("..", "..", "internal", "dataset", "testdata", "launches.csv")

// run executes the CLI with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSummary_AllSitesTable(t *testing.T) {
	out, err := run(t, "summary", "--data", launches)
	require.NoError(t, err)

	for _, site := range []string{"CCAFS LC-40", "VAFB SLC-4E", "KSC LC-39A", "CCAFS SLC-40"} {
		assert.Contains(t, out, site)
	}
	assert.Contains(t, out, "50.0%")
}

func TestSummary_SiteJSON(t *testing.T) {
	out, err := run(t, "summary", "--data", launches, "--site", "KSC LC-39A", "-o", "json")
	require.NoError(t, err)

	var got types.SiteOutcomeSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "KSC LC-39A", got.Site)
	assert.Equal(t, []types.ClassOutcomeRow{
		{Class: 0, Count: 1, Share: 0.25},
		{Class: 1, Count: 3, Share: 0.75},
	}, got.ByClass)
}

func TestSummary_Markdown(t *testing.T) {
	out, err := run(t, "summary", "--data", launches, "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "| KSC LC-39A |")
}

func TestSummary_UnknownSite(t *testing.T) {
	_, err := run(t, "summary", "--data", launches, "--site", "Boca Chica")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownSite)
}

func TestScatter_RangeJSON(t *testing.T) {
	out, err := run(t, "scatter", "--data", launches, "--low", "2000", "--high", "6000", "-o", "json")
	require.NoError(t, err)

	var got pipeline.ScatterChart
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Payload vs. Launch Outcome for All Sites", got.Title)

	masses := make([]float64, 0, len(got.Points))
	for _, p := range got.Points {
		masses = append(masses, p.PayloadMassKg)
	}
	assert.Equal(t, []float64{2034, 2490, 5600, 5300, 3669, 4990}, masses)
	assert.Equal(t, 6, got.Stats.Count)
}

func TestScatter_DefaultsToFullRange(t *testing.T) {
	out, err := run(t, "scatter", "--data", launches, "--site", "VAFB SLC-4E", "-o", "json")
	require.NoError(t, err)

	var got pipeline.ScatterChart
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Points, 2)
}

func TestScatter_InvertedRangeIsEmpty(t *testing.T) {
	out, err := run(t, "scatter", "--data", launches, "--low", "9000", "--high", "10", "-o", "json")
	require.NoError(t, err)

	var got pipeline.ScatterChart
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Empty(t, got.Points)
	assert.Nil(t, got.Stats.Correlation)
}

func TestSites_JSON(t *testing.T) {
	out, err := run(t, "sites", "--data", launches, "-o", "json")
	require.NoError(t, err)

	var got []siteRow
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []siteRow{
		{Site: "CCAFS LC-40", Launches: 6, Successes: 1},
		{Site: "VAFB SLC-4E", Launches: 2, Successes: 1},
		{Site: "KSC LC-39A", Launches: 4, Successes: 3},
		{Site: "CCAFS SLC-40", Launches: 2, Successes: 1},
	}, got)
}

func TestUnknownFormat(t *testing.T) {
	_, err := run(t, "sites", "--data", launches, "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestMissingDataset(t *testing.T) {
	_, err := run(t, "sites", "--data", filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDataLoad)
}

func TestConfigFileDataset(t *testing.T) {
	abs, err := filepath.Abs(launches)
	require.NoError(t, err)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server:\n  dataset:\n    path: "+abs+"\n"), 0o644))

	out, err := run(t, "sites", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "CCAFS SLC-40")
}

// --- serve mux --------------------------------------------------------------

func TestNewMux(t *testing.T) {
	ui := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ui, "index.html"), []byte("<html>dash</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(ui, "app.js"), []byte("console.log(1)"), 0o644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.UIDir = ui

	ds, err := dataset.New([]types.LaunchRecord{
		{LaunchSite: "KSC", PayloadMassKg: 500, OutcomeClass: 1},
	})
	require.NoError(t, err)
	rec := metrics.New()
	rec.SetDatasetSize(ds.Len())
	srv := httptest.NewServer(newMux(cfg, ds, rec, ws.New(ds, rec, ws.Options{})))
	defer srv.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/api/v1/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"records":1`)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "launchdash_dataset_records 1")

	code, body = get("/app.js")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "console.log(1)", body)

	code, body = get("/sites/KSC")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(body, "dash"), "SPA fallback: got %q", body)
}
