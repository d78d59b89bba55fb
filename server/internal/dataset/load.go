package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/launchdash/launchdash/pkg/types"
)

// Default header names, as they appear in spacex_launch_dash.csv.
const (
	DefaultSiteColumn    = "Launch Site"
	DefaultPayloadColumn = "Payload Mass (kg)"
	DefaultClassColumn   = "class"
	DefaultBoosterColumn = "Booster Version Category"
)

// Columns maps the canonical record fields onto source header names.
type Columns struct {
	Site    string `yaml:"site"`
	Payload string `yaml:"payload"`
	Class   string `yaml:"class"`
	Booster string `yaml:"booster"`
}

// DefaultColumns returns the header names of the reference launch file.
func DefaultColumns() Columns {
	return Columns{
		Site:    DefaultSiteColumn,
		Payload: DefaultPayloadColumn,
		Class:   DefaultClassColumn,
		Booster: DefaultBoosterColumn,
	}
}

// withDefaults fills empty header names with the defaults.
func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.Site == "" {
		c.Site = d.Site
	}
	if c.Payload == "" {
		c.Payload = d.Payload
	}
	if c.Class == "" {
		c.Class = d.Class
	}
	if c.Booster == "" {
		c.Booster = d.Booster
	}
	return c
}

// Options controls how Load reads the source file.
type Options struct {
	Columns Columns

	// Delimiter is the field separator for delimited files. Zero selects
	// ',' for .csv and '\t' for .tsv. Ignored for .xlsx.
	Delimiter rune
}

// Load reads the launch table at path and returns the immutable Dataset.
// Every failure is reported as a *types.DataLoadError.
func Load(path string, opts Options) (*Dataset, error) {
	rows, err := readRows(path, opts)
	if err != nil {
		return nil, &types.DataLoadError{Path: path, Err: err}
	}

	records, err := parseRows(path, rows, opts.Columns.withDefaults())
	if err != nil {
		return nil, err
	}

	ds, err := build(path, records)
	if err != nil {
		return nil, err
	}

	slog.Info("dataset: loaded",
		"path", path,
		"records", ds.Len(),
		"sites", len(ds.sites),
		"min_payload", ds.min,
		"max_payload", ds.max,
	)
	return ds, nil
}

// readRows returns the raw cell grid, header row first.
func readRows(path string, opts Options) ([][]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		return readDelimited(path, delimiterOr(opts.Delimiter, ','))
	case ".tsv":
		return readDelimited(path, delimiterOr(opts.Delimiter, '\t'))
	case ".xlsx":
		return readWorkbook(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q: want .csv, .tsv, .txt or .xlsx", ext)
	}
}

func delimiterOr(d, fallback rune) rune {
	if d == 0 {
		return fallback
	}
	return d
}

func readDelimited(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1 // short rows are reported per cell, not per file
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited: %w", err)
	}
	return rows, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// parseRows maps the cell grid onto records. Row numbers in errors are
// 1-based with the header as row 1.
func parseRows(path string, rows [][]string, cols Columns) ([]types.LaunchRecord, error) {
	if len(rows) == 0 {
		return nil, &types.DataLoadError{Path: path, Err: errors.New("missing header row")}
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	want := []string{cols.Site, cols.Payload, cols.Class, cols.Booster}
	pos := make([]int, len(want))
	for i, name := range want {
		p, ok := idx[name]
		if !ok {
			return nil, &types.DataLoadError{Path: path, Column: name, Err: errors.New("required column missing")}
		}
		pos[i] = p
	}

	records := make([]types.LaunchRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		line := i + 2
		cell := func(p int) string {
			if p < len(row) {
				return strings.TrimSpace(row[p])
			}
			return ""
		}

		site := cell(pos[0])
		if site == "" {
			return nil, &types.DataLoadError{Path: path, Row: line, Column: cols.Site, Err: errors.New("empty value")}
		}

		payload, err := strconv.ParseFloat(cell(pos[1]), 64)
		if err != nil {
			return nil, &types.DataLoadError{Path: path, Row: line, Column: cols.Payload, Err: fmt.Errorf("not a number: %q", cell(pos[1]))}
		}
		if math.IsNaN(payload) || math.IsInf(payload, 0) || payload < 0 {
			return nil, &types.DataLoadError{Path: path, Row: line, Column: cols.Payload, Err: fmt.Errorf("invalid payload %v", payload)}
		}

		class, err := parseClass(cell(pos[2]))
		if err != nil {
			return nil, &types.DataLoadError{Path: path, Row: line, Column: cols.Class, Err: err}
		}

		records = append(records, types.LaunchRecord{
			LaunchSite:             site,
			PayloadMassKg:          payload,
			OutcomeClass:           class,
			BoosterVersionCategory: cell(pos[3]),
		})
	}
	return records, nil
}

// parseClass accepts "0"/"1" and their float spellings ("1.0").
func parseClass(s string) (int, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	switch v {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	default:
		return 0, fmt.Errorf("outcome class %v is not 0 or 1", v)
	}
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
