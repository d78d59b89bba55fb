package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/launchdash/launchdash/pkg/types"
)

// memoryPath names datasets built with New rather than read from a file.
const memoryPath = "<memory>"

var errNoRows = errors.New("table has no data rows")

// Dataset is the immutable launch relation plus its payload bounds.
type Dataset struct {
	records []types.LaunchRecord
	sites   []string            // distinct, first-appearance order
	siteSet map[string]struct{} // membership for HasSite
	min     float64
	max     float64
}

// PayloadStats summarises the payload mass column.
type PayloadStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// New builds a Dataset from records. The slice is copied; callers may reuse it.
// It fails with a *types.DataLoadError when records is empty or a record
// carries a negative payload or an outcome class other than 0 or 1.
func New(records []types.LaunchRecord) (*Dataset, error) {
	return build(memoryPath, records)
}

func build(path string, records []types.LaunchRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, &types.DataLoadError{Path: path, Err: errNoRows}
	}

	ds := &Dataset{
		records: make([]types.LaunchRecord, len(records)),
		siteSet: make(map[string]struct{}),
	}
	copy(ds.records, records)

	payloads := make([]float64, 0, len(records))
	for i, r := range ds.records {
		if err := checkRecord(r); err != nil {
			return nil, &types.DataLoadError{Path: path, Err: fmt.Errorf("record %d: %w", i+1, err)}
		}
		if _, ok := ds.siteSet[r.LaunchSite]; !ok {
			ds.siteSet[r.LaunchSite] = struct{}{}
			ds.sites = append(ds.sites, r.LaunchSite)
		}
		payloads = append(payloads, r.PayloadMassKg)
	}

	// stats only fails on empty input, which was rejected above.
	ds.min, _ = stats.Min(payloads)
	ds.max, _ = stats.Max(payloads)
	return ds, nil
}

func checkRecord(r types.LaunchRecord) error {
	switch {
	case r.LaunchSite == "":
		return errors.New("empty launch site")
	case r.LaunchSite == types.AllSites:
		return fmt.Errorf("launch site %q is reserved", types.AllSites)
	case math.IsNaN(r.PayloadMassKg) || math.IsInf(r.PayloadMassKg, 0):
		return fmt.Errorf("payload mass %v is not finite", r.PayloadMassKg)
	case r.PayloadMassKg < 0:
		return fmt.Errorf("payload mass %v is negative", r.PayloadMassKg)
	case r.OutcomeClass != 0 && r.OutcomeClass != 1:
		return fmt.Errorf("outcome class %d is not 0 or 1", r.OutcomeClass)
	}
	return nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a copy of all records in load order.
func (d *Dataset) Records() []types.LaunchRecord {
	out := make([]types.LaunchRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Each calls fn for every record in load order without copying the relation.
// fn receives the record by value.
func (d *Dataset) Each(fn func(types.LaunchRecord)) {
	for _, r := range d.records {
		fn(r)
	}
}

// Sites returns the distinct launch sites in first-appearance order.
func (d *Dataset) Sites() []string {
	out := make([]string, len(d.sites))
	copy(out, d.sites)
	return out
}

// HasSite reports whether site occurs in the dataset.
func (d *Dataset) HasSite(site string) bool {
	_, ok := d.siteSet[site]
	return ok
}

// MinPayload returns the smallest payload mass in the dataset.
func (d *Dataset) MinPayload() float64 { return d.min }

// MaxPayload returns the largest payload mass in the dataset.
func (d *Dataset) MaxPayload() float64 { return d.max }

// PayloadStats returns descriptive statistics of the payload column.
func (d *Dataset) PayloadStats() PayloadStats {
	payloads := make([]float64, len(d.records))
	for i, r := range d.records {
		payloads[i] = r.PayloadMassKg
	}
	mean, _ := stats.Mean(payloads)
	median, _ := stats.Median(payloads)
	return PayloadStats{Min: d.min, Max: d.max, Mean: mean, Median: median}
}
