package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// --- helpers ----------------------------------------------------------------

func newDataset(t *testing.T, recs ...types.LaunchRecord) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(recs)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return ds
}

func rec(site string, payload float64, class int, booster string) types.LaunchRecord {
	return types.LaunchRecord{LaunchSite: site, PayloadMassKg: payload, OutcomeClass: class, BoosterVersionCategory: booster}
}

// example is the three-row dataset used in the worked examples.
func example(t *testing.T) *dataset.Dataset {
	return newDataset(t,
		rec("KSC", 500, 1, "v1"),
		rec("KSC", 2000, 0, "v1"),
		rec("CCAFS", 1000, 1, "v2"),
	)
}

// launches mirrors a slice of the reference launch file.
func launches(t *testing.T) *dataset.Dataset {
	return newDataset(t,
		rec("CCAFS LC-40", 0, 0, "v1.0"),
		rec("CCAFS LC-40", 525, 0, "v1.0"),
		rec("VAFB SLC-4E", 500, 0, "v1.1"),
		rec("CCAFS LC-40", 2034, 1, "FT"),
		rec("VAFB SLC-4E", 9600, 1, "FT"),
		rec("KSC LC-39A", 2490, 1, "FT"),
		rec("KSC LC-39A", 5600, 0, "FT"),
		rec("KSC LC-39A", 5300, 1, "FT"),
		rec("CCAFS SLC-40", 3669, 1, "FT"),
		rec("CCAFS SLC-40", 4990, 0, "v1.1"),
		rec("KSC LC-39A", 6070, 1, "B4"),
		rec("EMPTY PAD", 1200, 0, "v1.1"),
	)
}

// shareless drops the Share column, which the count properties do not cover.
var shareless = cmp.Options{
	cmpopts.IgnoreFields(types.SiteOutcomeRow{}, "Share"),
	cmpopts.IgnoreFields(types.ClassOutcomeRow{}, "Share"),
}

// --- SummarizeOutcomesBySite ------------------------------------------------

func TestSummarize_AllSites_Example(t *testing.T) {
	got, err := SummarizeOutcomesBySite(example(t), types.AllSites)
	if err != nil {
		t.Fatalf("SummarizeOutcomesBySite: %v", err)
	}
	want := types.SiteOutcomeSummary{
		Site: types.AllSites,
		BySite: []types.SiteOutcomeRow{
			{Site: "CCAFS", SuccessCount: 1, Share: 0.5},
			{Site: "KSC", SuccessCount: 1, Share: 0.5},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Site_Example(t *testing.T) {
	got, err := SummarizeOutcomesBySite(example(t), "KSC")
	if err != nil {
		t.Fatalf("SummarizeOutcomesBySite: %v", err)
	}
	want := types.SiteOutcomeSummary{
		Site: "KSC",
		ByClass: []types.ClassOutcomeRow{
			{Class: 0, Count: 1, Share: 0.5},
			{Class: 1, Count: 1, Share: 0.5},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_AllSites_KeepsZeroSuccessSites(t *testing.T) {
	got, err := SummarizeOutcomesBySite(launches(t), types.AllSites)
	if err != nil {
		t.Fatalf("SummarizeOutcomesBySite: %v", err)
	}
	want := []types.SiteOutcomeRow{
		{Site: "CCAFS LC-40", SuccessCount: 1},
		{Site: "CCAFS SLC-40", SuccessCount: 1},
		{Site: "EMPTY PAD", SuccessCount: 0},
		{Site: "KSC LC-39A", SuccessCount: 3},
		{Site: "VAFB SLC-4E", SuccessCount: 1},
	}
	if diff := cmp.Diff(want, got.BySite, shareless); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if got.ByClass != nil {
		t.Errorf("ByClass: got %v, want nil for ALL", got.ByClass)
	}
}

func TestSummarize_AllSites_NoSuccessesAnywhere(t *testing.T) {
	ds := newDataset(t, rec("A", 1, 0, "x"), rec("B", 2, 0, "x"))
	got, err := SummarizeOutcomesBySite(ds, types.AllSites)
	if err != nil {
		t.Fatalf("SummarizeOutcomesBySite: %v", err)
	}
	want := []types.SiteOutcomeRow{{Site: "A"}, {Site: "B"}}
	if diff := cmp.Diff(want, got.BySite); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Site_OnlySuccesses_NoSynthesizedRow(t *testing.T) {
	ds := newDataset(t, rec("KSC", 1, 1, "x"), rec("KSC", 2, 1, "x"), rec("VAFB", 3, 0, "x"))
	got, err := SummarizeOutcomesBySite(ds, "KSC")
	if err != nil {
		t.Fatalf("SummarizeOutcomesBySite: %v", err)
	}
	want := []types.ClassOutcomeRow{{Class: 1, Count: 2, Share: 1}}
	if diff := cmp.Diff(want, got.ByClass); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Site_CountsMatchSiteRecords(t *testing.T) {
	ds := launches(t)
	for _, site := range ds.Sites() {
		got, err := SummarizeOutcomesBySite(ds, site)
		if err != nil {
			t.Fatalf("%s: %v", site, err)
		}
		if len(got.ByClass) > 2 {
			t.Errorf("%s: got %d rows, want at most 2", site, len(got.ByClass))
		}
		want := 0
		ds.Each(func(r types.LaunchRecord) {
			if r.LaunchSite == site {
				want++
			}
		})
		if got.Total() != want {
			t.Errorf("%s: total %d, want %d", site, got.Total(), want)
		}
	}
}

func TestSummarize_AllSites_OneRowPerSite(t *testing.T) {
	ds := launches(t)
	got, err := SummarizeOutcomesBySite(ds, types.AllSites)
	if err != nil {
		t.Fatalf("SummarizeOutcomesBySite: %v", err)
	}
	if len(got.BySite) != len(ds.Sites()) {
		t.Fatalf("rows: got %d, want %d", len(got.BySite), len(ds.Sites()))
	}
	for _, row := range got.BySite {
		want := 0
		ds.Each(func(r types.LaunchRecord) {
			if r.LaunchSite == row.Site && r.OutcomeClass == 1 {
				want++
			}
		})
		if row.SuccessCount != want {
			t.Errorf("%s: success_count %d, want %d", row.Site, row.SuccessCount, want)
		}
	}
}

func TestSummarize_SharesSumToOne(t *testing.T) {
	got, err := SummarizeOutcomesBySite(launches(t), types.AllSites)
	if err != nil {
		t.Fatalf("SummarizeOutcomesBySite: %v", err)
	}
	var sum float64
	for _, r := range got.BySite {
		sum += r.Share
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("shares sum to %v, want 1", sum)
	}
}

func TestSummarize_UnknownSite(t *testing.T) {
	_, err := SummarizeOutcomesBySite(example(t), "Boca Chica")
	if !errors.Is(err, types.ErrUnknownSite) {
		t.Fatalf("err: got %v, want ErrUnknownSite", err)
	}
	var se *types.UnknownSiteError
	if !errors.As(err, &se) || se.Site != "Boca Chica" {
		t.Errorf("UnknownSiteError: got %#v", err)
	}
}

// --- FilterPayloadOutcomes --------------------------------------------------

func TestFilter_Example(t *testing.T) {
	got, err := FilterPayloadOutcomes(example(t), types.AllSites, 0, 1000)
	if err != nil {
		t.Fatalf("FilterPayloadOutcomes: %v", err)
	}
	want := types.PayloadOutcomeScatter{
		{PayloadMassKg: 500, OutcomeClass: 1, BoosterVersionCategory: "v1"},
		{PayloadMassKg: 1000, OutcomeClass: 1, BoosterVersionCategory: "v2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scatter mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_InclusiveBounds(t *testing.T) {
	got, err := FilterPayloadOutcomes(example(t), types.AllSites, 500, 500)
	if err != nil {
		t.Fatalf("FilterPayloadOutcomes: %v", err)
	}
	if len(got) != 1 || got[0].PayloadMassKg != 500 {
		t.Errorf("got %v, want the single 500 kg record", got)
	}
}

func TestFilter_SiteRestriction(t *testing.T) {
	got, err := FilterPayloadOutcomes(example(t), "KSC", 0, 10000)
	if err != nil {
		t.Fatalf("FilterPayloadOutcomes: %v", err)
	}
	want := types.PayloadOutcomeScatter{
		{PayloadMassKg: 500, OutcomeClass: 1, BoosterVersionCategory: "v1"},
		{PayloadMassKg: 2000, OutcomeClass: 0, BoosterVersionCategory: "v1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scatter mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_InvertedRangeIsEmpty(t *testing.T) {
	ds := launches(t)
	for _, site := range append([]string{types.AllSites}, ds.Sites()...) {
		got, err := FilterPayloadOutcomes(ds, site, 5000, 1000)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", site, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("%s: got %v, want empty non-nil", site, got)
		}
	}
}

func TestFilter_NaNBoundsAreEmpty(t *testing.T) {
	got, err := FilterPayloadOutcomes(example(t), types.AllSites, math.NaN(), 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d points, want 0", len(got))
	}
}

func TestFilter_OutOfBoundsRangeDoesNotCrash(t *testing.T) {
	got, err := FilterPayloadOutcomes(example(t), types.AllSites, -1e9, 1e9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d points, want 3", len(got))
	}
}

func TestFilter_GlobalExtremesKeepEverySiteRecord(t *testing.T) {
	ds := launches(t)
	for _, site := range ds.Sites() {
		got, err := FilterPayloadOutcomes(ds, site, ds.MinPayload(), ds.MaxPayload())
		if err != nil {
			t.Fatalf("%s: %v", site, err)
		}
		var want types.PayloadOutcomeScatter
		ds.Each(func(r types.LaunchRecord) {
			if r.LaunchSite == site {
				want = append(want, types.ScatterPoint{
					PayloadMassKg:          r.PayloadMassKg,
					OutcomeClass:           r.OutcomeClass,
					BoosterVersionCategory: r.BoosterVersionCategory,
				})
			}
		})
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", site, diff)
		}
	}
}

func TestFilter_PreservesDatasetOrder(t *testing.T) {
	ds := newDataset(t, rec("A", 900, 1, "x"), rec("B", 100, 0, "y"), rec("A", 500, 0, "z"))
	got, err := FilterPayloadOutcomes(ds, types.AllSites, 0, 1000)
	if err != nil {
		t.Fatalf("FilterPayloadOutcomes: %v", err)
	}
	var order []float64
	for _, p := range got {
		order = append(order, p.PayloadMassKg)
	}
	if diff := cmp.Diff([]float64{900, 100, 500}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_UnknownSite(t *testing.T) {
	_, err := FilterPayloadOutcomes(example(t), "Boca Chica", 0, 10000)
	if !errors.Is(err, types.ErrUnknownSite) {
		t.Fatalf("err: got %v, want ErrUnknownSite", err)
	}
}

// --- idempotence ------------------------------------------------------------

func TestOperations_Idempotent(t *testing.T) {
	ds := launches(t)
	before := ds.Records()

	for _, site := range append([]string{types.AllSites}, ds.Sites()...) {
		s1, err1 := SummarizeOutcomesBySite(ds, site)
		s2, err2 := SummarizeOutcomesBySite(ds, site)
		if err1 != nil || err2 != nil {
			t.Fatalf("%s: errors %v, %v", site, err1, err2)
		}
		if diff := cmp.Diff(s1, s2); diff != "" {
			t.Errorf("%s summary not idempotent:\n%s", site, diff)
		}

		f1, _ := FilterPayloadOutcomes(ds, site, 500, 6000)
		f2, _ := FilterPayloadOutcomes(ds, site, 500, 6000)
		if diff := cmp.Diff(f1, f2); diff != "" {
			t.Errorf("%s scatter not idempotent:\n%s", site, diff)
		}
	}

	if diff := cmp.Diff(before, ds.Records()); diff != "" {
		t.Errorf("dataset mutated:\n%s", diff)
	}
}
