package pipeline

import (
	"sort"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// SummarizeOutcomesBySite returns the proportion chart relation for site.
//
// For types.AllSites it counts successful launches (class 1) per launch site,
// listing sites with no successes as zero. For a concrete site it counts the
// site's launches per outcome class, emitting only the classes present.
// Rows are ordered by grouping key ascending.
func SummarizeOutcomesBySite(ds *dataset.Dataset, site string) (types.SiteOutcomeSummary, error) {
	if err := checkSite(ds, site); err != nil {
		return types.SiteOutcomeSummary{}, err
	}
	if site == types.AllSites {
		return summarizeAll(ds), nil
	}
	return summarizeSite(ds, site), nil
}

func summarizeAll(ds *dataset.Dataset) types.SiteOutcomeSummary {
	successes := make(map[string]int)
	ds.Each(func(r types.LaunchRecord) {
		// Touch every site so zero-success groups survive.
		successes[r.LaunchSite] += r.OutcomeClass
	})

	sites := make([]string, 0, len(successes))
	total := 0
	for s, n := range successes {
		sites = append(sites, s)
		total += n
	}
	sort.Strings(sites)

	rows := make([]types.SiteOutcomeRow, 0, len(sites))
	for _, s := range sites {
		rows = append(rows, types.SiteOutcomeRow{
			Site:         s,
			SuccessCount: successes[s],
			Share:        share(successes[s], total),
		})
	}
	return types.SiteOutcomeSummary{Site: types.AllSites, BySite: rows}
}

func summarizeSite(ds *dataset.Dataset, site string) types.SiteOutcomeSummary {
	var counts [2]int
	ds.Each(func(r types.LaunchRecord) {
		if r.LaunchSite == site {
			counts[r.OutcomeClass]++
		}
	})

	total := counts[0] + counts[1]
	rows := make([]types.ClassOutcomeRow, 0, 2)
	for class, n := range counts {
		if n == 0 {
			continue
		}
		rows = append(rows, types.ClassOutcomeRow{Class: class, Count: n, Share: share(n, total)})
	}
	return types.SiteOutcomeSummary{Site: site, ByClass: rows}
}

// FilterPayloadOutcomes returns the records whose payload lies in the
// inclusive range [low, high], restricted to site unless it is
// types.AllSites. Dataset order is preserved. An inverted range yields an
// empty, non-nil result.
func FilterPayloadOutcomes(ds *dataset.Dataset, site string, low, high float64) (types.PayloadOutcomeScatter, error) {
	if err := checkSite(ds, site); err != nil {
		return nil, err
	}

	out := make(types.PayloadOutcomeScatter, 0)
	if low > high {
		return out, nil
	}
	ds.Each(func(r types.LaunchRecord) {
		// Written as an inclusion test so NaN bounds match nothing.
		if !(r.PayloadMassKg >= low && r.PayloadMassKg <= high) {
			return
		}
		if site != types.AllSites && r.LaunchSite != site {
			return
		}
		out = append(out, types.ScatterPoint{
			PayloadMassKg:          r.PayloadMassKg,
			OutcomeClass:           r.OutcomeClass,
			BoosterVersionCategory: r.BoosterVersionCategory,
		})
	})
	return out, nil
}

func checkSite(ds *dataset.Dataset, site string) error {
	if site == types.AllSites || ds.HasSite(site) {
		return nil
	}
	return &types.UnknownSiteError{Site: site}
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
