package types

// AllSites is the site selector value that disables site filtering.
const AllSites = "ALL"

// LaunchRecord is one row of the launch dataset.
type LaunchRecord struct {
	LaunchSite             string  `json:"launch_site"`
	PayloadMassKg          float64 `json:"payload_mass_kg"`
	OutcomeClass           int     `json:"class"` // 1 = success, 0 = failure
	BoosterVersionCategory string  `json:"booster_version_category"`
}

// PayloadRange is an inclusive payload mass window in kilograms.
type PayloadRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// FilterSelection is the dashboard filter state supplied by the UI.
type FilterSelection struct {
	Site         string       `json:"site"`
	PayloadRange PayloadRange `json:"payload_range"`
}

// SiteOutcomeRow counts successful launches at one site.
type SiteOutcomeRow struct {
	Site         string  `json:"site"`
	SuccessCount int     `json:"success_count"`
	Share        float64 `json:"share"`
}

// ClassOutcomeRow counts launches with one outcome class at a single site.
type ClassOutcomeRow struct {
	Class int     `json:"class"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// SiteOutcomeSummary is the proportion chart relation.
//
// When Site is AllSites, BySite holds one row per distinct launch site.
// Otherwise ByClass holds one row per outcome class present at Site.
type SiteOutcomeSummary struct {
	Site    string            `json:"site"`
	BySite  []SiteOutcomeRow  `json:"by_site,omitempty"`
	ByClass []ClassOutcomeRow `json:"by_class,omitempty"`
}

// Total returns the sum of the counts across all rows.
func (s SiteOutcomeSummary) Total() int {
	n := 0
	for _, r := range s.BySite {
		n += r.SuccessCount
	}
	for _, r := range s.ByClass {
		n += r.Count
	}
	return n
}

// ScatterPoint is one surviving record of the payload filter.
type ScatterPoint struct {
	PayloadMassKg          float64 `json:"payload_mass_kg"`
	OutcomeClass           int     `json:"class"`
	BoosterVersionCategory string  `json:"booster_version_category"`
}

// PayloadOutcomeScatter is the correlation chart relation, in dataset order.
type PayloadOutcomeScatter []ScatterPoint
