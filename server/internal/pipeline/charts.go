package pipeline

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// PageTitle is the dashboard heading.
const PageTitle = "SpaceX Launch Records Dashboard"

// Charts is the full chart payload for one filter selection.
type Charts struct {
	Selection types.FilterSelection `json:"selection"`
	Pie       PieChart              `json:"pie"`
	Scatter   ScatterChart          `json:"scatter"`
}

// PieChart is the proportion chart: successes by site, or outcomes at a site.
type PieChart struct {
	Title   string                   `json:"title"`
	Summary types.SiteOutcomeSummary `json:"summary"`
}

// ScatterChart is the payload vs. outcome chart.
type ScatterChart struct {
	Title  string                      `json:"title"`
	Points types.PayloadOutcomeScatter `json:"points"`
	Stats  ScatterStats                `json:"stats"`
}

// ScatterStats summarises the scatter points.
// Correlation is the Pearson coefficient of payload mass against outcome
// class; nil when it is undefined (fewer than two points or a constant series).
type ScatterStats struct {
	Count       int      `json:"count"`
	Successes   int      `json:"successes"`
	SuccessRate float64  `json:"success_rate"`
	Correlation *float64 `json:"correlation"`
}

// BuildCharts derives both chart relations for sel.
func BuildCharts(ds *dataset.Dataset, sel types.FilterSelection) (Charts, error) {
	summary, err := SummarizeOutcomesBySite(ds, sel.Site)
	if err != nil {
		return Charts{}, err
	}
	points, err := FilterPayloadOutcomes(ds, sel.Site, sel.PayloadRange.Low, sel.PayloadRange.High)
	if err != nil {
		return Charts{}, err
	}

	return Charts{
		Selection: sel,
		Pie: PieChart{
			Title:   pieTitle(sel.Site),
			Summary: summary,
		},
		Scatter: ScatterChart{
			Title:  scatterTitle(sel.Site),
			Points: points,
			Stats:  scatterStats(points),
		},
	}, nil
}

func pieTitle(site string) string {
	if site == types.AllSites {
		return "Total Successful Launches by Site"
	}
	return fmt.Sprintf("Success vs Failure for site %s", site)
}

func scatterTitle(site string) string {
	if site == types.AllSites {
		return "Payload vs. Launch Outcome for All Sites"
	}
	return fmt.Sprintf("Payload vs. Launch Outcome for %s", site)
}

func scatterStats(points types.PayloadOutcomeScatter) ScatterStats {
	st := ScatterStats{Count: len(points)}
	if len(points) == 0 {
		return st
	}

	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = p.PayloadMassKg
		y[i] = float64(p.OutcomeClass)
		st.Successes += p.OutcomeClass
	}
	st.SuccessRate = float64(st.Successes) / float64(len(points))

	if len(points) > 1 {
		if c := stat.Correlation(x, y, nil); !math.IsNaN(c) && !math.IsInf(c, 0) {
			st.Correlation = &c
		}
	}
	return st
}

// SliderBounds configures the payload range slider.
type SliderBounds struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Step float64 `yaml:"step" json:"step"`
}

// DefaultSlider returns the slider of the reference dashboard.
func DefaultSlider() SliderBounds {
	return SliderBounds{Min: 0, Max: 10000, Step: 1000}
}

// Option is one site selector entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Mark is one labelled slider tick.
type Mark struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Dropdown describes the site selector.
type Dropdown struct {
	Options     []Option `json:"options"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder"`
	Searchable  bool     `json:"searchable"`
}

// RangeSlider describes the payload range selector.
type RangeSlider struct {
	SliderBounds
	Marks []Mark             `json:"marks"`
	Value types.PayloadRange `json:"value"`
}

// Layout is the static definition of the dashboard controls.
type Layout struct {
	Title    string      `json:"title"`
	Dropdown Dropdown    `json:"dropdown"`
	Slider   RangeSlider `json:"slider"`
}

// BuildLayout returns the control definitions for ds. The slider's initial value
// spans the dataset's payload extremes; its marks split [Min, Max] in quarters.
func BuildLayout(ds *dataset.Dataset, slider SliderBounds) Layout {
	opts := []Option{{Label: "All Sites", Value: types.AllSites}}
	for _, s := range ds.Sites() {
		opts = append(opts, Option{Label: s, Value: s})
	}

	marks := make([]Mark, 0, 5)
	for i := 0; i <= 4; i++ {
		v := slider.Min + (slider.Max-slider.Min)*float64(i)/4
		marks = append(marks, Mark{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}

	return Layout{
		Title: PageTitle,
		Dropdown: Dropdown{
			Options:     opts,
			Value:       types.AllSites,
			Placeholder: "Select a Launch Site here",
			Searchable:  true,
		},
		Slider: RangeSlider{
			SliderBounds: slider,
			Marks:        marks,
			Value:        types.PayloadRange{Low: ds.MinPayload(), High: ds.MaxPayload()},
		},
	}
}

// DefaultSelection is the filter state a fresh dashboard starts with.
func DefaultSelection(ds *dataset.Dataset) types.FilterSelection {
	return types.FilterSelection{
		Site:         types.AllSites,
		PayloadRange: types.PayloadRange{Low: ds.MinPayload(), High: ds.MaxPayload()},
	}
}
