// Package pipeline derives the two dashboard chart relations from the loaded
// dataset and a filter selection.
//
//	SummarizeOutcomesBySite(ds, site)             proportion chart rows
//	FilterPayloadOutcomes(ds, site, low, high)    scatter chart points
//	BuildCharts(ds, selection)                    both, with titles and stats
//	BuildLayout(ds, slider)                       dashboard control definitions
//
// Every function is pure: it scans the full dataset on each call, keeps no
// cache and never mutates its input. An unknown site is reported as a
// *types.UnknownSiteError; an inverted or NaN payload range is not an error
// and yields an empty scatter.
package pipeline
