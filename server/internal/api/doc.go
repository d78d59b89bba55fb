// Package api implements the HTTP REST API for the launch dashboard.
//
// New(dataset, slider, recorder) returns an http.Handler that serves:
//
//	GET /api/v1/health                     record/site counts, payload stats
//	GET /api/v1/layout                     dropdown options and slider definition
//	GET /api/v1/sites                      distinct launch sites ([]string)
//	GET /api/v1/summary?site=              proportion chart relation
//	GET /api/v1/scatter?site=&low=&high=   payload scatter relation
//	GET /api/v1/charts?site=&low=&high=    both, with titles and statistics
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods
//   - Default site to ALL and low/high to the dataset payload extremes
//   - Return 400 for unparseable bounds and 404 for an unknown site
//
// Each request runs the pipeline against the shared, immutable dataset.
package api
