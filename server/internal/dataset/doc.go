// Package dataset loads the launch table once at startup and holds it as an
// immutable, lock-free in-memory relation.
//
// Load(path, opts) reads a CSV (or TSV) file with encoding/csv, or the first
// sheet of an XLSX workbook with excelize, maps the configured header names
// onto the canonical LaunchRecord fields, and validates every cell. Any
// failure is a *types.DataLoadError; an empty table is a failure too, since
// the payload bounds would be undefined.
//
// A *Dataset is never mutated after construction. Accessors return copies, so
// any number of goroutines may read it concurrently.
package dataset
