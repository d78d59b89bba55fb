package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrDataLoad    = errors.New("data load failed")
	ErrUnknownSite = errors.New("unknown launch site")
)

// DataLoadError reports why the source table could not be loaded.
// Row and Column are zero/empty when the failure is not tied to a cell.
type DataLoadError struct {
	Path   string
	Row    int
	Column string
	Err    error
}

func (e *DataLoadError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("load %q: row %d, column %q: %v", e.Path, e.Row, e.Column, e.Err)
	case e.Column != "":
		return fmt.Sprintf("load %q: column %q: %v", e.Path, e.Column, e.Err)
	default:
		return fmt.Sprintf("load %q: %v", e.Path, e.Err)
	}
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Is makes every DataLoadError match ErrDataLoad.
func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }

// UnknownSiteError reports a filter that names a site absent from the dataset.
type UnknownSiteError struct {
	Site string
}

func (e *UnknownSiteError) Error() string {
	return fmt.Sprintf("unknown launch site %q", e.Site)
}

// Is makes every UnknownSiteError match ErrUnknownSite.
func (e *UnknownSiteError) Is(target error) bool { return target == ErrUnknownSite }
