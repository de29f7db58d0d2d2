package domain

import (
	"strconv"
	"strings"
)

// ID identifies a record across every page of the catalogue.
// The artwork source hands out integers; keeping the identity as a string
// lets string-keyed sources plug in without touching the core.
type ID string

// IntID converts a numeric source identifier into an ID
func IntID(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// UntitledLabel is shown when a record arrives without a title
const UntitledLabel = "-"

// UnknownTotal marks a page whose source did not report a total count
const UnknownTotal = -1

// Details carries descriptive fields that are passed through to the view
// untouched. Every field is optional.
type Details struct {
	PlaceOfOrigin *string `json:"place_of_origin,omitempty" yaml:"place_of_origin,omitempty"`
	ArtistDisplay *string `json:"artist_display,omitempty" yaml:"artist_display,omitempty"`
	Inscriptions  *string `json:"inscriptions,omitempty" yaml:"inscriptions,omitempty"`
	DateStart     *int    `json:"date_start,omitempty" yaml:"date_start,omitempty"`
	DateEnd       *int    `json:"date_end,omitempty" yaml:"date_end,omitempty"`
}

// Record is one row of the remote dataset
type Record struct {
	ID      ID      `json:"id"`
	Title   string  `json:"title"`
	Details Details `json:"details"`
}

// Label returns the human-readable label used by the selection
func (r Record) Label() string {
	if strings.TrimSpace(r.Title) == "" {
		return UntitledLabel
	}
	return r.Title
}

// Page is one slice of the dataset as returned by the source
type Page struct {
	Records    []Record
	TotalCount int // UnknownTotal when the source omitted pagination
	PageSize   int // limit the source actually applied
	PageIndex  int // 1-based
}

// TotalKnown reports whether the source told us how big the dataset is
func (p *Page) TotalKnown() bool {
	return p.TotalCount >= 0
}

// SelectionEntry is the lightweight record kept for a selected identity.
// OriginPage is informational only and never used to validate state.
type SelectionEntry struct {
	ID         ID     `json:"id" yaml:"id"`
	Label      string `json:"label" yaml:"label"`
	OriginPage int    `json:"origin_page" yaml:"origin_page"`
}

// PageCount returns how many pages of size pageSize cover total records
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
