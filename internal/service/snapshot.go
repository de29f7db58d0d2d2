package service

import "github.com/mmcdole/artpick/internal/domain"

// Snapshot is an immutable view of the session state, produced after every
// mutation. The TUI renders snapshots and never reads controller state
// directly.
type Snapshot struct {
	Version uint64

	Rows         []domain.Record // records of the displayed page
	PageIndex    int             // page the rows belong to, 0 before the first load
	PageSize     int
	TotalRecords int // domain.UnknownTotal until a page reports it
	PageCount    int

	Loading     bool
	LoadingPage int  // page being fetched while Loading
	Selecting   bool // a select-first-N run is in progress

	CurrentPageSelection []domain.Record
	SelectedCount        int
	Selected             []domain.SelectionEntry

	Err error // last surfaced failure, cleared by the next successful load
}

// TotalKnown reports whether the source has reported a total count
func (s Snapshot) TotalKnown() bool {
	return s.TotalRecords >= 0
}

// IsSelected reports whether a row of the displayed page is selected
func (s Snapshot) IsSelected(id domain.ID) bool {
	for _, r := range s.CurrentPageSelection {
		if r.ID == id {
			return true
		}
	}
	return false
}

// HasNext reports whether a page after the displayed one exists
func (s Snapshot) HasNext() bool {
	if !s.TotalKnown() {
		return len(s.Rows) >= s.PageSize && s.PageSize > 0
	}
	return s.PageIndex < s.PageCount
}

// HasPrev reports whether a page before the displayed one exists
func (s Snapshot) HasPrev() bool {
	return s.PageIndex > 1
}

// FirstRow returns the 0-based dataset offset of the first displayed row
func (s Snapshot) FirstRow() int {
	if s.PageIndex < 1 {
		return 0
	}
	return (s.PageIndex - 1) * s.PageSize
}

// Observer receives a snapshot after every state change.
// Snapshots may arrive out of order; compare Version.
type Observer interface {
	OnSnapshot(snap Snapshot)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Snapshot)

// OnSnapshot calls f(snap)
func (f ObserverFunc) OnSnapshot(snap Snapshot) {
	f(snap)
}
