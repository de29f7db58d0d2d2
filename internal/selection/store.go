// Package selection holds the cross-page selection: a mapping from record
// identity to a lightweight entry, independent of the page being rendered.
package selection

import (
	"sort"

	"github.com/mmcdole/artpick/internal/domain"
)

type entry struct {
	domain.SelectionEntry
	seq uint64 // first insertion order, survives refreshes
}

// Store maps identity -> SelectionEntry. An identity appears at most once.
// Store is not safe for concurrent use; its owner serializes access.
type Store struct {
	entries map[domain.ID]entry
	seq     uint64
}

// New creates an empty selection store
func New() *Store {
	return &Store{entries: make(map[domain.ID]entry)}
}

// Select inserts or refreshes an entry per record and returns how many
// identities were not selected before.
func (s *Store) Select(records []domain.Record, pageIndex int) int {
	added := 0
	for _, r := range records {
		e, ok := s.entries[r.ID]
		if !ok {
			s.seq++
			e.seq = s.seq
			added++
		}
		e.SelectionEntry = domain.SelectionEntry{
			ID:         r.ID,
			Label:      r.Label(),
			OriginPage: pageIndex,
		}
		s.entries[r.ID] = e
	}
	return added
}

// Deselect removes the entries for the given records; absent ones are ignored.
// Returns how many entries were removed.
func (s *Store) Deselect(records []domain.Record) int {
	removed := 0
	for _, r := range records {
		if _, ok := s.entries[r.ID]; ok {
			delete(s.entries, r.ID)
			removed++
		}
	}
	return removed
}

// Clear empties the store unconditionally
func (s *Store) Clear() {
	s.entries = make(map[domain.ID]entry)
}

// IsSelected reports whether id is part of the selection
func (s *Store) IsSelected(id domain.ID) bool {
	_, ok := s.entries[id]
	return ok
}

// Count returns the number of selected identities across all pages
func (s *Store) Count() int {
	return len(s.entries)
}

// Entries returns a copy of all entries ordered by origin page, then by
// first insertion.
func (s *Store) Entries() []domain.SelectionEntry {
	all := make([]entry, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].OriginPage != all[j].OriginPage {
			return all[i].OriginPage < all[j].OriginPage
		}
		return all[i].seq < all[j].seq
	})

	out := make([]domain.SelectionEntry, len(all))
	for i, e := range all {
		out[i] = e.SelectionEntry
	}
	return out
}

// Filter returns the records whose identity is selected, preserving order
func (s *Store) Filter(records []domain.Record) []domain.Record {
	var out []domain.Record
	for _, r := range records {
		if s.IsSelected(r.ID) {
			out = append(out, r)
		}
	}
	return out
}
