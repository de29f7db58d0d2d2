package service

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/artpick/internal/domain"
)

// SearchSelected returns the selected entries whose label fuzzy-matches
// query, best match first. An empty query returns every entry in store
// order.
func (c *Controller) SearchSelected(query string) []domain.SelectionEntry {
	c.mu.Lock()
	entries := c.selection.Entries()
	c.mu.Unlock()
	return rankEntries(entries, query)
}

func rankEntries(entries []domain.SelectionEntry, query string) []domain.SelectionEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}

	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}

	matches := fuzzy.RankFindFold(query, labels)
	sort.SliceStable(matches, func(i, j int) bool {
		si, sj := matchScore(query, matches[i]), matchScore(query, matches[j])
		if si != sj {
			return si < sj
		}
		return matches[i].OriginalIndex < matches[j].OriginalIndex
	})

	results := make([]domain.SelectionEntry, 0, len(matches))
	for _, m := range matches {
		results = append(results, entries[m.OriginalIndex])
	}
	return results
}

// matchScore orders matches: exact, then prefix, then substring, then by
// fuzzy distance. Lower is better.
func matchScore(query string, m fuzzy.Rank) int {
	label := strings.ToLower(m.Target)
	q := strings.ToLower(query)
	switch {
	case label == q:
		return 0
	case strings.HasPrefix(label, q):
		return 1
	case strings.Contains(label, q):
		return 2
	}
	return 3 + m.Distance
}
