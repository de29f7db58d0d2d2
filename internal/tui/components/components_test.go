package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/artpick/internal/domain"
)

func typeText(m InputModal, s string) InputModal {
	for _, r := range s {
		m, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestInputModal_Count(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"25", 25, false},
		{"1", 1, false},
		{"0", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := NewInputModal()
			m.Show("Select", "")
			m = typeText(m, tt.input)

			n, err := m.Count()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestInputModal_SubmitAndCancel(t *testing.T) {
	m := NewInputModal()
	m.Show("Select", "")

	_, _, submitted := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, submitted)

	m, _, submitted = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, submitted)
	assert.False(t, m.IsVisible())
}

func TestRowsTable_Checkboxes(t *testing.T) {
	title := "Nighthawks"
	origin := "United States"
	start := 1942
	records := []domain.Record{
		{ID: "1", Title: title, Details: domain.Details{PlaceOfOrigin: &origin, DateStart: &start}},
		{ID: "2"},
	}

	tbl := NewRowsTable()
	tbl.SetSize(100, 10)
	tbl.SetRecords(records, records[:1], true)

	view := tbl.View()
	assert.Contains(t, view, "[x]")
	assert.Contains(t, view, "[ ]")
	assert.Contains(t, view, "Nighthawks")
	assert.Contains(t, view, "1942")

	tbl.SetSelected(nil)
	assert.NotContains(t, tbl.View(), "[x]")
}

func TestRowsTable_NewPageResetsCursorAndFilter(t *testing.T) {
	tbl := NewRowsTable()
	tbl.SetSize(100, 10)
	tbl.SetRecords([]domain.Record{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}}, nil, true)
	tbl, _ = tbl.Update(tea.KeyMsg{Type: tea.KeyDown})

	cur, ok := tbl.Current()
	require.True(t, ok)
	assert.Equal(t, domain.ID("2"), cur.ID)

	tbl.SetRecords([]domain.Record{{ID: "3", Title: "c"}}, nil, true)
	cur, ok = tbl.Current()
	require.True(t, ok)
	assert.Equal(t, domain.ID("3"), cur.ID)
	assert.Empty(t, tbl.FilterQuery())
}

func TestRowsTable_CursorOnFirstRowAfterFirstLoad(t *testing.T) {
	tbl := NewRowsTable()
	tbl.SetSize(100, 10)

	_, ok := tbl.Current()
	assert.False(t, ok, "nothing to point at yet")

	tbl.SetRecords([]domain.Record{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}}, nil, true)
	cur, ok := tbl.Current()
	require.True(t, ok)
	assert.Equal(t, domain.ID("1"), cur.ID)

	// same page refreshed after an empty result
	tbl.SetRecords(nil, nil, false)
	tbl.SetRecords([]domain.Record{{ID: "1", Title: "a"}}, nil, false)
	cur, ok = tbl.Current()
	require.True(t, ok)
	assert.Equal(t, domain.ID("1"), cur.ID)
}

func TestSelectionDrawer_Search(t *testing.T) {
	entries := []domain.SelectionEntry{
		{ID: "1", Label: "Nighthawks", OriginPage: 1},
		{ID: "2", Label: "American Gothic", OriginPage: 2},
	}
	search := func(q string) []domain.SelectionEntry {
		if q == "" {
			return entries
		}
		return entries[1:]
	}

	d := NewSelectionDrawer(search)
	d.SetSize(60, 20)
	d.Show()
	assert.Len(t, d.Results(), 2)
	assert.Contains(t, d.View(), "p.1")

	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.Equal(t, entries[1:], d.Results())
	assert.Contains(t, d.View(), "1 of 2")
}
