package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/artpick/internal/domain"
	"github.com/mmcdole/artpick/internal/tui/styles"
)

const (
	checkWidth = 3
	dateWidth  = 6
	minTitle   = 16
)

// RowsTable renders the displayed page with a checkbox column and an
// optional fuzzy filter over the visible rows.
type RowsTable struct {
	table    table.Model
	records  []domain.Record
	selected map[domain.ID]bool

	filterInput  textinput.Model
	filterActive bool // input focused
	filterQuery  string
	visible      []int // indices into records, nil when unfiltered

	width int
}

// NewRowsTable creates an empty table
func NewRowsTable() RowsTable {
	km := table.DefaultKeyMap()
	// space, d, u, f and b belong to the application
	km.PageUp = key.NewBinding(key.WithKeys("pgup"))
	km.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	km.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))
	km.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithKeyMap(km),
		table.WithHeight(10),
	)
	t.SetStyles(table.Styles{
		Header:   styles.TableHeaderStyle,
		Cell:     styles.TableCellStyle,
		Selected: styles.TableSelectedStyle,
	})

	fi := textinput.New()
	fi.Placeholder = "Filter page..."
	fi.CharLimit = 80
	fi.Prompt = "/ "
	fi.PromptStyle = styles.FilterPromptStyle
	fi.PlaceholderStyle = styles.DimStyle

	return RowsTable{
		table:       t,
		selected:    make(map[domain.ID]bool),
		filterInput: fi,
		width:       80,
	}
}

// columns splits width between the title, origin and artist columns
func columns(width int) []table.Column {
	// cell padding is one column on each side
	fixed := checkWidth + 2*dateWidth + 5*2
	flex := max(width-fixed, 3*minTitle)
	title := flex * 45 / 100
	origin := flex * 20 / 100
	artist := flex - title - origin
	return []table.Column{
		{Title: "", Width: checkWidth},
		{Title: "Title", Width: title},
		{Title: "Origin", Width: origin},
		{Title: "Artist", Width: artist},
		{Title: "Start", Width: dateWidth},
		{Title: "End", Width: dateWidth},
	}
}

// SetSize sets the table dimensions
func (t *RowsTable) SetSize(width, height int) {
	t.width = width
	t.filterInput.Width = max(width-4, 10)
	t.table.SetColumns(columns(width))
	t.table.SetWidth(width)
	if t.filterActive || t.filterQuery != "" {
		height--
	}
	t.table.SetHeight(max(height, 3))
	t.rebuild()
}

// SetRecords replaces the rows. The cursor moves to the top when the
// records belong to a different page.
func (t *RowsTable) SetRecords(records []domain.Record, selected []domain.Record, newPage bool) {
	t.records = records
	t.selected = make(map[domain.ID]bool, len(selected))
	for _, r := range selected {
		t.selected[r.ID] = true
	}
	if newPage {
		t.clearFilter()
	}
	t.applyFilter()
	if newPage {
		t.table.SetCursor(0)
	}
}

// SetSelected refreshes the checkbox column
func (t *RowsTable) SetSelected(selected []domain.Record) {
	t.selected = make(map[domain.ID]bool, len(selected))
	for _, r := range selected {
		t.selected[r.ID] = true
	}
	t.rebuild()
}

// Current returns the record under the cursor
func (t RowsTable) Current() (domain.Record, bool) {
	idx := t.visibleIndices()
	c := t.table.Cursor()
	if c < 0 || c >= len(idx) {
		return domain.Record{}, false
	}
	return t.records[idx[c]], true
}

// VisibleRecords returns the rows that pass the filter
func (t RowsTable) VisibleRecords() []domain.Record {
	idx := t.visibleIndices()
	out := make([]domain.Record, len(idx))
	for i, j := range idx {
		out[i] = t.records[j]
	}
	return out
}

// IsFiltering reports whether the filter input has focus
func (t RowsTable) IsFiltering() bool {
	return t.filterActive
}

// FilterQuery returns the applied filter
func (t RowsTable) FilterQuery() string {
	return t.filterQuery
}

// StartFilter focuses the filter input
func (t *RowsTable) StartFilter() tea.Cmd {
	t.filterActive = true
	t.table.Blur()
	return t.filterInput.Focus()
}

// ClearFilter drops the filter and shows every row
func (t *RowsTable) ClearFilter() {
	t.clearFilter()
	t.rebuild()
}

func (t *RowsTable) clearFilter() {
	t.filterActive = false
	t.filterQuery = ""
	t.visible = nil
	t.filterInput.SetValue("")
	t.filterInput.Blur()
	t.table.Focus()
}

// Update routes a message to the filter input while it has focus and to
// the table otherwise.
func (t RowsTable) Update(msg tea.Msg) (RowsTable, tea.Cmd) {
	if t.filterActive {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				t.ClearFilter()
				return t, nil
			case "enter":
				t.filterActive = false
				t.filterInput.Blur()
				t.table.Focus()
				return t, nil
			}
		}
		var cmd tea.Cmd
		t.filterInput, cmd = t.filterInput.Update(msg)
		if t.filterInput.Value() != t.filterQuery {
			t.applyFilter()
			t.table.SetCursor(0)
		}
		return t, cmd
	}

	var cmd tea.Cmd
	t.table, cmd = t.table.Update(msg)
	return t, cmd
}

func (t *RowsTable) applyFilter() {
	query := t.filterInput.Value()
	t.filterQuery = query

	if query == "" {
		t.visible = nil
		t.rebuild()
		return
	}

	titles := make([]string, len(t.records))
	for i, r := range t.records {
		titles[i] = strings.ToLower(r.Label())
	}
	matches := fuzzy.Find(strings.ToLower(query), titles)

	t.visible = make([]int, len(matches))
	for i, match := range matches {
		t.visible[i] = match.Index
	}
	t.rebuild()
}

func (t RowsTable) visibleIndices() []int {
	if t.visible != nil {
		return t.visible
	}
	idx := make([]int, len(t.records))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func (t *RowsTable) rebuild() {
	idx := t.visibleIndices()
	rows := make([]table.Row, len(idx))
	for i, j := range idx {
		r := t.records[j]
		check := styles.UncheckedChar
		if t.selected[r.ID] {
			check = styles.CheckedChar
		}
		rows[i] = table.Row{
			check,
			r.Label(),
			deref(r.Details.PlaceOfOrigin),
			firstLine(deref(r.Details.ArtistDisplay)),
			year(r.Details.DateStart),
			year(r.Details.DateEnd),
		}
	}
	t.table.SetRows(rows)
	// an empty table leaves the cursor at -1
	switch c := t.table.Cursor(); {
	case len(rows) == 0:
	case c < 0:
		t.table.SetCursor(0)
	case c >= len(rows):
		t.table.SetCursor(len(rows) - 1)
	}
}

// View renders the filter line (when present) above the table
func (t RowsTable) View() string {
	if t.filterActive || t.filterQuery != "" {
		return t.filterInput.View() + "\n" + t.table.View()
	}
	return t.table.View()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func year(y *int) string {
	if y == nil {
		return ""
	}
	return strconv.Itoa(*y)
}
