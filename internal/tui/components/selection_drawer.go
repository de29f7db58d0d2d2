package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/artpick/internal/domain"
	"github.com/mmcdole/artpick/internal/tui/styles"
)

// SearchFunc ranks selected entries against a query
type SearchFunc func(query string) []domain.SelectionEntry

// SelectionDrawer lists every selected record across pages, with a search
// box narrowing the list.
type SelectionDrawer struct {
	visible bool
	search  SearchFunc
	input   textinput.Model
	results []domain.SelectionEntry
	total   int
	cursor  int
	offset  int
	width   int
	height  int
}

// NewSelectionDrawer creates a drawer backed by search
func NewSelectionDrawer(search SearchFunc) SelectionDrawer {
	ti := textinput.New()
	ti.Placeholder = "Search selection..."
	ti.CharLimit = 80
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.PlaceholderStyle = styles.DimStyle

	return SelectionDrawer{
		search: search,
		input:  ti,
	}
}

// Show opens the drawer with an empty query
func (d *SelectionDrawer) Show() tea.Cmd {
	d.visible = true
	d.input.SetValue("")
	d.Refresh()
	return d.input.Focus()
}

// Hide closes the drawer
func (d *SelectionDrawer) Hide() {
	d.visible = false
	d.input.Blur()
}

// IsVisible returns whether the drawer is shown
func (d SelectionDrawer) IsVisible() bool {
	return d.visible
}

// SetSize sets the drawer dimensions
func (d *SelectionDrawer) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.input.Width = max(width-8, 10)
}

// Refresh reruns the search, keeping the query
func (d *SelectionDrawer) Refresh() {
	if d.search == nil {
		return
	}
	d.total = len(d.search(""))
	d.results = d.search(d.input.Value())
	if d.cursor >= len(d.results) {
		d.cursor = max(len(d.results)-1, 0)
	}
	d.clampOffset()
}

// Results returns the entries currently listed
func (d SelectionDrawer) Results() []domain.SelectionEntry {
	return d.results
}

// Update handles key events while the drawer is open
func (d SelectionDrawer) Update(msg tea.Msg) (SelectionDrawer, tea.Cmd) {
	if !d.visible {
		return d, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			d.Hide()
			return d, nil
		case "up", "ctrl+k":
			if d.cursor > 0 {
				d.cursor--
			}
			d.clampOffset()
			return d, nil
		case "down", "ctrl+j":
			if d.cursor < len(d.results)-1 {
				d.cursor++
			}
			d.clampOffset()
			return d, nil
		}
	}

	prev := d.input.Value()
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	if d.input.Value() != prev {
		d.cursor = 0
		d.offset = 0
		d.Refresh()
	}
	return d, cmd
}

func (d *SelectionDrawer) listHeight() int {
	// border, padding, title, input, spacer
	return max(d.height-8, 3)
}

func (d *SelectionDrawer) clampOffset() {
	h := d.listHeight()
	if d.cursor < d.offset {
		d.offset = d.cursor
	}
	if d.cursor >= d.offset+h {
		d.offset = d.cursor - h + 1
	}
}

// View renders the drawer
func (d SelectionDrawer) View() string {
	if !d.visible {
		return ""
	}

	innerWidth := max(d.width-6, 20)

	title := styles.ModalTitleStyle.Render(fmt.Sprintf("Selected · %d of %d", len(d.results), d.total))

	var rows []string
	if len(d.results) == 0 {
		rows = append(rows, styles.DimStyle.Render("Nothing matches"))
	}
	end := min(d.offset+d.listHeight(), len(d.results))
	for i := d.offset; i < end; i++ {
		e := d.results[i]
		page := styles.DimStyle.Render(fmt.Sprintf("p.%-4d", e.OriginPage))
		label := styles.Truncate(e.Label, innerWidth-8)
		line := page + " " + label
		if i == d.cursor {
			line = lipgloss.NewStyle().Foreground(styles.Accent).Render("> ") + line
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		d.input.View(),
		"",
		strings.Join(rows, "\n"),
	)

	return styles.ModalStyle.Width(innerWidth).Render(content)
}
