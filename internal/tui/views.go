package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/artpick/internal/service"
	"github.com/mmcdole/artpick/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.Table.View(),
		m.renderFooter(),
	)

	if m.InputModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.InputModal.View())
	}

	if m.Drawer.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.Drawer.View())
	}

	return view
}

// PageIndicator renders "page X/Y · N records"
func PageIndicator(s service.Snapshot) string {
	if s.PageIndex < 1 {
		return "no page loaded"
	}
	if !s.TotalKnown() {
		return fmt.Sprintf("page %d · %d per page", s.PageIndex, s.PageSize)
	}
	return fmt.Sprintf("page %d/%d · %d records", s.PageIndex, max(s.PageCount, 1), s.TotalRecords)
}

// renderHeader renders the title, page indicator and selection badge
func (m Model) renderHeader() string {
	left := styles.TitleStyle.Render("Artworks") + "  " + styles.DimStyle.Render(PageIndicator(m.Snap))

	var right string
	if m.Snap.Selecting {
		progress := "selecting..."
		if m.Progress.Wanted > 0 {
			progress = fmt.Sprintf("selecting %d/%d", m.Progress.Collected, m.Progress.Wanted)
		}
		right = styles.RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render(progress) + " "
	}
	badge := styles.DimBadgeStyle
	if m.Snap.SelectedCount > 0 {
		badge = styles.BadgeStyle
	}
	right += badge.Render(fmt.Sprintf("%d selected", m.Snap.SelectedCount))

	return styles.Spread(left, right, m.Width)
}

// renderFooter renders a single-line footer: status on the left and key
// hints on the right.
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.Snap.Loading:
		left = styles.RenderSpinner(m.SpinnerFrame) + " " +
			styles.DimStyle.Render(fmt.Sprintf("Loading page %d...", m.Snap.LoadingPage))
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.SuccessStyle.Render(m.StatusMsg)
	case m.Snap.Err != nil:
		left = styles.ErrorStyle.Render(describeError(m.Snap.Err))
	case m.Table.FilterQuery() != "":
		left = styles.DimStyle.Render(fmt.Sprintf("%d of %d rows match", len(m.Table.VisibleRecords()), len(m.Snap.Rows)))
	}

	h := m.Help
	h.Width = max(m.Width-lipgloss.Width(left)-2, 0)
	return styles.Spread(left, h.View(Keys), m.Width)
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	h := m.Help
	h.ShowAll = true

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render("Keys"),
		h.View(Keys),
		"",
		styles.DimStyle.Render("Press ? or esc to return"),
	)

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(content))
}
