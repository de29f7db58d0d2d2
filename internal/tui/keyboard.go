package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.State == StateHelp {
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil
	}

	// Route to active modal if any
	if handled, newModel, cmd := m.routeToModal(msg); handled {
		return newModel, cmd
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.Table.FilterQuery() != "" {
			m.Table.ClearFilter()
		}
		return m, nil

	case key.Matches(msg, Keys.Filter):
		return m, m.Table.StartFilter()

	case key.Matches(msg, Keys.Toggle):
		if rec, ok := m.Table.Current(); ok {
			m.applySnapshot(m.Ctrl.ToggleRow(rec.ID))
		}
		return m, nil

	case key.Matches(msg, Keys.SelectPage):
		m.applySnapshot(m.Ctrl.SelectAllOnPage())
		return m, nil

	case key.Matches(msg, Keys.DeselectPage):
		m.applySnapshot(m.Ctrl.DeselectAllOnPage())
		return m, nil

	case key.Matches(msg, Keys.ClearAll):
		count := m.Snap.SelectedCount
		m.applySnapshot(m.Ctrl.ClearAll())
		return m, m.setStatus(fmt.Sprintf("Cleared %d selected", count), false)

	case key.Matches(msg, Keys.SelectFirstN):
		if m.Snap.Selecting || m.Progress.Wanted > 0 {
			return m, m.setStatus("Selection already running", true)
		}
		hint := "Records are fetched as needed"
		if m.Snap.TotalKnown() {
			hint = fmt.Sprintf("%d records available", m.Snap.TotalRecords)
		}
		return m, m.InputModal.Show("Select first N records", hint)

	case key.Matches(msg, Keys.Drawer):
		return m, m.Drawer.Show()

	case key.Matches(msg, Keys.NextPage):
		page, size := m.navTarget()
		if !m.hasPageAfter(page, size) {
			return m, nil
		}
		return m, m.navigate(page+1, size)

	case key.Matches(msg, Keys.PrevPage):
		page, size := m.navTarget()
		if page <= 1 {
			return m, nil
		}
		return m, m.navigate(page-1, size)

	case key.Matches(msg, Keys.SmallerPage, Keys.LargerPage):
		step := 1
		if key.Matches(msg, Keys.SmallerPage) {
			step = -1
		}
		_, cur := m.navTarget()
		size := m.adjacentPageSize(step)
		if size == cur {
			return m, nil
		}
		return m, m.navigate(1, size)

	case key.Matches(msg, Keys.Reload):
		page, size := m.navTarget()
		return m, m.navigate(max(page, 1), size)
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

// routeToModal sends msg to whichever overlay has focus
func (m Model) routeToModal(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case m.InputModal.IsVisible():
		var submitted bool
		m.InputModal, cmd, submitted = m.InputModal.Update(msg)
		if !submitted {
			return true, m, cmd
		}
		n, err := m.InputModal.Count()
		if err != nil {
			return true, m, m.setStatus(err.Error(), true)
		}
		m.InputModal.Hide()
		m.Progress = SelectProgressMsg{Wanted: n}
		return true, m, SelectFirstNCmd(m.Ctrl, n, m.progress)

	case m.Drawer.IsVisible():
		m.Drawer, cmd = m.Drawer.Update(msg)
		return true, m, cmd

	case m.Table.IsFiltering():
		m.Table, cmd = m.Table.Update(msg)
		return true, m, cmd
	}

	return false, m, nil
}
