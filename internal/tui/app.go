package tui

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/artpick/internal/domain"
	"github.com/mmcdole/artpick/internal/service"
	"github.com/mmcdole/artpick/internal/tui/components"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
)

const (
	// header and footer lines around the table
	ChromeHeight = 2

	statusDelay  = 3 * time.Second
	tickInterval = 100 * time.Millisecond
)

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	Ctrl      *service.Controller
	PageSizes []int

	// Latest snapshot received from the controller
	Snap service.Snapshot

	snapshots chan service.Snapshot
	progress  chan SelectProgressMsg

	// UI Components
	Table      components.RowsTable
	InputModal components.InputModal
	Drawer     components.SelectionDrawer
	Help       help.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	statusSeq    int
	SpinnerFrame int
	Progress     SelectProgressMsg

	// Navigation issued but not yet displayed
	navSeq      int
	pendingPage int
	pendingSize int
}

// NewModel creates the application model and subscribes it to ctrl
func NewModel(ctrl *service.Controller, pageSizes []int) Model {
	snapshots := make(chan service.Snapshot, 1)
	ctrl.Subscribe(NewChannelObserver(snapshots))

	pageSizes = slices.Clone(pageSizes)
	slices.Sort(pageSizes)

	return Model{
		State:      StateBrowsing,
		Ctrl:       ctrl,
		PageSizes:  pageSizes,
		Snap:       ctrl.Snapshot(),
		snapshots:  snapshots,
		progress:   make(chan SelectProgressMsg, 1),
		Table:      components.NewRowsTable(),
		InputModal: components.NewInputModal(),
		Drawer:     components.NewSelectionDrawer(ctrl.SearchSelected),
		Help:       help.New(),
	}
}

// Init loads the first page
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadPageCmd(m.Ctrl.IssuePage(1, m.Snap.PageSize), 0),
		WaitForSnapshotCmd(m.snapshots),
		WaitForProgressCmd(m.progress),
		TickCmd(tickInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(tickInterval)

	case SnapshotMsg:
		m.applySnapshot(msg.Snapshot)
		return m, WaitForSnapshotCmd(m.snapshots)

	case PageLoadedMsg:
		if msg.Seq == m.navSeq {
			m.pendingPage, m.pendingSize = 0, 0
		}
		m.applySnapshot(msg.Snapshot)
		if msg.Err != nil && !domain.IsCancelled(msg.Err) {
			return m, m.setStatus(describeError(msg.Err), true)
		}
		return m, nil

	case SelectProgressMsg:
		if m.Snap.Selecting || m.Progress.Wanted > 0 {
			m.Progress = msg
		}
		return m, WaitForProgressCmd(m.progress)

	case SelectDoneMsg:
		m.applySnapshot(msg.Snapshot)
		m.Progress = SelectProgressMsg{}
		got := msg.Snapshot.SelectedCount
		switch {
		case msg.Err != nil && !domain.IsCancelled(msg.Err):
			return m, m.setStatus(fmt.Sprintf("Selected %d of %d: %s", got, msg.Wanted, describeError(msg.Err)), true)
		case got < msg.Wanted:
			return m, m.setStatus(fmt.Sprintf("Selected all %d records", got), false)
		default:
			return m, m.setStatus(fmt.Sprintf("Selected first %d records", got), false)
		}

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil

	}

	return m, nil
}

// applySnapshot renders snap unless a newer one is already displayed
func (m *Model) applySnapshot(snap service.Snapshot) {
	if snap.Version < m.Snap.Version {
		return
	}
	prev := m.Snap
	m.Snap = snap

	if rowsChanged(prev, snap) {
		newPage := prev.PageIndex != snap.PageIndex || prev.PageSize != snap.PageSize
		m.Table.SetRecords(snap.Rows, snap.CurrentPageSelection, newPage)
	} else {
		m.Table.SetSelected(snap.CurrentPageSelection)
	}
	if m.Drawer.IsVisible() {
		m.Drawer.Refresh()
	}
}

func rowsChanged(prev, next service.Snapshot) bool {
	if prev.PageIndex != next.PageIndex || len(prev.Rows) != len(next.Rows) {
		return true
	}
	for i := range next.Rows {
		if prev.Rows[i].ID != next.Rows[i].ID || prev.Rows[i].Title != next.Rows[i].Title {
			return true
		}
	}
	return false
}

// navigate issues a page load. The request claims its place before the
// command runs, so the latest key press wins however the loads finish.
func (m *Model) navigate(pageIndex, pageSize int) tea.Cmd {
	req := m.Ctrl.IssuePage(pageIndex, pageSize)
	m.navSeq++
	m.pendingPage, m.pendingSize = pageIndex, pageSize
	return LoadPageCmd(req, m.navSeq)
}

// navTarget returns the page the user is heading to: the last issued
// navigation while one is pending, the displayed page otherwise.
func (m Model) navTarget() (pageIndex, pageSize int) {
	if m.pendingPage > 0 {
		return m.pendingPage, m.pendingSize
	}
	return m.Snap.PageIndex, m.Snap.PageSize
}

// hasPageAfter reports whether a page follows pageIndex at pageSize
func (m Model) hasPageAfter(pageIndex, pageSize int) bool {
	switch {
	case pageIndex < 1:
		return true
	case m.Snap.TotalKnown():
		return pageIndex < domain.PageCount(m.Snap.TotalRecords, pageSize)
	case pageIndex == m.Snap.PageIndex:
		return m.Snap.HasNext()
	}
	return true
}

// setStatus shows a transient status message
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(m.statusSeq, statusDelay)
}

// adjacentPageSize returns the configured page size step positions away
// from the current one.
func (m Model) adjacentPageSize(step int) int {
	_, cur := m.navTarget()
	if len(m.PageSizes) == 0 {
		return cur
	}
	idx := -1
	for i, s := range m.PageSizes {
		if s == cur {
			idx = i
			break
		}
	}
	if idx < 0 {
		// server-imposed size, snap to the nearest configured one
		for i, s := range m.PageSizes {
			if s > cur {
				if step > 0 {
					return s
				}
				if i > 0 {
					return m.PageSizes[i-1]
				}
				return cur
			}
		}
		if step < 0 {
			return m.PageSizes[len(m.PageSizes)-1]
		}
		return cur
	}
	next := idx + step
	if next < 0 || next >= len(m.PageSizes) {
		return cur
	}
	return m.PageSizes[next]
}

func (m *Model) updateLayout() {
	m.Table.SetSize(m.Width, m.Height-ChromeHeight)
	m.Drawer.SetSize(min(m.Width-4, 72), m.Height-4)
	m.Help.Width = m.Width
}

func describeError(err error) string {
	var fe *domain.FetchError
	switch {
	case errors.As(err, &fe) && errors.Is(err, domain.ErrSourceOffline):
		return fmt.Sprintf("page %d: catalogue unreachable", fe.Page)
	case errors.As(err, &fe):
		return fmt.Sprintf("page %d: %v", fe.Page, fe.Err)
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid request"
	}
	return err.Error()
}
