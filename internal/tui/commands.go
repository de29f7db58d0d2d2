package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/artpick/internal/service"
)

// Command factories for async operations

const (
	pageTimeout   = 30 * time.Second
	selectTimeout = 5 * time.Minute
)

// LoadPageCmd runs an issued page request. seq identifies the key press
// that issued it.
func LoadPageCmd(req *service.PageRequest, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageTimeout)
		defer cancel()

		snap, err := req.Run(ctx)
		return PageLoadedMsg{Seq: seq, Snapshot: snap, Err: err}
	}
}

// SelectFirstNCmd runs select-first-N, reporting progress on progress
func SelectFirstNCmd(ctrl *service.Controller, n int, progress chan<- SelectProgressMsg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), selectTimeout)
		defer cancel()

		snap, err := ctrl.SelectFirstN(ctx, n, func(collected, wanted int) {
			select {
			case progress <- SelectProgressMsg{Collected: collected, Wanted: wanted}:
			default:
			}
		})
		return SelectDoneMsg{Wanted: n, Snapshot: snap, Err: err}
	}
}

// WaitForSnapshotCmd blocks until the controller publishes a snapshot
func WaitForSnapshotCmd(ch <-chan service.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// WaitForProgressCmd blocks until select-first-N reports progress
func WaitForProgressCmd(ch <-chan SelectProgressMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status seq after a delay
func ClearStatusCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
