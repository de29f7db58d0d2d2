package tui

import "github.com/mmcdole/artpick/internal/service"

// Message types for the TUI

// SnapshotMsg carries a snapshot published by the controller
type SnapshotMsg struct {
	Snapshot service.Snapshot
}

// PageLoadedMsg signals that a navigation command finished
type PageLoadedMsg struct {
	Seq      int
	Snapshot service.Snapshot
	Err      error
}

// SelectProgressMsg reports progress of a running select-first-N
type SelectProgressMsg struct {
	Collected int
	Wanted    int
}

// SelectDoneMsg signals that select-first-N finished
type SelectDoneMsg struct {
	Wanted   int
	Snapshot service.Snapshot
	Err      error
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct {
	Seq int
}
