package domain

// ProgressFunc reports cross-page selection progress to the TUI.
// Called once per fetched page: (12, 40), (24, 40), ...
type ProgressFunc func(collected, wanted int)
