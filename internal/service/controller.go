package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/artpick/internal/domain"
	"github.com/mmcdole/artpick/internal/selection"
	"github.com/mmcdole/artpick/internal/store"
)

// Controller owns the session: the displayed page, the accumulator and the
// selection store. All mutations go through it and are published as
// snapshots. It is safe for concurrent use; concurrent edits resolve
// last-writer-wins.
type Controller struct {
	fetcher *PageFetcher
	records *store.RecordStore
	logger  *slog.Logger

	mu          sync.Mutex
	selection   *selection.Store
	rows        []domain.Record
	pageIndex   int
	pageSize    int
	total       int
	loading     bool
	loadingPage int
	selecting   bool
	lastErr     error
	version     uint64

	observers map[int]Observer
	nextObsID int
}

// NewController creates a controller with empty stores
func NewController(fetcher *PageFetcher, records *store.RecordStore, pageSize int, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize < 1 {
		pageSize = 12
	}
	return &Controller{
		fetcher:   fetcher,
		records:   records,
		logger:    logger,
		selection: selection.New(),
		pageSize:  pageSize,
		total:     domain.UnknownTotal,
		observers: make(map[int]Observer),
	}
}

// Subscribe registers o for snapshots and returns a function removing it
func (c *Controller) Subscribe(o Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = o
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// PageRequest is a navigation that has been issued but not yet fetched.
// Of all requests issued on a controller only the most recently issued one
// may change the displayed page, whatever order they complete in.
type PageRequest struct {
	c   *Controller
	tok Token
	err error

	PageIndex int
	PageSize  int
}

// IssuePage claims the navigation slot for pageIndex with pageSize. Any
// earlier request is superseded at once, even if it has not started yet.
// Invalid input claims nothing and fails when run.
func (c *Controller) IssuePage(pageIndex, pageSize int) *PageRequest {
	req := &PageRequest{c: c, PageIndex: pageIndex, PageSize: pageSize}
	if err := validatePage(pageIndex, pageSize); err != nil {
		req.err = err
		return req
	}
	req.tok = c.fetcher.Begin(SlotNavigation)
	return req
}

// ChangePage loads pageIndex with pageSize and makes it the displayed page.
// It is IssuePage followed by Run.
func (c *Controller) ChangePage(ctx context.Context, pageIndex, pageSize int) (Snapshot, error) {
	return c.IssuePage(pageIndex, pageSize).Run(ctx)
}

// Run fetches the requested page and displays it.
//
// Loading is published before the fetch starts. A request superseded by a
// later one returns domain.ErrFetchCancelled and leaves every piece of
// state alone. A failed fetch keeps the previous rows, clears loading and
// records the error in the snapshot.
func (r *PageRequest) Run(ctx context.Context) (Snapshot, error) {
	c := r.c
	if r.err != nil {
		return c.Snapshot(), r.err
	}
	pageIndex, pageSize, tok := r.PageIndex, r.PageSize, r.tok

	if snap, err := c.apply(func() error {
		if !c.fetcher.Current(tok) {
			return domain.ErrFetchCancelled
		}
		c.loading = true
		c.loadingPage = pageIndex
		return nil
	}); err != nil {
		return snap, err
	}

	page, err := c.fetcher.FetchToken(ctx, tok, pageIndex, pageSize)
	if domain.IsCancelled(err) {
		// The caller gave up without a newer fetch taking over
		snap, _ := c.apply(func() error {
			if !c.fetcher.Current(tok) {
				return domain.ErrFetchCancelled
			}
			c.loading = false
			c.loadingPage = 0
			return nil
		})
		return snap, err
	}

	return c.apply(func() error {
		if !c.fetcher.Current(tok) {
			return domain.ErrFetchCancelled
		}
		c.loading = false
		c.loadingPage = 0

		if err != nil {
			c.lastErr = err
			return err
		}

		c.rows = page.Records
		c.pageIndex = pageIndex
		c.total = page.TotalCount
		c.lastErr = nil
		if page.PageSize != pageSize {
			c.logger.Info("source changed page size", "requested", pageSize, "applied", page.PageSize)
		}
		c.pageSize = page.PageSize

		if _, mergeErr := c.records.Merge(page.Records); mergeErr != nil {
			c.logger.Warn("failed to accumulate page", "page", pageIndex, "error", mergeErr)
		}
		c.logger.Debug("page displayed",
			"page", pageIndex,
			"rows", len(page.Records),
			"selectedOnPage", len(c.selection.Filter(c.rows)),
		)
		return nil
	})
}

// NextPage moves to the page after the displayed one. It is a no-op on the
// last page.
func (c *Controller) NextPage(ctx context.Context) (Snapshot, error) {
	snap := c.Snapshot()
	if snap.PageIndex > 0 && !snap.HasNext() {
		return snap, nil
	}
	return c.ChangePage(ctx, snap.PageIndex+1, snap.PageSize)
}

// PrevPage moves to the page before the displayed one. It is a no-op on the
// first page.
func (c *Controller) PrevPage(ctx context.Context) (Snapshot, error) {
	snap := c.Snapshot()
	if !snap.HasPrev() {
		return snap, nil
	}
	return c.ChangePage(ctx, snap.PageIndex-1, snap.PageSize)
}

// SetPageSize switches to pageSize and goes back to the first page
func (c *Controller) SetPageSize(ctx context.Context, pageSize int) (Snapshot, error) {
	return c.ChangePage(ctx, 1, pageSize)
}

// Reload fetches the displayed page again, or the first page if nothing
// has been displayed yet.
func (c *Controller) Reload(ctx context.Context) (Snapshot, error) {
	snap := c.Snapshot()
	return c.ChangePage(ctx, max(snap.PageIndex, 1), snap.PageSize)
}

// CurrentPageSelection returns the displayed rows that are selected
func (c *Controller) CurrentPageSelection() []domain.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Filter(c.rows)
}

// EditSelection applies a user edit carrying the new full selection of the
// displayed page. Only the difference against the previous page selection
// is written, so entries from other pages are never touched. Records not on
// the displayed page are ignored.
func (c *Controller) EditSelection(newVisible []domain.Record) Snapshot {
	snap, _ := c.apply(func() error {
		want := make(map[domain.ID]struct{}, len(newVisible))
		for _, r := range newVisible {
			want[r.ID] = struct{}{}
		}
		c.applyDeltaLocked(want)
		return nil
	})
	return snap
}

// ToggleRow flips the selection of one displayed row
func (c *Controller) ToggleRow(id domain.ID) Snapshot {
	snap, _ := c.apply(func() error {
		want := make(map[domain.ID]struct{})
		for _, r := range c.selection.Filter(c.rows) {
			want[r.ID] = struct{}{}
		}
		if _, ok := want[id]; ok {
			delete(want, id)
		} else {
			want[id] = struct{}{}
		}
		c.applyDeltaLocked(want)
		return nil
	})
	return snap
}

// SelectAllOnPage selects every displayed row
func (c *Controller) SelectAllOnPage() Snapshot {
	snap, _ := c.apply(func() error {
		added := c.selection.Select(c.rows, c.pageIndex)
		c.logger.Debug("selected page", "page", c.pageIndex, "added", added)
		return nil
	})
	return snap
}

// DeselectAllOnPage removes every displayed row from the selection
func (c *Controller) DeselectAllOnPage() Snapshot {
	snap, _ := c.apply(func() error {
		removed := c.selection.Deselect(c.rows)
		c.logger.Debug("deselected page", "page", c.pageIndex, "removed", removed)
		return nil
	})
	return snap
}

// ClearAll empties the selection on every page
func (c *Controller) ClearAll() Snapshot {
	snap, _ := c.apply(func() error {
		c.logger.Debug("cleared selection", "count", c.selection.Count())
		c.selection.Clear()
		return nil
	})
	return snap
}

// IsSelected reports whether id is selected on any page
func (c *Controller) IsSelected(id domain.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.IsSelected(id)
}

// SelectedCount returns the total selected across all pages
func (c *Controller) SelectedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Count()
}

// Close cancels in-flight navigation
func (c *Controller) Close() {
	c.fetcher.Cancel(SlotNavigation)
}

// applyDeltaLocked diffs want against the current page selection and
// applies select(added) then deselect(removed).
func (c *Controller) applyDeltaLocked(want map[domain.ID]struct{}) {
	var added, removed []domain.Record
	for _, r := range c.rows {
		_, wanted := want[r.ID]
		was := c.selection.IsSelected(r.ID)
		switch {
		case wanted && !was:
			added = append(added, r)
		case !wanted && was:
			removed = append(removed, r)
		}
	}
	c.selection.Select(added, c.pageIndex)
	c.selection.Deselect(removed)
	if len(added) > 0 || len(removed) > 0 {
		c.logger.Debug("selection edited", "page", c.pageIndex, "added", len(added), "removed", len(removed))
	}
}

// apply runs fn under the lock and publishes the resulting state, unless fn
// reports domain.ErrFetchCancelled, in which case nothing changed.
func (c *Controller) apply(fn func() error) (Snapshot, error) {
	c.mu.Lock()
	err := fn()
	if domain.IsCancelled(err) {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}

	c.version++
	snap := c.snapshotLocked()
	observers := make([]Observer, 0, len(c.observers))
	for _, o := range c.observers {
		observers = append(observers, o)
	}
	c.mu.Unlock()

	for _, o := range observers {
		o.OnSnapshot(snap)
	}
	return snap, err
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Version:              c.version,
		Rows:                 c.rows,
		PageIndex:            c.pageIndex,
		PageSize:             c.pageSize,
		TotalRecords:         c.total,
		PageCount:            domain.PageCount(c.total, c.pageSize),
		Loading:              c.loading,
		LoadingPage:          c.loadingPage,
		Selecting:            c.selecting,
		CurrentPageSelection: c.selection.Filter(c.rows),
		SelectedCount:        c.selection.Count(),
		Selected:             c.selection.Entries(),
		Err:                  c.lastErr,
	}
}
