package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/artpick/internal/domain"
)

// Slot names a logical fetch position. A new fetch in a slot supersedes the
// one still in flight there.
type Slot string

// SlotNavigation is the slot used by page navigation
const SlotNavigation Slot = "navigation"

// Token identifies one slotted fetch
type Token struct {
	slot Slot
	seq  uint64
}

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

// PageFetcher retrieves pages from a source, validating input, wrapping
// failures and cancelling superseded fetches.
type PageFetcher struct {
	source domain.PageSource
	logger *slog.Logger

	mu    sync.Mutex
	seq   uint64
	slots map[Slot]*inflight
}

// NewPageFetcher creates a fetcher over source
func NewPageFetcher(source domain.PageSource, logger *slog.Logger) *PageFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageFetcher{
		source: source,
		logger: logger,
		slots:  make(map[Slot]*inflight),
	}
}

// Fetch retrieves one page. Superseded or cancelled requests yield
// domain.ErrFetchCancelled; everything else that goes wrong is a
// *domain.FetchError.
func (f *PageFetcher) Fetch(ctx context.Context, pageIndex, pageSize int) (*domain.Page, error) {
	if err := validatePage(pageIndex, pageSize); err != nil {
		return nil, err
	}

	page, err := f.source.GetPage(ctx, pageIndex, pageSize)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			f.logger.Debug("fetch cancelled", "page", pageIndex, "size", pageSize)
			return nil, domain.ErrFetchCancelled
		}
		f.logger.Error("fetch failed", "page", pageIndex, "size", pageSize, "error", err)
		return nil, &domain.FetchError{Page: pageIndex, Size: pageSize, Err: err}
	}

	if page.PageIndex < 1 {
		page.PageIndex = pageIndex
	}
	if page.PageSize < 1 {
		page.PageSize = pageSize
	}
	f.logger.Debug("fetched page",
		"page", pageIndex,
		"size", pageSize,
		"records", len(page.Records),
		"total", page.TotalCount,
	)
	return page, nil
}

// FetchSlot fetches a page in slot, cancelling whatever that slot had in
// flight. The returned token can be checked with Current before the result
// is applied anywhere.
func (f *PageFetcher) FetchSlot(ctx context.Context, slot Slot, pageIndex, pageSize int) (*domain.Page, Token, error) {
	if err := validatePage(pageIndex, pageSize); err != nil {
		return nil, Token{}, err
	}
	tok := f.Begin(slot)
	page, err := f.FetchToken(ctx, tok, pageIndex, pageSize)
	return page, tok, err
}

// Begin claims slot and cancels the fetch in flight there. Claims are
// ordered by the call to Begin, so the fetch may run later on another
// goroutine without losing its place.
func (f *PageFetcher) Begin(slot Slot) Token {
	f.mu.Lock()
	defer f.mu.Unlock()

	if prev, ok := f.slots[slot]; ok && prev.cancel != nil {
		prev.cancel()
	}
	f.seq++
	f.slots[slot] = &inflight{seq: f.seq}
	return Token{slot: slot, seq: f.seq}
}

// FetchToken fetches a page for a claim made with Begin. A claim that has
// been superseded, before or during the fetch, yields
// domain.ErrFetchCancelled.
func (f *PageFetcher) FetchToken(ctx context.Context, tok Token, pageIndex, pageSize int) (*domain.Page, error) {
	ctx, ok := f.attach(ctx, tok)
	if !ok {
		return nil, domain.ErrFetchCancelled
	}
	defer f.finish(tok)

	page, err := f.Fetch(ctx, pageIndex, pageSize)
	if !f.Current(tok) {
		return nil, domain.ErrFetchCancelled
	}
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Current reports whether tok is still the latest fetch of its slot
func (f *PageFetcher) Current(tok Token) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.slots[tok.slot]
	return ok && cur.seq == tok.seq
}

// Cancel aborts whatever slot has in flight
func (f *PageFetcher) Cancel(slot Slot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.slots[slot]; ok {
		if cur.cancel != nil {
			cur.cancel()
		}
		delete(f.slots, slot)
	}
}

// attach binds a cancellable context to a current claim
func (f *PageFetcher) attach(ctx context.Context, tok Token) (context.Context, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.slots[tok.slot]
	if !ok || cur.seq != tok.seq {
		return ctx, false
	}
	ctx, cancel := context.WithCancel(ctx)
	cur.cancel = cancel
	return ctx, true
}

// finish releases the context of a completed fetch. The slot keeps its
// sequence so Current keeps answering for it.
func (f *PageFetcher) finish(tok Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.slots[tok.slot]; ok && cur.seq == tok.seq && cur.cancel != nil {
		cur.cancel()
	}
}

func validatePage(pageIndex, pageSize int) error {
	if pageIndex < 1 || pageSize < 1 {
		return fmt.Errorf("%w: page %d, page size %d", domain.ErrInvalidInput, pageIndex, pageSize)
	}
	return nil
}
