package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmcdole/artpick/internal/adapter"
	"github.com/mmcdole/artpick/internal/domain"
	"github.com/mmcdole/artpick/internal/store"
)

var errSourceDown = errors.New("source down")

// fakeSource serves a dataset of numbered artworks
type fakeSource struct {
	mu        sync.Mutex
	total     int
	maxLimit  int  // server-side cap on limit, 0 for none
	failFrom  int  // pages >= failFrom fail, 0 for never
	hideTotal bool // omit the total count
	calls     []int
	gates     map[int]chan struct{}
	started   chan int
}

func newFakeSource(total int) *fakeSource {
	return &fakeSource{
		total:   total,
		gates:   make(map[int]chan struct{}),
		started: make(chan int, 64),
	}
}

// block makes requests for page wait until the returned func is called
func (f *fakeSource) block(page int) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[page] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeSource) GetPage(ctx context.Context, pageIndex, limit int) (*domain.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pageIndex)
	gate := f.gates[pageIndex]
	failFrom, maxLimit, total, hide := f.failFrom, f.maxLimit, f.total, f.hideTotal
	f.mu.Unlock()

	select {
	case f.started <- pageIndex:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failFrom > 0 && pageIndex >= failFrom {
		return nil, errSourceDown
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	start := (pageIndex - 1) * limit
	recs := make([]domain.Record, 0, limit)
	for i := start; i < start+limit && i < total; i++ {
		recs = append(recs, artwork(i+1))
	}
	if hide {
		total = domain.UnknownTotal
	}
	return &domain.Page{Records: recs, TotalCount: total, PageSize: limit, PageIndex: pageIndex}, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSource) pagesRequested() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.calls...)
}

func artwork(n int) domain.Record {
	return domain.Record{ID: domain.IntID(int64(n)), Title: fmt.Sprintf("Artwork %d", n)}
}

func newTestController(t *testing.T, src domain.PageSource, pageSize int) *Controller {
	t.Helper()
	records, err := store.NewRecordStore("", "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = records.Close() })

	logger := adapter.NullLogger()
	c := NewController(NewPageFetcher(src, logger), records, pageSize, logger)
	t.Cleanup(c.Close)
	return c
}

func ids(records []domain.Record) []domain.ID {
	out := make([]domain.ID, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func entryIDs(entries []domain.SelectionEntry) []domain.ID {
	out := make([]domain.ID, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
