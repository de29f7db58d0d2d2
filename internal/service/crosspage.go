package service

import (
	"context"
	"fmt"

	"github.com/mmcdole/artpick/internal/domain"
)

// SelectFirstN makes the selection exactly the first n records of the
// dataset, fetching pages the session has not seen yet.
//
// Candidates start from the accumulator in first-seen order, which follows
// page order unless the user jumped around before; that approximation is
// accepted. Pages are fetched one at a time until n candidates exist or the
// live total says the dataset is exhausted. A failed fetch stops the walk:
// the partial result is still applied and the *domain.FetchError returned.
// The store is replaced wholesale, so repeated calls are not additive.
func (c *Controller) SelectFirstN(ctx context.Context, n int, onProgress domain.ProgressFunc) (Snapshot, error) {
	if n <= 0 {
		return c.Snapshot(), fmt.Errorf("%w: count must be at least 1, got %d", domain.ErrInvalidInput, n)
	}

	c.mu.Lock()
	pageSize := c.pageSize
	c.mu.Unlock()

	candidates, err := c.records.Records()
	if err != nil {
		c.logger.Error("failed to read accumulated records", "error", err)
		return c.Snapshot(), err
	}

	c.apply(func() error {
		c.selecting = true
		return nil
	})

	seen := make(map[domain.ID]struct{}, len(candidates))
	for _, r := range candidates {
		seen[r.ID] = struct{}{}
	}

	next := len(candidates)/pageSize + 1
	served := pageSize // the limit the source actually applies
	fetches := 0
	var fetchErr error
	for len(candidates) < n && !c.exhausted(len(candidates), next, served) {
		page, err := c.fetcher.Fetch(ctx, next, pageSize)
		if err != nil {
			fetchErr = err
			break
		}
		fetches++
		served = page.PageSize
		c.absorb(page)

		for _, r := range page.Records {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			candidates = append(candidates, r)
		}
		if onProgress != nil {
			onProgress(min(len(candidates), n), n)
		}

		// A short page is the last one, whatever the total claims
		if len(page.Records) < served {
			break
		}
		next++
	}

	take := candidates[:min(n, len(candidates))]
	snap, _ := c.apply(func() error {
		c.selection.Clear()
		for i, r := range take {
			c.selection.Select([]domain.Record{r}, i/pageSize+1)
		}
		c.selecting = false
		if fetchErr != nil && !domain.IsCancelled(fetchErr) {
			c.lastErr = fetchErr
		}
		return nil
	})

	c.logger.Info("selected first records",
		"requested", n,
		"selected", len(take),
		"fetches", fetches,
		"partial", fetchErr != nil,
	)
	return snap, fetchErr
}

// exhausted reports whether no more records can be fetched. It reads the
// live total, which navigation may have updated while we were waiting.
func (c *Controller) exhausted(collected, nextPage, pageSize int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.total < 0 {
		return false
	}
	return collected >= c.total || nextPage > domain.PageCount(c.total, pageSize)
}

// absorb merges a page fetched outside navigation into the accumulator and
// refreshes the total count.
func (c *Controller) absorb(page *domain.Page) {
	if _, err := c.records.Merge(page.Records); err != nil {
		c.logger.Warn("failed to accumulate page", "page", page.PageIndex, "error", err)
	}
	c.mu.Lock()
	if page.TotalKnown() {
		c.total = page.TotalCount
	}
	c.mu.Unlock()
}
