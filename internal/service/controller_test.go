package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/artpick/internal/domain"
)

func TestController_ChangePage(t *testing.T) {
	c := newTestController(t, newFakeSource(50), 12)

	snap, err := c.ChangePage(context.Background(), 2, 12)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.PageIndex)
	assert.Equal(t, 12, snap.PageSize)
	assert.Equal(t, 50, snap.TotalRecords)
	assert.Equal(t, 5, snap.PageCount)
	assert.Len(t, snap.Rows, 12)
	assert.Equal(t, domain.ID("13"), snap.Rows[0].ID)
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Err)
	assert.Equal(t, 12, snap.FirstRow())
	assert.True(t, snap.HasNext())
	assert.True(t, snap.HasPrev())
}

func TestController_ChangePageRejectsInvalidInput(t *testing.T) {
	src := newFakeSource(50)
	c := newTestController(t, src, 12)

	_, err := c.ChangePage(context.Background(), 0, 12)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = c.ChangePage(context.Background(), 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Zero(t, src.callCount())
	assert.Zero(t, c.Snapshot().Version)
}

func TestController_FailedNavigationKeepsRows(t *testing.T) {
	src := newFakeSource(50)
	src.failFrom = 2
	c := newTestController(t, src, 12)

	_, err := c.ChangePage(context.Background(), 1, 12)
	require.NoError(t, err)
	c.ToggleRow("3")

	snap, err := c.ChangePage(context.Background(), 2, 12)

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 2, fe.Page)
	assert.Equal(t, 1, snap.PageIndex)
	assert.Equal(t, domain.ID("1"), snap.Rows[0].ID)
	assert.False(t, snap.Loading)
	assert.ErrorIs(t, snap.Err, errSourceDown)
	assert.Equal(t, 1, snap.SelectedCount)

	// the next successful load clears the error
	snap, err = c.ChangePage(context.Background(), 1, 12)
	require.NoError(t, err)
	assert.NoError(t, snap.Err)
}

func TestController_SupersededNavigationIsDropped(t *testing.T) {
	src := newFakeSource(50)
	release := src.block(2)
	defer release()
	c := newTestController(t, src, 12)

	done := make(chan error, 1)
	go func() {
		_, err := c.ChangePage(context.Background(), 2, 12)
		done <- err
	}()
	waitStarted(t, src, 2)
	assert.True(t, c.Snapshot().Loading)
	assert.Equal(t, 2, c.Snapshot().LoadingPage)

	snap, err := c.ChangePage(context.Background(), 3, 12)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.PageIndex)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrFetchCancelled)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded navigation did not return")
	}

	final := c.Snapshot()
	assert.Equal(t, 3, final.PageIndex)
	assert.Equal(t, domain.ID("25"), final.Rows[0].ID)
	assert.False(t, final.Loading)
	assert.NoError(t, final.Err)
}

func TestController_IssueOrderDecidesNavigation(t *testing.T) {
	src := newFakeSource(50)
	c := newTestController(t, src, 12)
	ctx := context.Background()

	older := c.IssuePage(2, 12)
	newer := c.IssuePage(3, 12)

	snap, err := newer.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.PageIndex)

	version := c.Snapshot().Version
	_, err = older.Run(ctx)
	assert.ErrorIs(t, err, domain.ErrFetchCancelled)

	final := c.Snapshot()
	assert.Equal(t, 3, final.PageIndex)
	assert.False(t, final.Loading)
	assert.Equal(t, version, final.Version, "a superseded request publishes nothing")
	assert.Equal(t, []int{3}, src.pagesRequested())
}

func TestController_IssuePageRejectsInvalidInput(t *testing.T) {
	src := newFakeSource(50)
	c := newTestController(t, src, 12)

	pending := c.IssuePage(1, 12)
	_, err := c.IssuePage(0, 12).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	snap, err := pending.Run(context.Background())
	require.NoError(t, err, "invalid input does not supersede")
	assert.Equal(t, 1, snap.PageIndex)
}

func TestController_CallerCancelClearsLoading(t *testing.T) {
	c := newTestController(t, newFakeSource(50), 12)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ChangePage(ctx, 1, 12)
	assert.ErrorIs(t, err, domain.ErrFetchCancelled)

	snap := c.Snapshot()
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Err)
	assert.Empty(t, snap.Rows)
}

func TestController_AdoptsServerPageSize(t *testing.T) {
	src := newFakeSource(50)
	src.maxLimit = 10
	c := newTestController(t, src, 12)

	snap, err := c.ChangePage(context.Background(), 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.PageSize)
	assert.Len(t, snap.Rows, 10)
	assert.Equal(t, 5, snap.PageCount)

	snap, err = c.NextPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.PageIndex)
	assert.Equal(t, domain.ID("11"), snap.Rows[0].ID)
}

func TestController_NavigationHelpers(t *testing.T) {
	src := newFakeSource(30)
	c := newTestController(t, src, 12)

	snap, err := c.NextPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.PageIndex)

	snap, err = c.PrevPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.PageIndex, "no page before the first")

	_, err = c.NextPage(context.Background())
	require.NoError(t, err)
	snap, err = c.NextPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.PageIndex)
	assert.Len(t, snap.Rows, 6)
	assert.False(t, snap.HasNext())

	calls := src.callCount()
	snap, err = c.NextPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.PageIndex)
	assert.Equal(t, calls, src.callCount(), "no fetch past the last page")

	snap, err = c.PrevPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.PageIndex)

	snap, err = c.SetPageSize(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.PageIndex)
	assert.Equal(t, 24, snap.PageSize)
	assert.Equal(t, 2, snap.PageCount)

	snap, err = c.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.PageIndex)
	assert.Equal(t, []int{1, 2, 3, 2, 1, 1}, src.pagesRequested())
}

func TestController_DeltaAcrossPages(t *testing.T) {
	c := newTestController(t, newFakeSource(50), 12)
	ctx := context.Background()

	_, err := c.ChangePage(ctx, 1, 12)
	require.NoError(t, err)
	c.EditSelection([]domain.Record{artwork(1), artwork(2)})

	_, err = c.ChangePage(ctx, 2, 12)
	require.NoError(t, err)
	snap := c.Snapshot()
	assert.Empty(t, snap.CurrentPageSelection)
	snap = c.EditSelection([]domain.Record{artwork(13)})
	assert.Equal(t, 3, snap.SelectedCount)

	snap, err = c.ChangePage(ctx, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, []domain.ID{"1", "2"}, ids(snap.CurrentPageSelection))

	snap = c.EditSelection([]domain.Record{artwork(1)})
	assert.Equal(t, 2, snap.SelectedCount)
	assert.False(t, c.IsSelected("2"))
	assert.True(t, c.IsSelected("13"), "entries from other pages are untouched")
}

func TestController_EditSelectionIgnoresOffPageRecords(t *testing.T) {
	c := newTestController(t, newFakeSource(50), 12)
	_, err := c.ChangePage(context.Background(), 1, 12)
	require.NoError(t, err)

	snap := c.EditSelection([]domain.Record{artwork(1), artwork(40)})
	assert.Equal(t, 1, snap.SelectedCount)
	assert.False(t, c.IsSelected("40"))
}

func TestController_ToggleRow(t *testing.T) {
	c := newTestController(t, newFakeSource(50), 12)
	_, err := c.ChangePage(context.Background(), 2, 12)
	require.NoError(t, err)

	snap := c.ToggleRow("14")
	assert.True(t, snap.IsSelected("14"))
	require.Len(t, snap.Selected, 1)
	assert.Equal(t, domain.SelectionEntry{ID: "14", Label: "Artwork 14", OriginPage: 2}, snap.Selected[0])

	snap = c.ToggleRow("14")
	assert.False(t, snap.IsSelected("14"))
	assert.Zero(t, snap.SelectedCount)
}

func TestController_PageWideEdits(t *testing.T) {
	c := newTestController(t, newFakeSource(50), 12)
	ctx := context.Background()

	_, err := c.ChangePage(ctx, 1, 12)
	require.NoError(t, err)
	snap := c.SelectAllOnPage()
	assert.Equal(t, 12, snap.SelectedCount)
	assert.Len(t, snap.CurrentPageSelection, 12)

	_, err = c.ChangePage(ctx, 2, 12)
	require.NoError(t, err)
	c.SelectAllOnPage()
	snap = c.SelectAllOnPage()
	assert.Equal(t, 24, snap.SelectedCount, "selecting a page twice adds nothing")

	snap = c.DeselectAllOnPage()
	assert.Equal(t, 12, snap.SelectedCount)
	assert.Empty(t, snap.CurrentPageSelection)
	assert.True(t, c.IsSelected("1"))

	snap = c.ClearAll()
	assert.Zero(t, snap.SelectedCount)
	assert.Zero(t, c.SelectedCount())
	assert.Empty(t, snap.Selected)
}

func TestController_CountIndependentOfNavigationOrder(t *testing.T) {
	ctx := context.Background()
	visit := func(order []int) int {
		c := newTestController(t, newFakeSource(50), 12)
		for _, p := range order {
			_, err := c.ChangePage(ctx, p, 12)
			require.NoError(t, err)
			c.SelectAllOnPage()
		}
		return c.SelectedCount()
	}

	assert.Equal(t, visit([]int{1, 2, 3}), visit([]int{3, 1, 2, 1, 3}))
	assert.Equal(t, 36, visit([]int{2, 3, 1}))
}

func TestController_Observers(t *testing.T) {
	c := newTestController(t, newFakeSource(50), 12)

	var mu sync.Mutex
	var got []Snapshot
	unsubscribe := c.Subscribe(ObserverFunc(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, s)
	}))

	_, err := c.ChangePage(context.Background(), 1, 12)
	require.NoError(t, err)
	c.ToggleRow("1")

	mu.Lock()
	require.Len(t, got, 3, "loading, loaded, toggled")
	assert.True(t, got[0].Loading)
	assert.False(t, got[1].Loading)
	assert.Equal(t, 1, got[2].SelectedCount)
	assert.Less(t, got[0].Version, got[1].Version)
	assert.Less(t, got[1].Version, got[2].Version)
	mu.Unlock()

	unsubscribe()
	c.ToggleRow("1")

	mu.Lock()
	assert.Len(t, got, 3)
	mu.Unlock()
}

func TestController_SnapshotsAreIsolated(t *testing.T) {
	c := newTestController(t, newFakeSource(50), 12)
	_, err := c.ChangePage(context.Background(), 1, 12)
	require.NoError(t, err)

	before := c.ToggleRow("1")
	c.ToggleRow("2")

	assert.Equal(t, 1, before.SelectedCount)
	assert.Len(t, before.Selected, 1)
	assert.Len(t, before.CurrentPageSelection, 1)
}
