package ledger

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func controlFor(total, current int) PaginationSnapshot {
	snap := PaginationSnapshot{
		Found:  true,
		Active: strconv.Itoa(current),
	}
	snap.Entries = append(snap.Entries, PaginationEntry{Text: "«", IsLink: false})
	for i := 1; i <= total; i++ {
		snap.Entries = append(snap.Entries, PaginationEntry{
			Text:   strconv.Itoa(i),
			IsLink: true,
		})
	}
	snap.Entries = append(snap.Entries, PaginationEntry{Text: "»", IsNext: true})
	return snap
}

func TestTotalPagesMissingControl(t *testing.T) {
	require.Equal(t, 1, TotalPages(PaginationSnapshot{Found: false}))
}

func TestTotalPagesLinkBeforeNextArrow(t *testing.T) {
	require.Equal(t, 3, TotalPages(controlFor(3, 1)))
}

func TestTotalPagesNoNextArrow(t *testing.T) {
	snap := PaginationSnapshot{
		Found: true,
		Entries: []PaginationEntry{
			{Text: "1", IsLink: true},
			{Text: "2", IsLink: true},
			{Text: "5", IsLink: true},
		},
	}
	require.Equal(t, 5, TotalPages(snap))
}

func TestTotalPagesNoNumericLinks(t *testing.T) {
	snap := PaginationSnapshot{
		Found: true,
		Entries: []PaginationEntry{
			{Text: "«", IsLink: false},
			{Text: "»", IsNext: true},
		},
	}
	require.Equal(t, 1, TotalPages(snap))
}

func TestCurrentPage(t *testing.T) {
	require.Equal(t, 2, CurrentPage(PaginationSnapshot{Active: "2"}))
	require.Equal(t, 1, CurrentPage(PaginationSnapshot{Active: ""}))
	require.Equal(t, 1, CurrentPage(PaginationSnapshot{Active: "…"}))
	require.Equal(t, 1, CurrentPage(PaginationSnapshot{Active: "-3"}))
}

// fakeLedger simulates the live pagination control, including the way it
// mutates underneath the sweep when pages are deleted.
type fakeLedger struct {
	total   int
	current int

	visited []int
	jumps   []int
	onVisit func(page int)
}

func (f *fakeLedger) Rows(ctx context.Context) ([]Row, error) {
	return nil, nil
}

func (f *fakeLedger) Pagination(ctx context.Context) (PaginationSnapshot, error) {
	return controlFor(f.total, f.current), nil
}

func (f *fakeLedger) GotoPage(ctx context.Context, page int) error {
	if page > f.total {
		return fmt.Errorf("page %d does not exist, ledger has %d pages", page, f.total)
	}
	f.current = page
	f.jumps = append(f.jumps, page)
	return nil
}

func (f *fakeLedger) process(ctx context.Context, page int) error {
	f.visited = append(f.visited, page)
	if f.onVisit != nil {
		f.onVisit(page)
	}
	return nil
}

func TestDescendingSweepVisitsEveryPage(t *testing.T) {
	fake := &fakeLedger{total: 3, current: 1}
	p := Paginator{View: fake, Nav: fake}

	err := p.ForEachPageDescending(context.Background(), fake.process)
	require.NoError(t, err)
	require.Equal(t, []int{3, 2, 1}, fake.visited)
}

func TestDescendingSweepSinglePage(t *testing.T) {
	fake := &fakeLedger{total: 1, current: 1}
	p := Paginator{View: fake, Nav: fake}

	err := p.ForEachPageDescending(context.Background(), fake.process)
	require.NoError(t, err)
	require.Equal(t, []int{1}, fake.visited)
	// single-page ledgers are processed in place, no jump needed
	require.Empty(t, fake.jumps)
}

func TestDescendingSweepAdoptsLowerPageAfterShrink(t *testing.T) {
	// deleting the only rows on page 3 of 3 collapses the ledger to 2
	// pages and the UI lands back on page 1; the sweep must adopt the
	// real page instead of requesting a page that no longer exists
	fake := &fakeLedger{total: 3, current: 1}
	fake.onVisit = func(page int) {
		if page == 3 {
			fake.total = 2
			fake.current = 1
		}
	}
	p := Paginator{View: fake, Nav: fake}

	err := p.ForEachPageDescending(context.Background(), fake.process)
	require.NoError(t, err)
	require.Equal(t, []int{3, 1}, fake.visited)
	for _, jump := range fake.jumps {
		require.LessOrEqual(t, jump, 3)
	}
}

func TestDescendingSweepRealignsWhenPageDrifts(t *testing.T) {
	// deletion on page 3 keeps 2 pages alive but the UI moves to page 2
	// on its own; the sweep should still visit page 2 then page 1
	fake := &fakeLedger{total: 3, current: 1}
	fake.onVisit = func(page int) {
		if page == 3 {
			fake.total = 2
			fake.current = 2
		}
	}
	p := Paginator{View: fake, Nav: fake}

	err := p.ForEachPageDescending(context.Background(), fake.process)
	require.NoError(t, err)
	require.Equal(t, []int{3, 2, 1}, fake.visited)
}
