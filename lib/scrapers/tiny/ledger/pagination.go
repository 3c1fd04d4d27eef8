package ledger

import (
	"context"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/codes"
)

// PaginationEntry is one item of the rendered pagination control, in
// document order.
type PaginationEntry struct {
	// Text is the item's inner text, usually a page number.
	Text string
	// IsLink marks items carrying an actual page link.
	IsLink bool
	// IsNext marks the "next page" arrow item.
	IsNext bool
}

// PaginationSnapshot is a point-in-time read of the pagination control.
// It must be re-queried after every navigation or deletion: removing
// rows can change the page count and silently move the active page.
type PaginationSnapshot struct {
	// Found is false when the control isn't rendered at all, which is
	// how single-page (or empty) ledgers present themselves.
	Found   bool
	Entries []PaginationEntry
	// Active is the text of the active page indicator, "" if unreadable.
	Active string
}

func entryNumber(e PaginationEntry) (int, bool) {
	if !e.IsLink {
		return 0, false
	}
	n, err := strconv.Atoi(e.Text)
	if err != nil {
		return 0, false
	}
	return n, true
}

// TotalPages derives the page count from a pagination snapshot. The
// authoritative link is the one immediately preceding the "next" arrow;
// without an arrow, the last numeric link. A missing control or no
// numeric links means a single page.
func TotalPages(s PaginationSnapshot) int {
	if !s.Found {
		return 1
	}

	nextIdx := -1
	for i, e := range s.Entries {
		if e.IsNext {
			nextIdx = i
			break
		}
	}
	if nextIdx > 0 {
		if n, ok := entryNumber(s.Entries[nextIdx-1]); ok {
			return n
		}
	}

	for i := len(s.Entries) - 1; i >= 0; i-- {
		if s.Entries[i].IsNext {
			continue
		}
		if n, ok := entryNumber(s.Entries[i]); ok {
			return n
		}
	}
	return 1
}

// CurrentPage reads the active page indicator, defaulting to 1 when it
// is absent or unreadable. Best effort, never an error.
func CurrentPage(s PaginationSnapshot) int {
	n, err := strconv.Atoi(s.Active)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginator drives a descending sweep over the ledger's pages.
type Paginator struct {
	View View
	Nav  Navigator
}

// ForEachPageDescending visits pages from the last down to the first,
// calling fn once per page. Deleting rows renumbers later pages and can
// make the tail page disappear entirely, so processing from the end
// keeps already-visited pages stable; pagination state is re-derived
// from the live view at the top of every iteration and the loop cursor
// is pulled down whenever the real page is lower than expected. A
// failure inside fn or during navigation skips that page and moves on.
func (p Paginator) ForEachPageDescending(ctx context.Context, fn func(ctx context.Context, page int) error) error {
	ctx, span := tracer.Start(ctx, "ForEachPageDescending")
	defer span.End()

	snap, err := p.View.Pagination(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read pagination control")
		return err
	}
	total := TotalPages(snap)
	slog.InfoContext(ctx, "ledger page count derived", "total", total)

	if total > 1 {
		if err := p.Nav.GotoPage(ctx, total); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to reach the last page")
			return err
		}
	}

	for page := total; page >= 1; page-- {
		snap, err := p.View.Pagination(ctx)
		if err != nil {
			slog.WarnContext(ctx, "failed to re-read pagination, skipping page",
				"page", page, "err", err)
			continue
		}
		total = TotalPages(snap)
		current := CurrentPage(snap)

		if current != page {
			slog.InfoContext(ctx, "active page drifted from the loop cursor",
				"expected", page, "actual", current, "total", total)
			// a lower real page means the expected page no longer
			// exists; adopt it as the new cursor
			if current < page {
				page = current
			}
			if err := p.Nav.GotoPage(ctx, page); err != nil {
				slog.WarnContext(ctx, "failed to navigate to page, skipping",
					"page", page, "err", err)
				continue
			}
		}

		slog.InfoContext(ctx, "processing ledger page", "page", page, "total", total)
		if err := fn(ctx, page); err != nil {
			slog.WarnContext(ctx, "page processing failed, moving to next page",
				"page", page, "err", err)
		}
	}

	return nil
}
