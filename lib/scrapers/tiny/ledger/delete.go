package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
)

// Surface is the set of UI gestures the bulk-delete sequence needs on
// the currently displayed page. Every method waits for its own
// precondition element before acting and fails when the wait times out.
type Surface interface {
	// SelectEntry ticks the checkbox belonging to a reservation id.
	SelectEntry(ctx context.Context, id string) error
	// OpenActionsMenu opens the bulk-actions dropdown.
	OpenActionsMenu(ctx context.Context) error
	// ClickDeleteAction picks the "delete entries" menu action.
	ClickDeleteAction(ctx context.Context) error
	// ConfirmDeletion confirms in the resulting modal dialog.
	ConfirmDeletion(ctx context.Context) error
	// AwaitRefresh waits out the page refresh after the deletion.
	AwaitRefresh(ctx context.Context) error
}

// Deleter runs the strict delete-confirmation sequence against a page.
type Deleter struct {
	Surface Surface
}

// DeletePage selects the given reservation ids on the displayed page and
// drives the bulk delete. A missing checkbox skips that one id; a
// failure of any later step aborts the page (the caller skips the page
// and continues).
func (d Deleter) DeletePage(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "DeletePage")
	defer span.End()

	selected := 0
	for _, id := range ids {
		if err := d.Surface.SelectEntry(ctx, id); err != nil {
			slog.WarnContext(ctx, "reservation checkbox not found, skipping entry",
				"id", id, "err", err)
			continue
		}
		selected++
	}
	if selected == 0 {
		err := fmt.Errorf("none of the %d reservations could be selected", len(ids))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := d.Surface.OpenActionsMenu(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open bulk actions menu")
		return fmt.Errorf("open bulk actions menu: %w", err)
	}
	if err := d.Surface.ClickDeleteAction(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to pick delete action")
		return fmt.Errorf("pick delete action: %w", err)
	}
	if err := d.Surface.ConfirmDeletion(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to confirm deletion modal")
		return fmt.Errorf("confirm deletion: %w", err)
	}
	if err := d.Surface.AwaitRefresh(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "page did not settle after deletion")
		return fmt.Errorf("await post-deletion refresh: %w", err)
	}

	slog.InfoContext(ctx, "deleted reservations on page", "count", selected)
	return nil
}
