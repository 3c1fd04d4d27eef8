// Package ledger holds the process logic for sweeping a product's
// reservation ledger: harvesting rendered rows, deriving pagination
// state, and running the bulk-delete gesture sequence. Everything here
// works against narrow view interfaces so the logic is testable without
// a browser; the chromedp-backed implementations live in the core
// package.
package ledger

import (
	"context"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/tiny/ledger")

// Row is one rendered reservation row, as raw cell text. SelectionID is
// the value of the row's selection checkbox and is empty when the row
// renders without one.
type Row struct {
	SelectionID  string
	DateText     string
	QuantityText string
}

// View reads the currently displayed ledger page. Implementations must
// not cache anything across a navigation or deletion: rows and
// pagination are re-queried from the live markup every time.
type View interface {
	Rows(ctx context.Context) ([]Row, error)
	Pagination(ctx context.Context) (PaginationSnapshot, error)
}

// Navigator jumps the ledger to a given page number and waits out the
// re-render.
type Navigator interface {
	GotoPage(ctx context.Context, page int) error
}
