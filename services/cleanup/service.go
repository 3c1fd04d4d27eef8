// Package cleanup orchestrates a full reservation sweep: it walks the
// pending work queue, resolves each SKU to its internal product id,
// opens the product's reservation ledger in the browser and deletes
// every reservation dated on or before the cutoff, page by page from
// the end. Progress is checkpointed per SKU so an interrupted run
// resumes where it left off.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"reservesweep/lib/auditlog"
	"reservesweep/lib/checkpoint"
	"reservesweep/lib/inventory"
	"reservesweep/lib/scrapers/tiny/api"
	"reservesweep/lib/scrapers/tiny/core"
	"reservesweep/lib/scrapers/tiny/ledger"
)

var tracer = otel.Tracer("services/cleanup")

// Resolver maps a SKU to the ERP's internal product record.
type Resolver interface {
	SearchProduct(ctx context.Context, sku string) (api.SearchResult, error)
}

// Browser is the slice of the browser session the sweep drives directly.
// Page reads and delete gestures go through the ledger interfaces
// instead.
type Browser interface {
	OpenLedger(ctx context.Context, productId int64) error
	AwaitTable(ctx context.Context) error
	ScrollToLoad(ctx context.Context) error
}

// Auditor records raw lookup results for later inspection. Satisfied by
// auditlog.Log.
type Auditor interface {
	Record(v any) error
}

var _ Auditor = auditlog.Log{}

type Service struct {
	Resolver Resolver
	Browser  Browser
	View     ledger.View
	Nav      ledger.Navigator
	Surface  ledger.Surface

	Checkpoints checkpoint.Store
	Audit       Auditor
	Cutoff      ledger.Cutoff
}

// Run processes every pending item in order. Each SKU is checkpointed
// after its sweep, including when it has nothing to sweep (unknown to
// the ERP, empty ledger) and when the sweep fails partway. Recording
// failed SKUs as done keeps a permanently broken product from being
// retried on every run; the cost is that a transient failure needs the
// checkpoint line removed by hand to be retried. Only resolver
// infrastructure failures abort the run.
func (s *Service) Run(ctx context.Context, items []inventory.Item) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	for i, item := range items {
		slog.InfoContext(ctx, "processing work item",
			"sku", item.Sku, "reserved_units", item.ReservedUnits,
			"position", i+1, "of", len(items))

		if err := s.sweepItem(ctx, item); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "sweep aborted")
			return err
		}

		err := s.Checkpoints.Append(checkpoint.Record{
			Sku:   item.Sku,
			Units: item.ReservedUnits,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to write checkpoint")
			return fmt.Errorf("checkpoint %s: %w", item.Sku, err)
		}
	}

	return nil
}

// sweepItem handles one SKU end to end. A returned error is an
// infrastructure failure that aborts the whole run; everything else is
// logged and leaves the item eligible for checkpointing.
func (s *Service) sweepItem(ctx context.Context, item inventory.Item) error {
	ctx, span := tracer.Start(ctx, "sweepItem")
	defer span.End()

	result, err := s.Resolver.SearchProduct(ctx, item.Sku)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "product lookup failed")
		return fmt.Errorf("resolve %s: %w", item.Sku, err)
	}
	if s.Audit != nil {
		if err := s.Audit.Record(result); err != nil {
			slog.WarnContext(ctx, "failed to append to the lookup audit log", "err", err)
		}
	}

	product, ok := result.First()
	if !ok {
		slog.WarnContext(ctx, "sku is unknown to the ERP, nothing to sweep", "sku", item.Sku)
		return nil
	}

	if err := s.Browser.OpenLedger(ctx, product.Id); err != nil {
		slog.WarnContext(ctx, "failed to open the reservation ledger, skipping sku",
			"sku", item.Sku, "product_id", product.Id, "err", err)
		return nil
	}

	err = s.Browser.AwaitTable(ctx)
	if errors.Is(err, core.ErrEmptyLedger) {
		slog.InfoContext(ctx, "ledger is empty, nothing to sweep", "sku", item.Sku)
		return nil
	}
	if err != nil {
		slog.WarnContext(ctx, "reservation ledger never rendered, skipping sku",
			"sku", item.Sku, "err", err)
		return nil
	}

	paginator := ledger.Paginator{View: s.View, Nav: s.Nav}
	err = paginator.ForEachPageDescending(ctx, func(ctx context.Context, page int) error {
		return s.sweepPage(ctx, item.Sku, page)
	})
	if err != nil {
		slog.WarnContext(ctx, "page sweep failed partway, skipping the rest of the sku",
			"sku", item.Sku, "err", err)
	}

	return nil
}

// sweepPage deletes every eligible reservation on the displayed page.
func (s *Service) sweepPage(ctx context.Context, sku string, page int) error {
	ctx, span := tracer.Start(ctx, "sweepPage")
	defer span.End()

	if err := s.Browser.ScrollToLoad(ctx); err != nil {
		slog.WarnContext(ctx, "failed to scroll the page, rows may be incomplete",
			"page", page, "err", err)
	}

	rows, err := s.View.Rows(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read page rows")
		return err
	}

	eligible, err := ledger.Harvest(rows, s.Cutoff)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to harvest page rows")
		return err
	}
	if len(eligible) == 0 {
		slog.InfoContext(ctx, "no reservations past the cutoff on this page",
			"sku", sku, "page", page, "rows", len(rows))
		return nil
	}

	ids := make([]string, len(eligible))
	for i, r := range eligible {
		ids[i] = r.Id
		slog.InfoContext(ctx, "reservation queued for deletion",
			"sku", sku, "id", r.Id, "date", r.RawDate, "quantity", r.Quantity)
	}

	deleter := ledger.Deleter{Surface: s.Surface}
	return deleter.DeletePage(ctx, ids)
}
