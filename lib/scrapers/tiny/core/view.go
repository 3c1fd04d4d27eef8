package core

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/codes"

	"reservesweep/lib/scrapers/tiny/ledger"
)

// Selectors for the bulk-actions bar that appears once rows are ticked.
// The ERP gives these elements no stable ids, hence the long paths.
const (
	selActionsButton = `#page-wrapper > div.panel.panel-list > div.bottom-bar > div:nth-child(1) > div.container-actions-selecao.featured-actions-scope.active > div.dropdown.dropup.dropdown-in.featured-actions-menu > button`
	selDeleteAction  = `#page-wrapper > div.panel.panel-list > div.bottom-bar > div:nth-child(1) > div.container-actions-selecao.featured-actions-scope.active.dropdown--is-open > div.dropdown.dropup.dropdown-in.featured-actions-menu.open > div > ul > li > a`
	selModalConfirm  = `#bs-modal-ui-popup > div > div > div > div.modal-footer > button.btn.btn-sm.btn-primary`
)

var digitPattern = regexp.MustCompile(`\d`)

// Rows snapshots the reservation table and extracts the raw cell text of
// every rendered row. Rows without a selection checkbox keep an empty
// SelectionID.
func (s *Session) Rows(ctx context.Context) ([]ledger.Row, error) {
	ctx, span := tracer.Start(ctx, "Rows")
	defer span.End()

	var html string
	err := s.run(s.timing.WaitTimeout,
		chromedp.OuterHTML(selLedgerTable, &html, chromedp.ByQuery),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to snapshot the reservation table")
		return nil, fmt.Errorf("snapshot reservation table: %w", err)
	}

	return parseRows(html)
}

func parseRows(html string) ([]ledger.Row, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse reservation table markup: %w", err)
	}

	var rows []ledger.Row
	doc.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		row := ledger.Row{}
		if value, ok := tr.Find(`input[type="checkbox"]`).First().Attr("value"); ok {
			row.SelectionID = strings.TrimSpace(value)
		}
		cells := tr.Children()
		row.DateText = strings.TrimSpace(cells.Eq(2).Text())
		row.QuantityText = strings.TrimSpace(cells.Eq(3).Text())
		rows = append(rows, row)
	})
	return rows, nil
}

// Pagination snapshots the bottom pagination control. A ledger short
// enough to fit one page renders no control at all; that comes back as
// Found=false, not as an error.
func (s *Session) Pagination(ctx context.Context) (ledger.PaginationSnapshot, error) {
	ctx, span := tracer.Start(ctx, "Pagination")
	defer span.End()

	var html string
	err := s.run(s.timing.WaitTimeout,
		chromedp.OuterHTML(selPagination, &html, chromedp.ByQuery),
	)
	if err != nil {
		slog.DebugContext(ctx, "pagination control not found, assuming a single page",
			"err", err)
		return ledger.PaginationSnapshot{}, nil
	}

	snap, err := parsePagination(html)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse the pagination control")
		return ledger.PaginationSnapshot{}, err
	}
	return snap, nil
}

func parsePagination(html string) (ledger.PaginationSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ledger.PaginationSnapshot{}, fmt.Errorf("parse pagination markup: %w", err)
	}

	snap := ledger.PaginationSnapshot{Found: true}
	doc.Find("ul").First().ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		entry := ledger.PaginationEntry{
			Text:   strings.TrimSpace(li.Text()),
			IsNext: li.HasClass("pnext"),
		}
		link := li.Find("a.link-pg").First()
		if link.Length() > 0 {
			entry.Text = strings.TrimSpace(link.Text())
			// arrow links carry an icon instead of a page number
			entry.IsLink = digitPattern.MatchString(entry.Text) &&
				link.Find("i").Length() == 0
		}
		snap.Entries = append(snap.Entries, entry)
	})
	snap.Active = strings.TrimSpace(doc.Find("li.active > a").First().Text())
	return snap, nil
}

// GotoPage invokes the ledger's own page-jump function and waits for the
// table to re-render. The wait is advisory: the table staying hidden
// past the timeout is logged and the sweep carries on with whatever the
// next snapshot shows.
func (s *Session) GotoPage(ctx context.Context, page int) error {
	ctx, span := tracer.Start(ctx, "GotoPage")
	defer span.End()

	err := s.run(0,
		chromedp.Evaluate(fmt.Sprintf("irParaPagina(%d, listar)", page), nil),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "page jump failed")
		return fmt.Errorf("jump to page %d: %w", page, err)
	}

	err = s.run(s.timing.NavTimeout,
		chromedp.WaitVisible(selLedgerRows, chromedp.ByQuery),
	)
	if err != nil {
		slog.WarnContext(ctx, "table did not re-render in time after a page jump, continuing",
			"page", page, "err", err)
	}
	return s.run(0, chromedp.Sleep(s.timing.Settle))
}

// SelectEntry ticks the checkbox of one reservation row. The checkbox
// is probed first so a row that vanished between harvest and selection
// fails fast instead of waiting out the full timeout.
func (s *Session) SelectEntry(ctx context.Context, id string) error {
	sel := fmt.Sprintf("#marcado%s", id)

	var nodes []*cdp.Node
	err := s.run(s.timing.WaitTimeout,
		chromedp.Nodes(sel, &nodes, chromedp.ByQuery, chromedp.AtLeast(0)),
	)
	if err != nil {
		return fmt.Errorf("probe for reservation checkbox %s: %w", id, err)
	}
	if len(nodes) == 0 {
		return fmt.Errorf("reservation checkbox %s not found", id)
	}

	err = s.run(s.timing.WaitTimeout,
		chromedp.Click(sel, chromedp.ByQuery),
		chromedp.Sleep(s.timing.ClickPause),
	)
	if err != nil {
		return fmt.Errorf("select reservation %s: %w", id, err)
	}
	return nil
}

func (s *Session) OpenActionsMenu(ctx context.Context) error {
	err := s.run(s.timing.WaitTimeout,
		chromedp.WaitVisible(selActionsButton, chromedp.ByQuery),
		chromedp.Click(selActionsButton, chromedp.ByQuery),
		chromedp.Sleep(s.timing.ClickPause),
	)
	if err != nil {
		return fmt.Errorf("open bulk actions menu: %w", err)
	}
	return nil
}

func (s *Session) ClickDeleteAction(ctx context.Context) error {
	err := s.run(s.timing.WaitTimeout,
		chromedp.WaitVisible(selDeleteAction, chromedp.ByQuery),
		chromedp.Sleep(s.timing.ClickPause),
		chromedp.Click(selDeleteAction, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("click delete action: %w", err)
	}
	return nil
}

func (s *Session) ConfirmDeletion(ctx context.Context) error {
	err := s.run(s.timing.WaitTimeout,
		chromedp.WaitVisible(selModalConfirm, chromedp.ByQuery),
		chromedp.Sleep(s.timing.ClickPause),
		chromedp.Click(selModalConfirm, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("confirm deletion modal: %w", err)
	}
	return nil
}

func (s *Session) AwaitRefresh(ctx context.Context) error {
	return s.run(0, chromedp.Sleep(s.timing.PostDeleteSettle))
}
