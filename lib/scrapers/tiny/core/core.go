// Package core drives the Tiny ERP web UI through a real browser. It
// owns the one browser session the whole run shares and implements the
// view interfaces the ledger package works against. All markup parsing
// happens in Go over DOM snapshots; nothing but gestures run inside the
// page context.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/tiny/core")

var ErrLoginFailed = errors.New("failed to login to the ERP")

// ErrEmptyLedger reports the ledger's "no items registered" empty state.
// Not a failure: the product simply has no reservations.
var ErrEmptyLedger = errors.New("the product has no reservation entries")

const (
	loginUrl  = "https://erp.tiny.com.br/login"
	ledgerUrl = "https://erp.tiny.com.br/estoque?buscaid=%d&deposito=true"

	emptyStateMessage = "Você não possui nenhum item cadastrado."
)

const (
	selUsername        = `input[name="username"]`
	selPassword        = `input[name="password"]`
	selAdvanceButton   = `button`
	selReservationsTab = `a[onclick*="trocarAba('reservas')"]`
	selLedgerTable     = `#tabelalancamentos`
	selLedgerRows      = `#tabelalancamentos tbody tr`
	selPagination      = `#divPaginacaoBottom > ul`
	selEmptyState      = `.page-list-empty-state .empty-state-box-sem-registros h4`
)

// Timing bundles every wait the session performs. The fixed settle
// delays compensate for re-renders with no observable readiness signal.
type Timing struct {
	// WaitTimeout bounds every wait-for-element.
	WaitTimeout time.Duration
	// NavTimeout bounds the advisory wait after a page jump; timing out
	// is not an error, processing proceeds optimistically.
	NavTimeout time.Duration
	// Settle is the pause after navigations and tab switches.
	Settle time.Duration
	// PostDeleteSettle is the pause for the ledger to refresh after a
	// bulk deletion.
	PostDeleteSettle time.Duration
	// ScrollPause separates the scroll steps that force lazily rendered
	// rows to materialize.
	ScrollPause time.Duration
	// ClickPause separates consecutive checkbox clicks.
	ClickPause time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		WaitTimeout:      time.Second * 10,
		NavTimeout:       time.Second * 60,
		Settle:           time.Second * 3,
		PostDeleteSettle: time.Second * 5,
		ScrollPause:      time.Millisecond * 500,
		ClickPause:       time.Millisecond * 200,
	}
}

type SessionOptions struct {
	Headless bool
	Timing   Timing
}

// Session is the one shared browser tab. Only the orchestrator drives
// navigation; every read re-derives its state from the live view.
type Session struct {
	browserCtx context.Context
	cancels    []context.CancelFunc
	timing     Timing
}

func NewSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	ctx, span := tracer.Start(ctx, "NewSession")
	defer span.End()

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("start-maximized", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start browser")
		return nil, fmt.Errorf("start browser: %w", err)
	}

	timing := opts.Timing
	if timing == (Timing{}) {
		timing = DefaultTiming()
	}

	return &Session{
		browserCtx: browserCtx,
		cancels:    []context.CancelFunc{cancelBrowser, cancelAlloc},
		timing:     timing,
	}, nil
}

func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// run executes actions against the browser tab, bounded by d when d > 0.
func (s *Session) run(d time.Duration, actions ...chromedp.Action) error {
	ctx := s.browserCtx
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return chromedp.Run(ctx, actions...)
}

// Login walks the two-step login form and takes over any session that
// is already active on the account.
func (s *Session) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	err := s.run(0,
		chromedp.Navigate(loginUrl),
		chromedp.Sleep(s.timing.Settle),
		chromedp.Click(selUsername, chromedp.ByQuery),
		chromedp.SendKeys(selUsername, username, chromedp.ByQuery),
		chromedp.Click(selAdvanceButton, chromedp.ByQuery),
		chromedp.Click(selPassword, chromedp.ByQuery),
		chromedp.SendKeys(selPassword, password, chromedp.ByQuery),
		// the submit button is the form's second button
		chromedp.Evaluate(`document.querySelectorAll("button")[1].click()`, nil),
		chromedp.Sleep(s.timing.Settle),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return fmt.Errorf("%w: %s", ErrLoginFailed, err)
	}

	// the ERP allows one session per account; an interstitial shows up
	// when another one is active and offers to disconnect it
	var tookOver bool
	err = s.run(0, chromedp.Evaluate(`(() => {
		const button = document.querySelector("button.btn.btn-primary");
		if (button && button.innerText.toLowerCase().includes("login")) {
			button.click();
			return true;
		}
		return false;
	})()`, &tookOver))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check for an active session")
		return err
	}
	if tookOver {
		slog.InfoContext(ctx, "another session was active, it has been disconnected")
	}

	return nil
}

// OpenLedger navigates to a product's stock page and switches to the
// reservations tab.
func (s *Session) OpenLedger(ctx context.Context, productId int64) error {
	ctx, span := tracer.Start(ctx, "OpenLedger")
	defer span.End()

	err := s.run(0,
		chromedp.Navigate(fmt.Sprintf(ledgerUrl, productId)),
		chromedp.Sleep(s.timing.Settle),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open the stock page")
		return fmt.Errorf("open stock page for product %d: %w", productId, err)
	}

	err = s.run(s.timing.WaitTimeout,
		chromedp.WaitVisible(selReservationsTab, chromedp.ByQuery),
		chromedp.Click(selReservationsTab, chromedp.ByQuery),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open the reservations tab")
		return fmt.Errorf("open reservations tab: %w", err)
	}

	return s.run(0, chromedp.Sleep(s.timing.Settle+s.timing.Settle))
}

// AwaitTable waits for the reservation table to render. When it never
// does, the empty-state box is checked and ErrEmptyLedger returned if
// the product simply has no reservations.
func (s *Session) AwaitTable(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "AwaitTable")
	defer span.End()

	err := s.run(s.timing.WaitTimeout,
		chromedp.WaitVisible(selLedgerRows, chromedp.ByQuery),
	)
	if err == nil {
		return nil
	}

	var message string
	stateErr := s.run(s.timing.WaitTimeout,
		chromedp.Text(selEmptyState, &message, chromedp.ByQuery),
	)
	if stateErr == nil && message == emptyStateMessage {
		return ErrEmptyLedger
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "reservation table never rendered")
	return fmt.Errorf("await reservation table: %w", err)
}

// ScrollToLoad scrolls through the viewport a few times so every lazily
// rendered row of the current page materializes.
func (s *Session) ScrollToLoad(ctx context.Context) error {
	_, span := tracer.Start(ctx, "ScrollToLoad")
	defer span.End()

	for i := 0; i < 5; i++ {
		err := s.run(0,
			chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil),
			chromedp.Sleep(s.timing.ScrollPause),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "scroll failed")
			return err
		}
	}
	return s.run(0, chromedp.Sleep(s.timing.ScrollPause*2))
}
