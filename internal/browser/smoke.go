// Package browser drives a headless Chrome through a running dashboard, the
// way an operator would: log in, read the complaint list, open the first
// complaint.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"fixxyadmin/internal/logging"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Selectors shared with the dashboard templates.
const (
	SelLoginForm  = "#login-form"
	SelUsername   = "#username"
	SelPassword   = "#password"
	SelSubmit     = "#login-form button[type=submit]"
	SelLoginError = "#login-error"
	SelCount      = "#complaint-count"
	SelCard       = "a.complaint-card"
	SelToast      = ".toast"
	SelDetailDone = "#detail-table, #detail-error"
	SelStatusCell = `#detail-table tr[data-field="Status"] td`
	SelDetailErr  = "#detail-error"
)

// SmokeConfig describes one smoke run.
type SmokeConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration // whole run, defaults to one minute
	Headless bool
}

// Report is what the smoke run saw.
type Report struct {
	LoggedIn     bool
	LoginError   string
	Toasts       []string
	CountLabel   string
	CardCount    int
	FirstCard    string // href of the first card
	DetailStatus string
	DetailError  string
	HTTPErrors   []string // "<status> <url>" for every 4xx/5xx page load
}

// NewContext creates a browser context whose chromedp logs go to logger.
// The returned cancel releases both the tab and the browser process.
func NewContext(parent context.Context, headless bool, logger *logging.Logger) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", headless))
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)

	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		logger.Debug(parent, fmt.Sprintf(format, args...), logging.Fields{"component": "chromedp"})
	}))

	return ctx, func() {
		cancel()
		allocCancel()
	}
}

// RunSmoke performs the walk.
//
// Flow:
//  1. Open the login screen and submit the credentials
//  2. Expect to land on /home; otherwise report the login error
//  3. Read the count label, the cards and any toasts
//  4. Open the first card and read its status (or its error)
//
// A partial Report is returned together with any error.
func RunSmoke(ctx context.Context, cfg SmokeConfig, logger *logging.Logger) (*Report, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid dashboard URL %q", cfg.BaseURL)
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.Timeout)
	defer cancelTimeout()
	bctx, cancel := NewContext(ctx, cfg.Headless, logger)
	defer cancel()

	report := &Report{}
	httpErrs := watchHTTPErrors(bctx)
	defer func() { report.HTTPErrors = httpErrs.list() }()

	logger.Info(ctx, "smoke: submitting login", logging.Fields{"url": base.String()})
	var location string
	err = chromedp.Run(bctx,
		network.Enable(),
		chromedp.Navigate(base.String()+"/"),
		chromedp.WaitVisible(SelLoginForm, chromedp.ByQuery),
		chromedp.SendKeys(SelUsername, cfg.Username, chromedp.ByQuery),
		chromedp.SendKeys(SelPassword, cfg.Password, chromedp.ByQuery),
		chromedp.Click(SelSubmit, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
	)
	if err != nil {
		return report, fmt.Errorf("failed to submit login form: %w", err)
	}

	if err := chromedp.Run(bctx, collectToasts(&report.Toasts)); err != nil {
		return report, fmt.Errorf("failed to read notifications: %w", err)
	}

	if !strings.HasSuffix(pathOf(location), "/home") {
		var loginErr string
		_ = chromedp.Run(bctx, textIfPresent(SelLoginError, &loginErr))
		report.LoginError = loginErr
		return report, fmt.Errorf("login did not reach the complaint list (at %s)", location)
	}
	report.LoggedIn = true

	err = chromedp.Run(bctx,
		textIfPresent(SelCount, &report.CountLabel),
		chromedp.Evaluate(fmt.Sprintf(`document.querySelectorAll(%q).length`, SelCard), &report.CardCount),
	)
	if err != nil {
		return report, fmt.Errorf("failed to read complaint list: %w", err)
	}
	logger.Info(ctx, "smoke: complaint list read", logging.Fields{"cards": report.CardCount})

	if report.CardCount == 0 {
		return report, nil
	}

	var ok bool
	err = chromedp.Run(bctx,
		chromedp.AttributeValue(SelCard, "href", &report.FirstCard, &ok, chromedp.ByQuery),
		chromedp.Click(SelCard, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.WaitVisible(SelDetailDone, chromedp.ByQuery),
		textIfPresent(SelStatusCell, &report.DetailStatus),
		textIfPresent(SelDetailErr, &report.DetailError),
	)
	if err != nil {
		return report, fmt.Errorf("failed to open complaint detail: %w", err)
	}

	logger.Info(ctx, "smoke: complaint detail read", logging.Fields{
		"href":   report.FirstCard,
		"status": report.DetailStatus,
	})
	return report, nil
}

type errorLog struct {
	mu   sync.Mutex
	seen []string
}

func (e *errorLog) add(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, s)
}

func (e *errorLog) list() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.seen...)
}

// watchHTTPErrors records document responses with an error status. Listeners
// run on chromedp's event goroutine.
func watchHTTPErrors(ctx context.Context) *errorLog {
	seen := &errorLog{}
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
			return
		}
		if resp.Response.Status >= 400 {
			seen.add(fmt.Sprintf("%d %s", resp.Response.Status, resp.Response.URL))
		}
	})
	return seen
}

// textIfPresent reads the trimmed text of the first match, or "" when
// nothing matches. It never waits for the node to appear.
func textIfPresent(sel string, out *string) chromedp.Action {
	return chromedp.Evaluate(fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return el ? el.textContent.trim() : ""; })()`, sel), out)
}

func collectToasts(out *[]string) chromedp.Action {
	return chromedp.Evaluate(fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(el => el.textContent.trim())`, SelToast), out)
}

func pathOf(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	return strings.TrimRight(u.Path, "/")
}
