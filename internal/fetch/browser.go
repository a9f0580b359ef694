// Package fetch - browser.go drives a long-lived Chrome session for pages that need a real browser.
package fetch

import (
	"context"
	"fmt"
	"log"

	"github.com/chromedp/chromedp"
)

// BrowserOptions configures a browser session.
type BrowserOptions struct {
	Headless  bool
	UserAgent string
	Verbose   bool
}

// BrowserSession is one Chrome instance reused across navigations.
// It is not safe for concurrent use.
type BrowserSession struct {
	ctx     context.Context
	cancels []context.CancelFunc
	verbose bool
}

// NewBrowserSession starts Chrome. Requires Chrome/Chromium to be installed on the system.
func NewBrowserSession(ctx context.Context, opts BrowserOptions) (*BrowserSession, error) {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(userAgent),
		)...,
	)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &BrowserSession{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
		verbose: opts.Verbose,
	}

	// An empty Run launches the browser so startup failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	if opts.Verbose {
		log.Printf("[BROWSER] Started browser (headless=%v)", opts.Headless)
	}
	return s, nil
}

// Navigate loads url and waits for the body to be ready.
func (s *BrowserSession) Navigate(ctx context.Context, url string) error {
	if s.verbose {
		log.Printf("[BROWSER] Navigating to: %s", url)
	}
	err := s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return &Error{URL: url, Message: "browser navigation failed", Cause: err}
	}
	return nil
}

// BodyHTML returns the rendered inner markup of the current page's body.
func (s *BrowserSession) BodyHTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.InnerHTML("body", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read rendered body: %w", err)
	}
	if s.verbose {
		log.Printf("[BROWSER] Rendered body: %d bytes", len(html))
	}
	return html, nil
}

// Close shuts the browser down.
func (s *BrowserSession) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}

// run executes actions on the session, also stopping when the caller's ctx ends.
func (s *BrowserSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}
