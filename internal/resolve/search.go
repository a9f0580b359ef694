package resolve

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/jonathan/stocks-graph/internal/fetch"
)

const (
	// DefaultHomeURL is opened first so the operator can deal with the consent dialog.
	DefaultHomeURL = "https://www.google.com/"
	// DefaultSearchURL is the results page; the encoded query is appended.
	DefaultSearchURL = "https://www.google.com/search?hl=en&q="
	// DefaultQuerySuffix narrows searches to the company rather than the product.
	DefaultQuerySuffix = "company"
	// DefaultDelay is waited after every search so the engine does not block the session.
	DefaultDelay = 60 * time.Second
)

// Browser is the part of a browser session the search provider needs.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	BodyHTML(ctx context.Context) (string, error)
	Close()
}

// ConfirmFunc blocks until the operator confirms the session is usable.
type ConfirmFunc func(ctx context.Context) error

// SearchOptions configures a SearchProvider.
type SearchOptions struct {
	HomeURL     string
	SearchURL   string
	QuerySuffix string
	Delay       time.Duration
	Verbose     bool
}

// DefaultSearchOptions returns the settings used against Google.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		HomeURL:     DefaultHomeURL,
		SearchURL:   DefaultSearchURL,
		QuerySuffix: DefaultQuerySuffix,
		Delay:       DefaultDelay,
	}
}

// SearchProvider resolves names by searching in a real browser and picking the
// first result labelled "Wikipedia". The browser is opened on the first call,
// then the operator is asked to confirm before any search runs.
type SearchProvider struct {
	opts    SearchOptions
	open    func(ctx context.Context) (Browser, error)
	confirm ConfirmFunc
	sleep   func(ctx context.Context, d time.Duration) error

	browser Browser
}

// NewSearchProvider builds a provider around a browser factory and an operator confirmation.
func NewSearchProvider(opts SearchOptions, open func(ctx context.Context) (Browser, error), confirm ConfirmFunc) *SearchProvider {
	defaults := DefaultSearchOptions()
	if opts.HomeURL == "" {
		opts.HomeURL = defaults.HomeURL
	}
	if opts.SearchURL == "" {
		opts.SearchURL = defaults.SearchURL
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	return &SearchProvider{
		opts:    opts,
		open:    open,
		confirm: confirm,
		sleep:   sleepContext,
	}
}

// NewChromeSearchProvider returns a SearchProvider backed by a visible Chrome
// window and a terminal prompt read from in.
func NewChromeSearchProvider(opts SearchOptions, browser fetch.BrowserOptions, in io.Reader, out io.Writer) *SearchProvider {
	open := func(ctx context.Context) (Browser, error) {
		return fetch.NewBrowserSession(ctx, browser)
	}
	return NewSearchProvider(opts, open, PromptConfirm(in, out, "Cookies accepted? [press Enter] "))
}

// Resolve implements Provider.
func (p *SearchProvider) Resolve(ctx context.Context, name string) (string, bool, error) {
	if err := p.start(ctx); err != nil {
		return "", false, err
	}

	searchURL := p.opts.SearchURL + url.QueryEscape(SearchQuery(name, p.opts.QuerySuffix))
	if err := p.browser.Navigate(ctx, searchURL); err != nil {
		return "", false, &ResolveError{Name: name, Message: "search navigation failed", Cause: err}
	}
	if err := p.sleep(ctx, p.opts.Delay); err != nil {
		return "", false, err
	}

	html, err := p.browser.BodyHTML(ctx)
	if err != nil {
		return "", false, &ResolveError{Name: name, Message: "failed to read results", Cause: err}
	}
	title, found, err := ExtractTitle(html)
	if err != nil {
		return "", false, &ResolveError{Name: name, Message: "failed to parse results", Cause: err}
	}
	if p.opts.Verbose {
		if found {
			log.Printf("[TITLE] %s -> %s", name, title)
		} else {
			log.Printf("[TITLE] %s -> no Wikipedia result", name)
		}
	}
	return title, found, nil
}

// Close shuts the browser down if it was opened.
func (p *SearchProvider) Close() error {
	if p.browser != nil {
		p.browser.Close()
		p.browser = nil
	}
	return nil
}

func (p *SearchProvider) start(ctx context.Context) error {
	if p.browser != nil {
		return nil
	}
	b, err := p.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	if err := b.Navigate(ctx, p.opts.HomeURL); err != nil {
		b.Close()
		return err
	}
	if p.confirm != nil {
		if err := p.confirm(ctx); err != nil {
			b.Close()
			return fmt.Errorf("operator confirmation failed: %w", err)
		}
	}
	p.browser = b
	return nil
}

// SearchQuery returns the raw search terms for a company name.
func SearchQuery(name, suffix string) string {
	if suffix == "" {
		return name
	}
	return name + " " + suffix
}

// PromptConfirm writes prompt to out and waits for a line on in.
func PromptConfirm(in io.Reader, out io.Writer, prompt string) ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(ctx context.Context) error {
		_, _ = fmt.Fprint(out, prompt)
		done := make(chan error, 1)
		go func() {
			_, err := reader.ReadString('\n')
			if err == io.EOF {
				err = nil
			}
			done <- err
		}()
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
