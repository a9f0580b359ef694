// Package wikipedia retrieves article markup from the MediaWiki Action API.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jonathan/stocks-graph/internal/schemas"
)

const (
	// DefaultAPIURL is the English Wikipedia Action API endpoint.
	DefaultAPIURL = "https://en.wikipedia.org/w/api.php"
	// DefaultUserAgent identifies the client as Wikimedia's API etiquette requires.
	DefaultUserAgent = "stocks-graph/1.0 (knowledge graph dataset builder)"
	// MaxTitlesPerRequest is the API's limit for titles in one query.
	MaxTitlesPerRequest = 50
)

// PageSelector returns the markup of the pages it can find, keyed by requested title.
// Titles that cannot be resolved are absent from the result.
type PageSelector interface {
	SelectPages(ctx context.Context, titles []string) (map[string]string, error)
}

// APIError represents a failed or rejected API call
type APIError struct {
	Code    string
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	prefix := "wikipedia api error"
	if e.Code != "" {
		prefix += " (" + e.Code + ")"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Options configures a Client.
type Options struct {
	APIURL    string
	UserAgent string
	BatchSize int
	Timeout   time.Duration
	Verbose   bool
}

// Client is a PageSelector backed by the Action API.
type Client struct {
	http      *resty.Client
	apiURL    string
	batchSize int
	verbose   bool
}

// NewClient returns a client for the configured API endpoint.
func NewClient(opts Options) *Client {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.BatchSize <= 0 || opts.BatchSize > MaxTitlesPerRequest {
		opts.BatchSize = MaxTitlesPerRequest
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "application/json")

	return &Client{http: client, apiURL: opts.APIURL, batchSize: opts.BatchSize, verbose: opts.Verbose}
}

type queryResponse struct {
	Continue map[string]string `json:"continue"`
	Query struct {
		Normalized []titleMapping `json:"normalized"`
		Redirects  []titleMapping `json:"redirects"`
		Pages      []page         `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type titleMapping struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type page struct {
	Title     string `json:"title"`
	Missing   bool   `json:"missing"`
	Invalid   bool   `json:"invalid"`
	Revisions []struct {
		Slots struct {
			Main struct {
				Content string `json:"content"`
			} `json:"main"`
		} `json:"slots"`
	} `json:"revisions"`
}

// SelectPages implements PageSelector. Empty and duplicate titles are ignored.
func (c *Client) SelectPages(ctx context.Context, titles []string) (map[string]string, error) {
	unique := uniqueTitles(titles)
	pages := make(map[string]string, len(unique))

	for start := 0; start < len(unique); start += c.batchSize {
		end := min(start+c.batchSize, len(unique))
		batch := unique[start:end]
		found, err := c.queryBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		for title, content := range found {
			pages[title] = content
		}
		if c.verbose {
			log.Printf("[WIKI] batch %d-%d: %d/%d pages found", start, end, len(found), len(batch))
		}
	}
	return pages, nil
}

func (c *Client) queryBatch(ctx context.Context, batch []string) (map[string]string, error) {
	params := map[string]string{
		"action":        "query",
		"prop":          "revisions",
		"rvprop":        "content",
		"rvslots":       "main",
		"redirects":     "1",
		"format":        "json",
		"formatversion": "2",
		"titles":        strings.Join(batch, "|"),
	}

	var normalized, redirects []titleMapping
	content := make(map[string]string, len(batch))

	// Large batches come back in parts; each part carries the params for the next one.
	// One part always delivers at least one revision, so len(batch) parts is the worst case.
	for part := 0; part <= len(batch); part++ {
		parsed, err := c.query(ctx, params)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, parsed.Query.Normalized...)
		redirects = append(redirects, parsed.Query.Redirects...)
		for _, p := range parsed.Query.Pages {
			if p.Missing || p.Invalid || len(p.Revisions) == 0 {
				continue
			}
			content[p.Title] = p.Revisions[0].Slots.Main.Content
		}

		if len(parsed.Continue) == 0 {
			break
		}
		if part == len(batch) {
			return nil, &APIError{Message: fmt.Sprintf("continuation did not finish after %d requests", part+1)}
		}
		for k, v := range parsed.Continue {
			params[k] = v
		}
		if c.verbose {
			log.Printf("[WIKI] continuing batch with %v", parsed.Continue)
		}
	}

	resolved := make(map[string]string, len(batch))
	for _, requested := range batch {
		final := followMappings(requested, normalized, redirects)
		if text, ok := content[final]; ok {
			resolved[requested] = text
		}
	}
	return resolved, nil
}

func (c *Client) query(ctx context.Context, params map[string]string) (*queryResponse, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(c.apiURL)
	if err != nil {
		return nil, &APIError{Message: "request failed", Cause: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{Message: fmt.Sprintf("HTTP status %d", resp.StatusCode())}
	}

	body := resp.Body()
	if err := schemas.Validate(schemas.MediaWikiQuery, body); err != nil {
		return nil, &APIError{Message: "unexpected response shape", Cause: err}
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &APIError{Message: "failed to decode response", Cause: err}
	}
	if parsed.Error != nil {
		return nil, &APIError{Code: parsed.Error.Code, Message: parsed.Error.Info}
	}
	return &parsed, nil
}

// followMappings applies title normalization and then the redirect chain.
func followMappings(title string, normalized, redirects []titleMapping) string {
	for _, m := range normalized {
		if m.From == title {
			title = m.To
			break
		}
	}
	// redirects can chain; bound the walk so a loop cannot spin forever
	for i := 0; i <= len(redirects); i++ {
		next := ""
		for _, m := range redirects {
			if m.From == title {
				next = m.To
				break
			}
		}
		if next == "" || next == title {
			break
		}
		title = next
	}
	return title
}

func uniqueTitles(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
