package resolve

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsHTML = `
<div id="search">
  <div class="g"><a href="https://www.apple.com/">Apple</a></div>
  <div class="g"><a href="https://en.wikipedia.org/wiki/Apple_Inc.">Apple Inc. - Wikipedia</a></div>
  <div class="kp"><a href="https://en.wikipedia.org/wiki/Apple_Inc.">  Wikipedia </a></div>
  <div class="kp"><a href="https://en.wikipedia.org/wiki/Apple_(fruit)">Wikipedia</a></div>
  <div class="kp"><a href="https://de.wikipedia.org/wiki/Apple">Wikipedia</a></div>
</div>`

func TestWikipediaLinks(t *testing.T) {
	hrefs, err := WikipediaLinks(resultsHTML)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://en.wikipedia.org/wiki/Apple_Inc.",
		"https://en.wikipedia.org/wiki/Apple_(fruit)",
	}, hrefs)
}

func TestExtractTitle_FirstMatch(t *testing.T) {
	title, found, err := ExtractTitle(resultsHTML)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Apple Inc.", title)
}

func TestExtractTitle_NoMatch(t *testing.T) {
	title, found, err := ExtractTitle(`<a href="https://example.com">Wikipedia</a><a href="https://en.wikipedia.org/wiki/X">X</a>`)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, title)
}

func TestTitleFromURL(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"https://en.wikipedia.org/wiki/Apple_Inc.", "Apple Inc."},
		{"https://en.wikipedia.org/wiki/AT%26T", "AT&T"},
		{"https://en.wikipedia.org/wiki/Alphabet_Inc.#History", "Alphabet Inc."},
		{"https://en.wikipedia.org/wiki/3M?oldid=1", "3M"},
		{"https://en.wikipedia.org/wiki/Bad%zzEscape", "Bad%zzEscape"},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromURL(tt.href))
		})
	}
}

func TestSearchQuery(t *testing.T) {
	assert.Equal(t, "Apple company", SearchQuery("Apple", "company"))
	assert.Equal(t, "Apple", SearchQuery("Apple", ""))
}

type fakeBrowser struct {
	visited []string
	pages   map[string]string
	closed  bool
	navErr  error
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	if b.navErr != nil {
		return b.navErr
	}
	b.visited = append(b.visited, url)
	return nil
}

func (b *fakeBrowser) BodyHTML(_ context.Context) (string, error) {
	last := b.visited[len(b.visited)-1]
	for q, html := range b.pages {
		if strings.HasSuffix(last, q) {
			return html, nil
		}
	}
	return "<p>no results</p>", nil
}

func (b *fakeBrowser) Close() { b.closed = true }

func newTestProvider(b *fakeBrowser, confirms *int) *SearchProvider {
	opts := DefaultSearchOptions()
	p := NewSearchProvider(opts,
		func(context.Context) (Browser, error) { return b, nil },
		func(context.Context) error { *confirms++; return nil },
	)
	p.sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func TestSearchProvider_Resolve(t *testing.T) {
	b := &fakeBrowser{pages: map[string]string{"q=Apple+company": resultsHTML}}
	confirms := 0
	p := newTestProvider(b, &confirms)

	title, found, err := p.Resolve(context.Background(), "Apple")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Apple Inc.", title)

	title, found, err = p.Resolve(context.Background(), "Nothing Corp")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, title)

	// home page once, then one search per name
	assert.Equal(t, []string{
		DefaultHomeURL,
		DefaultSearchURL + "Apple+company",
		DefaultSearchURL + "Nothing+Corp+company",
	}, b.visited)
	assert.Equal(t, 1, confirms)

	require.NoError(t, p.Close())
	assert.True(t, b.closed)
}

func TestSearchProvider_WaitsDelay(t *testing.T) {
	b := &fakeBrowser{}
	confirms := 0
	p := newTestProvider(b, &confirms)
	var waited []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		waited = append(waited, d)
		return nil
	}

	_, _, err := p.Resolve(context.Background(), "Apple")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{DefaultDelay}, waited)
}

func TestSearchProvider_NavigationError(t *testing.T) {
	b := &fakeBrowser{navErr: errors.New("net::ERR_INTERNET_DISCONNECTED")}
	confirms := 0
	p := newTestProvider(b, &confirms)

	_, _, err := p.Resolve(context.Background(), "Apple")
	require.Error(t, err)
	assert.True(t, b.closed)
	assert.Equal(t, 0, confirms)
}

func TestSearchProvider_ConfirmError(t *testing.T) {
	b := &fakeBrowser{}
	p := NewSearchProvider(DefaultSearchOptions(),
		func(context.Context) (Browser, error) { return b, nil },
		func(context.Context) error { return errors.New("stdin closed") },
	)

	_, _, err := p.Resolve(context.Background(), "Apple")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operator confirmation failed")
	assert.True(t, b.closed)
}

func TestSearchProvider_CancelledDuringDelay(t *testing.T) {
	b := &fakeBrowser{}
	p := NewSearchProvider(SearchOptions{Delay: time.Hour},
		func(context.Context) (Browser, error) { return b, nil }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, _, err := p.Resolve(ctx, "Apple")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPromptConfirm(t *testing.T) {
	var out bytes.Buffer
	confirm := PromptConfirm(strings.NewReader("\n"), &out, "ready? ")
	require.NoError(t, confirm(context.Background()))
	assert.Equal(t, "ready? ", out.String())
}

func TestPromptConfirm_EOFCounts(t *testing.T) {
	confirm := PromptConfirm(strings.NewReader(""), &bytes.Buffer{}, "ready? ")
	assert.NoError(t, confirm(context.Background()))
}

func TestProviderFunc(t *testing.T) {
	p := ProviderFunc(func(_ context.Context, name string) (string, bool, error) {
		return name + " (company)", true, nil
	})
	title, found, err := p.Resolve(context.Background(), "Mercury")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Mercury (company)", title)
}
