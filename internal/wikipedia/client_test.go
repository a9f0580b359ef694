package wikipedia

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wikiServer answers queries from a fixed set of articles and redirects.
func wikiServer(t *testing.T, articles map[string]string, redirects map[string]string) (*httptest.Server, *[][]string) {
	t.Helper()
	var batches [][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "query", q.Get("action"))
		assert.Equal(t, "2", q.Get("formatversion"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		titles := strings.Split(q.Get("titles"), "|")
		batches = append(batches, titles)

		type mapping struct {
			From string `json:"from"`
			To   string `json:"to"`
		}
		var normalized, redirs []mapping
		var pages []map[string]any
		for _, title := range titles {
			final := title
			if n := strings.ToUpper(final[:1]) + final[1:]; n != final {
				normalized = append(normalized, mapping{From: final, To: n})
				final = n
			}
			if to, ok := redirects[final]; ok {
				redirs = append(redirs, mapping{From: final, To: to})
				final = to
			}
			text, ok := articles[final]
			if !ok {
				pages = append(pages, map[string]any{"ns": 0, "title": final, "missing": true})
				continue
			}
			pages = append(pages, map[string]any{
				"pageid": 1, "ns": 0, "title": final,
				"revisions": []any{map[string]any{"slots": map[string]any{"main": map[string]any{
					"contentmodel": "wikitext", "content": text,
				}}}},
			})
		}
		query := map[string]any{"pages": pages}
		if len(normalized) > 0 {
			query["normalized"] = normalized
		}
		if len(redirs) > 0 {
			query["redirects"] = redirs
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"batchcomplete": true, "query": query})
	}))
	return server, &batches
}

func TestSelectPages(t *testing.T) {
	server, batches := wikiServer(t,
		map[string]string{
			"Apple Inc.": "Apple [[Category:Tech]]",
			"Alphabet Inc.": "Alphabet [[Category:Google]]",
		},
		map[string]string{"Google": "Alphabet Inc."},
	)
	defer server.Close()

	c := NewClient(Options{APIURL: server.URL})
	pages, err := c.SelectPages(context.Background(), []string{"Apple Inc.", "", "Google", "Apple Inc.", "Nope Corp"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Apple Inc.": "Apple [[Category:Tech]]",
		"Google":     "Alphabet [[Category:Google]]",
	}, pages)
	require.Len(t, *batches, 1)
	assert.Equal(t, []string{"Apple Inc.", "Google", "Nope Corp"}, (*batches)[0])
}

func TestSelectPages_Normalization(t *testing.T) {
	server, _ := wikiServer(t, map[string]string{"Microsoft": "markup"}, nil)
	defer server.Close()

	pages, err := NewClient(Options{APIURL: server.URL}).SelectPages(context.Background(), []string{"microsoft"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"microsoft": "markup"}, pages)
}

func TestSelectPages_Batches(t *testing.T) {
	server, batches := wikiServer(t, map[string]string{"A": "a", "B": "b", "C": "c"}, nil)
	defer server.Close()

	c := NewClient(Options{APIURL: server.URL, BatchSize: 2})
	pages, err := c.SelectPages(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Len(t, pages, 3)
	assert.Equal(t, [][]string{{"A", "B"}, {"C"}}, *batches)
}

func TestSelectPages_NoTitlesNoRequests(t *testing.T) {
	server, batches := wikiServer(t, nil, nil)
	defer server.Close()

	pages, err := NewClient(Options{APIURL: server.URL}).SelectPages(context.Background(), []string{"", ""})
	require.NoError(t, err)
	assert.Empty(t, pages)
	assert.Empty(t, *batches)
}

func TestSelectPages_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":"toomanyvalues","info":"Too many values supplied for parameter \"titles\"."}}`))
	}))
	defer server.Close()

	_, err := NewClient(Options{APIURL: server.URL}).SelectPages(context.Background(), []string{"A"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "toomanyvalues", apiErr.Code)
}

func TestSelectPages_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewClient(Options{APIURL: server.URL}).SelectPages(context.Background(), []string{"A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFollowMappings_RedirectLoop(t *testing.T) {
	redirects := []titleMapping{{From: "A", To: "B"}, {From: "B", To: "A"}}
	got := followMappings("A", nil, redirects)
	assert.Contains(t, []string{"A", "B"}, got)
}

func TestSelectPages_FollowsContinuation(t *testing.T) {
	var continues []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rv := r.URL.Query().Get("rvcontinue")
		continues = append(continues, rv)
		assert.Equal(t, "Apple Inc.|Microsoft", r.URL.Query().Get("titles"))
		if rv == "" {
			_, _ = w.Write([]byte(`{"continue":{"rvcontinue":"2|2","continue":"||"},"query":{"pages":[
				{"title":"Apple Inc.","revisions":[{"slots":{"main":{"content":"[[Category:Tech]]"}}}]},
				{"title":"Microsoft"}]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"batchcomplete":true,"query":{"pages":[
			{"title":"Apple Inc."},
			{"title":"Microsoft","revisions":[{"slots":{"main":{"content":"[[Category:Software]]"}}}]}]}}`))
	}))
	defer server.Close()

	pages, err := NewClient(Options{APIURL: server.URL}).SelectPages(context.Background(), []string{"Apple Inc.", "Microsoft"})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "2|2"}, continues)
	assert.Equal(t, map[string]string{
		"Apple Inc.": "[[Category:Tech]]",
		"Microsoft":  "[[Category:Software]]",
	}, pages)
}

func TestSelectPages_ContinuationNeverEnds(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"continue":{"rvcontinue":"1|1"},"query":{"pages":[{"title":"A"}]}}`))
	}))
	defer server.Close()

	_, err := NewClient(Options{APIURL: server.URL}).SelectPages(context.Background(), []string{"A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "continuation")
	assert.Equal(t, 2, calls)
}
