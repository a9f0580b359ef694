// Package resolve maps company names to Wikipedia article titles.
package resolve

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// WikipediaPrefix is the link target prefix of English Wikipedia articles.
	WikipediaPrefix = "https://en.wikipedia.org/"
	// WikipediaLinkText is the visible label search engines put on the Wikipedia result.
	WikipediaLinkText = "Wikipedia"
)

// WikipediaLinks returns, in document order, the hrefs of anchors that point to
// English Wikipedia and whose trimmed text is exactly the Wikipedia label.
func WikipediaLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, WikipediaPrefix) {
			return
		}
		if strings.TrimSpace(a.Text()) != WikipediaLinkText {
			return
		}
		hrefs = append(hrefs, href)
	})
	return hrefs, nil
}

// ExtractTitle returns the article title of the first Wikipedia result link.
func ExtractTitle(html string) (string, bool, error) {
	hrefs, err := WikipediaLinks(html)
	if err != nil {
		return "", false, err
	}
	if len(hrefs) == 0 {
		return "", false, nil
	}
	title := TitleFromURL(hrefs[0])
	return title, title != "", nil
}

// TitleFromURL derives a readable article title from the last path segment of
// an article URL: percent-escapes are decoded and underscores become spaces.
func TitleFromURL(href string) string {
	// drop query and fragment before taking the last segment
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	segment := href[strings.LastIndex(href, "/")+1:]
	if decoded, err := url.PathUnescape(segment); err == nil {
		segment = decoded
	}
	return strings.ReplaceAll(segment, "_", " ")
}
