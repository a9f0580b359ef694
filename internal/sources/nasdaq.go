package sources

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/jonathan/stocks-graph/internal/fetch"
	"github.com/jonathan/stocks-graph/internal/schemas"
	"github.com/jonathan/stocks-graph/internal/types"
)

// DefaultNASDAQURL is the screener endpoint returning every listed stock.
const DefaultNASDAQURL = "https://api.nasdaq.com/api/screener/stocks?tableonly=true&download=true"

// commonStockMarker selects common shares among the screener's listings.
const commonStockMarker = "Common Stock"

// nameSuffixes are stripped from screener names, in order, to get the company name.
var nameSuffixes = []string{" Common Stock", " Inc.", " Inc", " Class A"}

// Fetcher retrieves one listing source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]types.Record, error)
}

// NASDAQ fetches listings from the NASDAQ stock screener API.
type NASDAQ struct {
	URL     string
	Options *fetch.Options
	Verbose bool
}

// NewNASDAQ returns a screener fetcher with browser-like request headers.
func NewNASDAQ(url string, verbose bool) *NASDAQ {
	if url == "" {
		url = DefaultNASDAQURL
	}
	opts := fetch.DefaultOptions()
	opts.Headers = NASDAQHeaders()
	return &NASDAQ{URL: url, Options: opts, Verbose: verbose}
}

// NASDAQHeaders returns the headers the screener API expects from a browser.
// The API rejects requests without an origin and referer on nasdaq.com.
func NASDAQHeaders() map[string]string {
	return map[string]string{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Origin":          "https://www.nasdaq.com",
		"Referer":         "https://www.nasdaq.com/",
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-site",
	}
}

// Name implements Fetcher.
func (n *NASDAQ) Name() string { return "nasdaq" }

type screenerResponse struct {
	Data struct {
		Rows []screenerRow `json:"rows"`
	} `json:"data"`
}

type screenerRow struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
}

// Fetch downloads the screener table and keeps common stocks only.
func (n *NASDAQ) Fetch(ctx context.Context) ([]types.Record, error) {
	result, err := fetch.Get(ctx, n.URL, n.Options)
	if err != nil {
		return nil, &SourceError{Source: n.Name(), Message: "download failed", Cause: err}
	}

	if err := schemas.Validate(schemas.NASDAQScreener, result.Body); err != nil {
		return nil, &SourceError{Source: n.Name(), Message: "unexpected response shape", Cause: err}
	}

	var resp screenerResponse
	if err := json.Unmarshal(result.Body, &resp); err != nil {
		return nil, &SourceError{Source: n.Name(), Message: "failed to decode response", Cause: err}
	}

	records := screenerRecords(resp.Data.Rows)
	if n.Verbose {
		log.Printf("[RAW] nasdaq: %d rows, %d common stocks", len(resp.Data.Rows), len(records))
	}
	return records, nil
}

func screenerRecords(rows []screenerRow) []types.Record {
	records := make([]types.Record, 0, len(rows))
	for _, row := range rows {
		if !strings.HasSuffix(row.Name, commonStockMarker) {
			continue
		}
		records = append(records, types.Record{
			Symbol:          types.NormalizeSymbol(row.Symbol),
			Security:        CleanSecurityName(row.Name),
			Country:         row.Country,
			GICSSector:      row.Sector,
			GICSSubIndustry: row.Industry,
		})
	}
	return records
}

// CleanSecurityName strips share-class and legal-form suffixes from a screener name.
func CleanSecurityName(name string) string {
	for _, suffix := range nameSuffixes {
		name = strings.ReplaceAll(name, suffix, "")
	}
	return name
}
