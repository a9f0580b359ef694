package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/jonathan/stocks-graph/internal/fetch"
	"github.com/jonathan/stocks-graph/internal/schemas"
	"github.com/jonathan/stocks-graph/internal/types"
)

const (
	// DefaultDatasetsServerURL is the Hugging Face datasets-server rows endpoint.
	DefaultDatasetsServerURL = "https://datasets-server.huggingface.co/rows"
	// DefaultSP500Dataset holds the current S&P 500 constituents.
	DefaultSP500Dataset = "edarchimbaud/index-constituents-sp500"
	// SP500Country is stamped on every constituent.
	SP500Country = "United States"

	// datasetsServerMaxPage is the largest page the rows endpoint serves.
	datasetsServerMaxPage = 100
)

// SP500 loads index constituents from a dataset hosted on the Hugging Face hub.
type SP500 struct {
	BaseURL  string
	Dataset  string
	Config   string
	Split    string
	PageSize int
	Options  *fetch.Options
	Verbose  bool
}

// NewSP500 returns a fetcher for the given dataset, falling back to defaults for empty values.
func NewSP500(baseURL, dataset string, verbose bool) *SP500 {
	if baseURL == "" {
		baseURL = DefaultDatasetsServerURL
	}
	if dataset == "" {
		dataset = DefaultSP500Dataset
	}
	return &SP500{
		BaseURL:  baseURL,
		Dataset:  dataset,
		Config:   "default",
		Split:    "train",
		PageSize: datasetsServerMaxPage,
		Options:  fetch.DefaultOptions(),
		Verbose:  verbose,
	}
}

// Name implements Fetcher.
func (s *SP500) Name() string { return "sp500" }

type rowsResponse struct {
	NumRowsTotal int `json:"num_rows_total"`
	Rows         []struct {
		Row struct {
			Symbol          string `json:"symbol"`
			Security        string `json:"security"`
			GICSSector      string `json:"gics_sector"`
			GICSSubIndustry string `json:"gics_sub_industry"`
		} `json:"row"`
	} `json:"rows"`
}

// Fetch pages through the dataset split and returns every constituent.
func (s *SP500) Fetch(ctx context.Context) ([]types.Record, error) {
	pageSize := s.PageSize
	if pageSize <= 0 || pageSize > datasetsServerMaxPage {
		pageSize = datasetsServerMaxPage
	}

	var records []types.Record
	for offset := 0; ; {
		page, err := s.fetchPage(ctx, offset, pageSize)
		if err != nil {
			return nil, err
		}
		for _, r := range page.Rows {
			records = append(records, types.Record{
				Symbol:          types.NormalizeSymbol(r.Row.Symbol),
				Security:        r.Row.Security,
				Country:         SP500Country,
				GICSSector:      r.Row.GICSSector,
				GICSSubIndustry: r.Row.GICSSubIndustry,
			})
		}
		offset += len(page.Rows)
		if len(page.Rows) == 0 || offset >= page.NumRowsTotal {
			break
		}
	}

	if s.Verbose {
		log.Printf("[RAW] sp500: %d constituents from %s", len(records), s.Dataset)
	}
	return records, nil
}

func (s *SP500) fetchPage(ctx context.Context, offset, length int) (*rowsResponse, error) {
	q := url.Values{}
	q.Set("dataset", s.Dataset)
	q.Set("config", s.Config)
	q.Set("split", s.Split)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(length))
	pageURL := s.BaseURL + "?" + q.Encode()

	result, err := fetch.Get(ctx, pageURL, s.Options)
	if err != nil {
		return nil, &SourceError{Source: s.Name(), Message: fmt.Sprintf("download failed at offset %d", offset), Cause: err}
	}
	if err := schemas.Validate(schemas.DatasetRows, result.Body); err != nil {
		return nil, &SourceError{Source: s.Name(), Message: "unexpected response shape", Cause: err}
	}

	var page rowsResponse
	if err := json.Unmarshal(result.Body, &page); err != nil {
		return nil, &SourceError{Source: s.Name(), Message: "failed to decode response", Cause: err}
	}
	return &page, nil
}
