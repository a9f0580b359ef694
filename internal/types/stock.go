// Package types provides type definitions for the stock records that flow through the pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// Column names, in the order they are filled by the pipeline stages.
const (
	ColumnSymbol          = "symbol"
	ColumnSecurity        = "security"
	ColumnCountry         = "country"
	ColumnGICSSector      = "gics_sector"
	ColumnGICSSubIndustry = "gics_sub_industry"
	ColumnWikipediaTitle  = "wikipedia_title"
	ColumnWikipediaPage   = "wikipedia_page"
	ColumnCategories      = "categories"
)

// RawColumns are the columns produced by the merge stage.
var RawColumns = []string{
	ColumnSymbol,
	ColumnSecurity,
	ColumnCountry,
	ColumnGICSSector,
	ColumnGICSSubIndustry,
}

// ExpectedColumns is the projection written to the final dataset file.
var ExpectedColumns = []string{
	ColumnSymbol,
	ColumnSecurity,
	ColumnCountry,
	ColumnGICSSector,
	ColumnGICSSubIndustry,
	ColumnWikipediaTitle,
	ColumnCategories,
}

// Record is one security. Empty strings mean "not filled yet".
type Record struct {
	Symbol          string `json:"symbol"`
	Security        string `json:"security"`
	Country         string `json:"country"`
	GICSSector      string `json:"gics_sector"`
	GICSSubIndustry string `json:"gics_sub_industry"`
	WikipediaTitle  string `json:"wikipedia_title"`
	WikipediaPage   string `json:"wikipedia_page"`
	Categories      string `json:"categories"`
}

// Get returns the value of the named column.
func (r *Record) Get(column string) (string, error) {
	switch column {
	case ColumnSymbol:
		return r.Symbol, nil
	case ColumnSecurity:
		return r.Security, nil
	case ColumnCountry:
		return r.Country, nil
	case ColumnGICSSector:
		return r.GICSSector, nil
	case ColumnGICSSubIndustry:
		return r.GICSSubIndustry, nil
	case ColumnWikipediaTitle:
		return r.WikipediaTitle, nil
	case ColumnWikipediaPage:
		return r.WikipediaPage, nil
	case ColumnCategories:
		return r.Categories, nil
	}
	return "", fmt.Errorf("unknown column %q", column)
}

// Set assigns the value of the named column.
func (r *Record) Set(column, value string) error {
	switch column {
	case ColumnSymbol:
		r.Symbol = value
	case ColumnSecurity:
		r.Security = value
	case ColumnCountry:
		r.Country = value
	case ColumnGICSSector:
		r.GICSSector = value
	case ColumnGICSSubIndustry:
		r.GICSSubIndustry = value
	case ColumnWikipediaTitle:
		r.WikipediaTitle = value
	case ColumnWikipediaPage:
		r.WikipediaPage = value
	case ColumnCategories:
		r.Categories = value
	default:
		return fmt.Errorf("unknown column %q", column)
	}
	return nil
}

// IsKnownColumn reports whether column maps to a Record field.
func IsKnownColumn(column string) bool {
	var r Record
	_, err := r.Get(column)
	return err == nil
}

// NormalizeSymbol trims and uppercases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
