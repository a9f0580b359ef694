// Package wikitext extracts structured tags from raw MediaWiki markup.
package wikitext

import (
	"encoding/json"
	"regexp"
)

var categoryPattern = regexp.MustCompile(`\[\[Category:(.*?)\]\]`)

// Categories returns the names of every [[Category:...]] link in order of appearance.
// The result is never nil.
func Categories(markup string) []string {
	matches := categoryPattern.FindAllStringSubmatch(markup, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// EncodeCategories returns the column value for a page: "" for empty markup,
// otherwise a JSON array of the category names ("[]" when there are none).
func EncodeCategories(markup string) (string, error) {
	if markup == "" {
		return "", nil
	}
	data, err := json.Marshal(Categories(markup))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeCategories parses a categories column value. An empty value decodes to nil.
func DecodeCategories(value string) ([]string, error) {
	if value == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, err
	}
	return out, nil
}
