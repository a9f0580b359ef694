package sources

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/stocks-graph/internal/types"
)

// Merge concatenates the lists in order, keeps the first record per symbol and
// sorts by symbol. Earlier lists win on duplicates. Records without a symbol are dropped.
func Merge(lists ...[]types.Record) []types.Record {
	seen := make(map[string]struct{})
	var merged []types.Record
	for _, list := range lists {
		for _, rec := range list {
			if rec.Symbol == "" {
				continue
			}
			if _, dup := seen[rec.Symbol]; dup {
				continue
			}
			seen[rec.Symbol] = struct{}{}
			merged = append(merged, rec)
		}
	}
	slices.SortStableFunc(merged, func(a, b types.Record) int {
		return strings.Compare(a.Symbol, b.Symbol)
	})
	return merged
}

// FetchAll runs every fetcher concurrently and returns their results in fetcher order.
// The first error cancels the others and is returned.
func FetchAll(ctx context.Context, fetchers ...Fetcher) ([][]types.Record, error) {
	results := make([][]types.Record, len(fetchers))
	g, gCtx := errgroup.WithContext(ctx)
	for i, f := range fetchers {
		g.Go(func() error {
			records, err := f.Fetch(gCtx)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BuildRaw fetches every source and merges them into the raw table.
func BuildRaw(ctx context.Context, fetchers ...Fetcher) (*types.Table, error) {
	lists, err := FetchAll(ctx, fetchers...)
	if err != nil {
		return nil, err
	}
	t := types.NewTable(types.RawColumns)
	t.Records = Merge(lists...)
	return t, nil
}
