package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/stocks-graph/internal/types"
	"github.com/jonathan/stocks-graph/internal/wikitext"
)

// NodeFromRecord converts a final dataset record into a stock node
func NodeFromRecord(rec types.Record) (StockNode, error) {
	node := StockNode{
		Symbol:          rec.Symbol,
		Security:        rec.Security,
		Country:         rec.Country,
		GICSSector:      rec.GICSSector,
		GICSSubIndustry: rec.GICSSubIndustry,
		WikipediaTitle:  rec.WikipediaTitle,
	}
	if rec.Categories == "" {
		return node, nil
	}
	categories, err := wikitext.DecodeCategories(rec.Categories)
	if err != nil {
		return StockNode{}, fmt.Errorf("invalid categories for %s: %w", rec.Symbol, err)
	}
	node.Categories = categories
	return node, nil
}

// CountsFor summarizes a final table for the run record
func CountsFor(t *types.Table) RunCounts {
	return RunCounts{
		Total:       t.Len(),
		Titled:      t.CountFilled(types.ColumnWikipediaTitle),
		Categorized: t.CountFilled(types.ColumnCategories),
	}
}

// UpsertStocks writes every node in one transaction, keyed by symbol.
// Either every node is written or none is.
func (db *DB) UpsertStocks(ctx context.Context, runID uuid.UUID, nodes []StockNode) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, n := range nodes {
		batch.Queue(
			`INSERT INTO stock_nodes (symbol, security, country, gics_sector, gics_sub_industry, wikipedia_title, categories, run_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (symbol) DO UPDATE SET
			   security = EXCLUDED.security,
			   country = EXCLUDED.country,
			   gics_sector = EXCLUDED.gics_sector,
			   gics_sub_industry = EXCLUDED.gics_sub_industry,
			   wikipedia_title = EXCLUDED.wikipedia_title,
			   categories = EXCLUDED.categories,
			   run_id = EXCLUDED.run_id,
			   updated_at = NOW()`,
			n.Symbol, n.Security, n.Country, n.GICSSector, n.GICSSubIndustry, n.WikipediaTitle, n.Categories, runID,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for _, n := range nodes {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("failed to upsert stock %s: %w", n.Symbol, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to finish stock batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit stocks: %w", err)
	}
	return len(nodes), nil
}

// GetStock retrieves a stock node by symbol
func (db *DB) GetStock(ctx context.Context, symbol string) (*StockNode, error) {
	var n StockNode
	err := db.pool.QueryRow(ctx,
		`SELECT symbol, security, country, gics_sector, gics_sub_industry, wikipedia_title, categories, run_id, updated_at
		 FROM stock_nodes WHERE symbol = $1`,
		symbol,
	).Scan(&n.Symbol, &n.Security, &n.Country, &n.GICSSector, &n.GICSSubIndustry, &n.WikipediaTitle,
		&n.Categories, &n.RunID, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stock %s: %w", symbol, err)
	}
	return &n, nil
}

// ListStocksByCategory returns the symbols tagged with the category, in symbol order
func (db *DB) ListStocksByCategory(ctx context.Context, category string) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT symbol FROM stock_nodes WHERE $1 = ANY(categories) ORDER BY symbol`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stocks for category %s: %w", category, err)
	}
	symbols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan stocks for category %s: %w", category, err)
	}
	return symbols, nil
}

// ExportTable converts the final table and upserts it under a run record.
// The run is marked failed when the upsert fails.
func (db *DB) ExportTable(ctx context.Context, runID uuid.UUID, dataDir string, t *types.Table) (int, error) {
	nodes := make([]StockNode, 0, t.Len())
	for _, rec := range t.Records {
		n, err := NodeFromRecord(rec)
		if err != nil {
			return 0, err
		}
		nodes = append(nodes, n)
	}

	runID, err := db.CreateRun(ctx, runID, dataDir)
	if err != nil {
		return 0, err
	}

	written, err := db.UpsertStocks(ctx, runID, nodes)
	if err != nil {
		_ = db.CompleteRun(ctx, runID, RunStatusFailed, RunCounts{})
		return 0, err
	}

	if err := db.CompleteRun(ctx, runID, RunStatusCompleted, CountsFor(t)); err != nil {
		return written, err
	}
	return written, nil
}
