package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/jonathan/stocks-graph/internal/config"
	"github.com/jonathan/stocks-graph/internal/fetch"
	"github.com/jonathan/stocks-graph/internal/pipeline"
	"github.com/jonathan/stocks-graph/internal/resolve"
	"github.com/jonathan/stocks-graph/internal/sources"
	"github.com/jonathan/stocks-graph/internal/wikipedia"
)

// newStages wires the four stages in execution order. The search browser is
// only started if the title stage actually runs; prompts go through in/out.
func newStages(cfg config.Config, in io.Reader, out io.Writer) []pipeline.Stage {
	paths := pathsFor(cfg)

	nasdaq := sources.NewNASDAQ(cfg.NASDAQURL, cfg.Verbose)
	sp500 := sources.NewSP500(cfg.DatasetsServerURL, cfg.Dataset, cfg.Verbose)
	if cfg.UserAgent != "" {
		nasdaq.Options.UserAgent = cfg.UserAgent
		sp500.Options.UserAgent = cfg.UserAgent
	}

	searchOpts := resolve.DefaultSearchOptions()
	searchOpts.QuerySuffix = cfg.QuerySuffix
	searchOpts.Delay = cfg.SearchDelay()
	searchOpts.Verbose = cfg.Verbose
	provider := resolve.NewChromeSearchProvider(searchOpts, fetch.BrowserOptions{
		Headless:  cfg.Headless,
		UserAgent: cfg.UserAgent,
		Verbose:   cfg.Verbose,
	}, in, out)

	wiki := wikipedia.NewClient(wikipedia.Options{
		APIURL:    cfg.WikipediaAPIURL,
		UserAgent: cfg.UserAgent,
		BatchSize: cfg.BatchSize,
		Verbose:   cfg.Verbose,
	})

	return []pipeline.Stage{
		pipeline.NewRawStage(paths.Raw, cfg.Verbose, nasdaq, sp500),
		pipeline.NewTitleStage(paths.Raw, paths.Title, provider, cfg.SkipRowCount(), cfg.Verbose),
		pipeline.NewPageStage(paths.Title, paths.Page, wiki, cfg.Verbose),
		pipeline.NewCategoriesStage(paths.Page, paths.Categories, cfg.Verbose),
	}
}

// selectStages returns the stages up to and including the named one.
// Earlier stages run too when their output is missing.
func selectStages(stages []pipeline.Stage, name string) ([]pipeline.Stage, error) {
	for i, s := range stages {
		if s.Name() == name {
			return stages[:i+1], nil
		}
	}
	return nil, fmt.Errorf("unknown stage %q (valid: %v)", name, pipeline.StageNames)
}

// forceSet turns --force values into the runner's force map.
// "all" forces every stage.
func forceSet(names []string) (map[string]bool, error) {
	force := map[string]bool{}
	for _, n := range names {
		if n == "all" {
			for _, s := range pipeline.StageNames {
				force[s] = true
			}
			continue
		}
		if !slices.Contains(pipeline.StageNames, n) {
			return nil, fmt.Errorf("unknown stage %q (valid: %v)", n, pipeline.StageNames)
		}
		force[n] = true
	}
	return force, nil
}
