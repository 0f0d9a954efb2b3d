package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/payee-cli/internal/classify"
	"github.com/sells-group/payee-cli/internal/ingest"
	"github.com/sells-group/payee-cli/internal/model"
	"github.com/sells-group/payee-cli/internal/store"
	"github.com/sells-group/payee-cli/pkg/anthropic"
)

// initStore opens the configured persistence backend and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.Path)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// classifyConfig maps file/env configuration onto a run config, with CLI
// overrides applied by callers afterward.
func classifyConfig() classify.Config {
	ccfg := classify.DefaultConfig()
	if cfg.Anthropic.Model != "" {
		ccfg.Model = cfg.Anthropic.Model
	}
	if cfg.Anthropic.MaxTokens > 0 {
		ccfg.MaxTokens = cfg.Anthropic.MaxTokens
	}
	if cfg.Classify.AIThreshold > 0 {
		ccfg.AIThreshold = cfg.Classify.AIThreshold
	}
	if cfg.Classify.ConsensusRuns > 0 {
		ccfg.ConsensusRuns = cfg.Classify.ConsensusRuns
	}
	if cfg.Classify.MaxConcurrency > 0 {
		ccfg.MaxConcurrency = cfg.Classify.MaxConcurrency
	}
	if cfg.Classify.RequestsPerSecond > 0 {
		ccfg.RequestsPerSecond = cfg.Classify.RequestsPerSecond
	}
	ccfg.SkipRules = cfg.Classify.SkipRules
	ccfg.Offline = cfg.Classify.Offline
	return ccfg
}

// initClassifier builds the tiered classifier from config. The Anthropic
// client is nil in offline mode.
func initClassifier(ccfg classify.Config) (*classify.TieredClassifier, error) {
	var client anthropic.Client
	if !ccfg.Offline {
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("anthropic.key is required unless running offline")
		}
		client = anthropic.NewClient(cfg.Anthropic.Key)
	}
	cache := classify.NewCache(cfg.Classify.CacheTTL())
	return classify.NewTieredClassifier(client, ccfg, cache), nil
}

// readNamesFile loads payee names from a CSV or XLSX file, selecting the
// payee column by header name.
func readNamesFile(ctx context.Context, path, column string) ([]model.RawName, []map[string]string, error) {
	var (
		table *ingest.Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		table, err = ingest.ReadXLSX(path, ingest.XLSXOptions{})
	case ".csv", ".txt", "":
		f, ferr := os.Open(path)
		if ferr != nil {
			return nil, nil, eris.Wrapf(ferr, "open %s", path)
		}
		defer f.Close()
		table, err = ingest.ReadCSV(ctx, f, ingest.CSVOptions{TrimSpace: true})
	default:
		return nil, nil, eris.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, nil, eris.Wrapf(err, "read %s", path)
	}
	return table.Select(column)
}
