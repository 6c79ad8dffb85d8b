package main

import (
	"fmt"
	"strings"
	_ "time/tzdata" // Asia/Manila on hosts without a zoneinfo database

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/grantscraper/internal/corpus"
	"github.com/pdiddy/grantscraper/internal/httputil"
	"github.com/pdiddy/grantscraper/internal/ingest"
	"github.com/pdiddy/grantscraper/internal/logger"
	"github.com/pdiddy/grantscraper/internal/sources"
	"github.com/pdiddy/grantscraper/pkg/types"
)

// app bundles what every command needs after config is loaded.
type app struct {
	cfg   types.Config
	log   logger.Logger
	store *corpus.Store
}

func newApp() (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log}, nil
}

// openStore opens the corpus on first use.
func (a *app) openStore() (*corpus.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := corpus.Open(a.cfg.Corpus.Path)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.log.Sync()
}

// extractors builds the enabled extractors, or exactly those named in only.
func (a *app) extractors(only []string) ([]sources.Extractor, error) {
	fetcher := httputil.NewFetcher(a.cfg.HTTP)
	return sources.Build(a.cfg.Extraction, fetcher, a.log, only)
}

// pipeline wires extractors and the corpus gateway.
func (a *app) pipeline(only []string, gw corpus.Gateway) (*ingest.Pipeline, error) {
	exs, err := a.extractors(only)
	if err != nil {
		return nil, err
	}
	p, err := a.corpusPipeline(gw)
	if err != nil {
		return nil, err
	}
	p.Extractors = exs
	return p, nil
}

// corpusPipeline returns a pipeline without extractors, for corpus-only jobs.
func (a *app) corpusPipeline(gw corpus.Gateway) (*ingest.Pipeline, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	return &ingest.Pipeline{
		Corpus:        gw,
		Log:           a.log,
		SourceTimeout: a.cfg.Extraction.SourceTimeout,
		Location:      loc,
	}, nil
}

// sourcesFlag reads a comma-separated --sources flag.
func sourcesFlag(cmd *cobra.Command) []string {
	raw, _ := cmd.Flags().GetStringSlice("sources")
	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func addSourcesFlag(cmd *cobra.Command) {
	cmd.Flags().StringSlice("sources", nil,
		fmt.Sprintf("only run these sources (known: %s)", strings.Join(sources.Names(), ", ")))
}
