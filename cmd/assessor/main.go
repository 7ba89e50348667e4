// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/assessor"
	"github.com/poiesic/assessor/api"
	"github.com/poiesic/assessor/config"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/evaluation"
	"github.com/poiesic/assessor/recommend"
	"github.com/poiesic/assessor/storage"
	"github.com/poiesic/assessor/storage/valkey"
)

const configKey = "config"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	engineFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "catalog",
			Usage: "Path to the catalog CSV",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.StringFlag{
			Name:  "cache-path",
			Usage: "BadgerDB directory for cached catalog embeddings",
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of catalog records embedded and scored per batch",
		},
	}

	return &cli.App{
		Name:      "assessor",
		Usage:     "Recommend assessments for job descriptions and queries",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Set logging format (text, json)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the recommendation HTTP API",
				Action: serveCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
					},
					&cli.StringFlag{
						Name:  "valkey-addr",
						Usage: "Valkey address for the recommendation cache",
					},
				}, engineFlags...),
			},
			{
				Name:      "recommend",
				Usage:     "Recommend assessments for a query",
				ArgsUsage: "<query>",
				Action:    recommendCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: recommend.DefaultLimit,
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Trace each pipeline stage on stderr",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
				}, engineFlags...),
			},
			{
				Name:   "evaluate",
				Usage:  "Compute Recall@K and MAP@K over labelled queries",
				Action: evaluateCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "cases",
						Usage:    "CSV with query and relevant_assessments columns",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Cut-off rank",
						Value: evaluation.DefaultK,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full report as JSON",
					},
				}, engineFlags...),
			},
			{
				Name:   "warm-cache",
				Usage:  "Embed the catalog into the vector cache",
				Action: warmCacheCommand,
				Flags:  engineFlags,
			},
		},
	}
}

// setup loads the configuration, applies global flag overrides and
// installs the default logger.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.Log.Format = v
	}
	logger, err := setupLogger(c.App.ErrWriter, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func setupLogger(w io.Writer, levelStr, format string) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be one of text, json", format)
	}
}

// commandConfig returns the loaded configuration with command flag
// overrides applied.
func commandConfig(c *cli.Context) (*config.Config, error) {
	cfg, ok := c.App.Metadata[configKey].(*config.Config)
	if !ok {
		return nil, errors.New("configuration not loaded")
	}
	if c.IsSet("catalog") {
		cfg.Catalog.Path = c.String("catalog")
	}
	if c.IsSet("embedding-host") {
		cfg.Embedding.Host = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		cfg.Embedding.Model = c.String("embedding-model")
	}
	if c.IsSet("cache-path") {
		cfg.Cache.VectorPath = c.String("cache-path")
	}
	if c.IsSet("batch-size") {
		cfg.Catalog.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("addr") {
		cfg.HTTP.Address = c.String("addr")
	}
	if c.IsSet("valkey-addr") {
		cfg.Cache.ValkeyAddr = c.String("valkey-addr")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func engineOptions(cfg *config.Config, progress io.Writer) []assessor.Option {
	opts := []assessor.Option{
		assessor.WithAIConfig(cfg.AIConfig()),
		assessor.WithBatchSize(cfg.Catalog.BatchSize),
		assessor.WithCandidatePool(cfg.Recommend.CandidatePool),
		assessor.WithFetchTimeout(cfg.Recommend.FetchTimeout),
	}
	if cfg.Cache.VectorPath != "" {
		opts = append(opts, assessor.WithVectorCachePath(cfg.Cache.VectorPath))
	}
	if progress != nil {
		opts = append(opts, assessor.WithProgress(progress))
	}
	return opts
}

func serveCommand(c *cli.Context) error {
	cfg, err := commandConfig(c)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()
	opts := engineOptions(cfg, c.App.ErrWriter)
	if cache := openResultCache(ctx, cfg.Cache, logger); cache != nil {
		opts = append(opts, assessor.WithResultCache(cache, cfg.Recommend.ResultTTL))
	}

	engine, err := assessor.Open(ctx, cfg.Catalog.Path, opts...)
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer engine.Close()

	router := api.NewRouter(api.NewHandler(engine.Recommender(), engine.Catalog(), logger), logger)
	srv := api.NewServer(cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTP.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openResultCache returns the Valkey cache when it is configured and
// reachable, otherwise the in-process cache. It returns nil when the
// in-process cache is disabled and Valkey is not available.
func openResultCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) storage.ResultCache {
	if cfg.ValkeyAddr != "" {
		cache, err := valkey.Open(ctx, cfg.ValkeyAddr, cfg.ValkeyPrefix)
		if err == nil {
			logger.Info("valkey result cache enabled", "addr", cfg.ValkeyAddr)
			return cache
		}
		logger.Error("valkey unavailable, falling back to memory cache", "addr", cfg.ValkeyAddr, "err", err)
	}
	if !cfg.MemoryResults {
		return nil
	}
	return storage.NewMemoryResultCache()
}

func recommendCommand(c *cli.Context) error {
	q := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(q) == "" {
		return errors.New("a query is required")
	}
	cfg, err := commandConfig(c)
	if err != nil {
		return err
	}

	engine, err := assessor.Open(c.Context, cfg.Catalog.Path, engineOptions(cfg, nil)...)
	if err != nil {
		return err
	}
	defer engine.Close()

	var monitor recommend.Monitor
	if c.Bool("explain") {
		monitor = recommend.NewTextMonitor(c.App.ErrWriter)
	}
	rec, err := engine.Recommender().RecommendWithMonitor(c.Context, q, c.Int("limit"), monitor)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	return printResults(c.App.Writer, rec.Results)
}

func printResults(w io.Writer, results []core.RankedResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No matching assessments found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tSCORE\tDURATION\tREMOTE\tADAPTIVE\tURL")
	for i, r := range results {
		duration := "-"
		if r.Record.DurationMinutes != nil {
			duration = fmt.Sprintf("%d min", *r.Record.DurationMinutes)
		}
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%s\t%s\t%s\t%s\n",
			i+1,
			r.Record.Name,
			core.RoundScore(r.Score),
			duration,
			core.YesNo(r.Record.RemoteSupported),
			core.YesNo(r.Record.AdaptiveSupported),
			core.AbsoluteURL(r.Record.URL, r.Record.Name),
		)
	}
	return tw.Flush()
}

func evaluateCommand(c *cli.Context) error {
	cfg, err := commandConfig(c)
	if err != nil {
		return err
	}

	f, err := os.Open(c.String("cases"))
	if err != nil {
		return fmt.Errorf("failed to open cases: %w", err)
	}
	defer f.Close()
	cases, err := evaluation.LoadCases(f)
	if err != nil {
		return fmt.Errorf("failed to read cases: %w", err)
	}

	engine, err := assessor.Open(c.Context, cfg.Catalog.Path, engineOptions(cfg, nil)...)
	if err != nil {
		return err
	}
	defer engine.Close()

	report, err := evaluation.Evaluate(c.Context, engine.Recommender(), cases, c.Int("k"))
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(c.App.Writer, "Evaluation Results (%d queries):\n", len(report.Cases))
	fmt.Fprintf(c.App.Writer, "Mean Recall@%d: %.4f\n", report.K, report.MeanRecall)
	fmt.Fprintf(c.App.Writer, "Mean MAP@%d: %.4f\n", report.K, report.MeanAP)
	return nil
}

func warmCacheCommand(c *cli.Context) error {
	cfg, err := commandConfig(c)
	if err != nil {
		return err
	}
	if cfg.Cache.VectorPath == "" {
		return errors.New("cache-path is required")
	}

	fmt.Fprintf(c.App.ErrWriter, "Catalog: %s\n", cfg.Catalog.Path)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintf(c.App.ErrWriter, "Cache: %s\n", cfg.Cache.VectorPath)
	fmt.Fprintln(c.App.ErrWriter)

	engine, err := assessor.Open(c.Context, cfg.Catalog.Path, engineOptions(cfg, c.App.ErrWriter)...)
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Fprintf(c.App.Writer, "Cached %d embeddings of dimension %d\n", engine.Catalog().Size(), engine.Catalog().Dimension())
	return nil
}
