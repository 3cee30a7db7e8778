package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bmitrev/vesnik/app/api"
	"github.com/bmitrev/vesnik/app/article"
	"github.com/bmitrev/vesnik/app/catalog"
	"github.com/bmitrev/vesnik/app/cfg"
	"github.com/bmitrev/vesnik/app/fetcher"
	"github.com/bmitrev/vesnik/app/harvest"
	"github.com/bmitrev/vesnik/app/merge"
	"github.com/bmitrev/vesnik/app/query"
	"github.com/bmitrev/vesnik/app/store"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting vesnik", "version", appCfg.Version, "command", appCfg.Command)

	switch appCfg.Command {
	case "harvest":
		err = runHarvest(appCfg)
	case "consolidate":
		err = runConsolidate(appCfg)
	case "query":
		err = runQuery(appCfg)
	case "serve":
		err = runServe(appCfg)
	default:
		err = fmt.Errorf("unknown command %q (expected harvest, consolidate, query or serve)", appCfg.Command)
	}

	if err != nil {
		slog.Error("Command failed", "command", appCfg.Command, "error", err)
		os.Exit(1)
	}
}

// runHarvest walks the category catalog and extends each category's
// stored collection with newly published articles. Per-category
// failures are logged by the harvester and do not change the exit
// code; only a startup failure is fatal.
func runHarvest(appCfg *cfg.Cfg) error {
	articleStore := store.New(appCfg.DataDir)
	if err := articleStore.Init(); err != nil {
		return err
	}

	cat, err := catalog.Load(appCfg.CatalogFile)
	if err != nil {
		return err
	}

	client := fetcher.NewClient(
		appCfg.APIURL,
		appCfg.UserAgent,
		appCfg.PageSize,
		time.Duration(appCfg.Timeout)*time.Second,
		time.Duration(appCfg.Delay)*time.Millisecond,
	)

	harvester := harvest.NewHarvester(client, articleStore, article.NewNormalizer(), appCfg.MaxPages)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Harvesting catalog", "categories", cat.Len(), "data_dir", appCfg.DataDir)
	harvester.Run(ctx, cat)

	return nil
}

// runConsolidate flattens all category files into one deduplicated
// JSON array.
func runConsolidate(appCfg *cfg.Cfg) error {
	collections, err := loadCorpus(appCfg.DataDir)
	if err != nil {
		return err
	}
	if len(collections) == 0 {
		return fmt.Errorf("no category files found in %s", appCfg.DataDir)
	}

	result := merge.Run(collections)

	for _, stat := range result.Stats {
		slog.Info("Source merged", "category", stat.Category, "original", stat.Original, "unique", stat.Unique)
	}

	data, err := json.MarshalIndent(result.Articles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode consolidated corpus: %w", err)
	}
	if err := os.WriteFile(appCfg.Output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", appCfg.Output, err)
	}

	slog.Info("Consolidation finished",
		"output", appCfg.Output,
		"articles", len(result.Articles),
		"duplicates", result.Duplicates)

	return nil
}

// runQuery searches the corpus by keyword and/or scrape-date range,
// or prints corpus statistics when no filter is given.
func runQuery(appCfg *cfg.Cfg) error {
	collections, err := loadCorpus(appCfg.DataDir)
	if err != nil {
		return err
	}

	start, err := parseDateBound(appCfg.Start, false)
	if err != nil {
		return fmt.Errorf("invalid --start date: %w", err)
	}
	end, err := parseDateBound(appCfg.End, true)
	if err != nil {
		return fmt.Errorf("invalid --end date: %w", err)
	}

	if appCfg.Search == "" && start == nil && end == nil {
		stats := query.ComputeStats(collections)
		fmt.Printf("Categories: %d\n", stats.TotalCategories)
		fmt.Printf("Articles:   %d\n", stats.TotalArticles)
		fmt.Printf("Empty text: %d\n", stats.EmptyText)
		if stats.Earliest != nil && stats.Latest != nil {
			fmt.Printf("Scraped:    %s to %s\n",
				stats.Earliest.Format(time.RFC3339), stats.Latest.Format(time.RFC3339))
		}
		for _, row := range stats.PerCategory {
			fmt.Printf("  %-25s %d\n", row.Category, row.Count)
		}
		return nil
	}

	var matches []query.Match
	if appCfg.Search != "" {
		matches = query.Search(collections, appCfg.Search, appCfg.Category)
		if start != nil || end != nil {
			matches = query.FilterMatches(matches, start, end)
		}
	} else {
		matches = query.FilterByDateRange(collections, start, end)
	}

	for _, m := range matches {
		fmt.Printf("[%s] %s\n  %s\n", m.Category, m.Article.Title, m.Article.URL)
	}
	fmt.Printf("%d result(s)\n", len(matches))

	if appCfg.Export != "" {
		if err := query.Export(appCfg.Export, matches); err != nil {
			return err
		}
		slog.Info("Results exported", "path", appCfg.Export, "results", len(matches))
	}

	return nil
}

// parseDateBound parses a --start/--end value. Bare dates are
// accepted alongside full RFC3339 timestamps; an end bound covers the
// whole named day.
func parseDateBound(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return &ts, nil
	}

	ts, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", value)
	}
	if endOfDay {
		ts = ts.Add(24*time.Hour - time.Second)
	}

	return &ts, nil
}

// runServe exposes the harvested corpus over a read-only HTTP API.
func runServe(appCfg *cfg.Cfg) error {
	collections, err := loadCorpus(appCfg.DataDir)
	if err != nil {
		return err
	}

	handler := api.NewHandler(collections, appCfg.Version)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}

// loadCorpus loads all category collections, logging and skipping
// corrupt files.
func loadCorpus(dataDir string) (map[string][]article.Article, error) {
	articleStore := store.New(dataDir)

	collections, failures, err := articleStore.LoadAll()
	if err != nil {
		return nil, err
	}

	for category, loadErr := range failures {
		slog.Warn("Skipping unreadable category file", "category", category, "error", loadErr)
	}

	slog.Info("Corpus loaded", "categories", len(collections), "unreadable", len(failures))
	return collections, nil
}
