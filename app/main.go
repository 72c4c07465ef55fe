package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/findash/articledesk/app/api"
	"github.com/findash/articledesk/app/article"
	"github.com/findash/articledesk/app/backend"
	"github.com/findash/articledesk/app/cfg"
	"github.com/findash/articledesk/app/favorites"
	"github.com/findash/articledesk/app/session"
	"github.com/findash/articledesk/app/store"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)
	slog.Info("Starting Article Desk", "version", appCfg.Version)

	sess := session.New(appCfg.AuthToken)

	client := backend.NewClient(backend.Options{
		BaseURL:   appCfg.BackendURL,
		Timeout:   time.Duration(appCfg.BackendTimeout) * time.Second,
		UserAgent: appCfg.UserAgent,
		RPS:       appCfg.BackendRPS,
	}, sess)

	classifier := article.NewClassifier()
	if appCfg.SourceRulesFile != "" {
		classifier, err = article.NewClassifierFromFile(appCfg.SourceRulesFile)
		if err != nil {
			slog.Error("Failed to load source rules", "file", appCfg.SourceRulesFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Source rules loaded", "file", appCfg.SourceRulesFile, "rules", classifier.RuleCount())
	}

	articleStore := store.New(client, appCfg.SavedLimit)
	reconciler := favorites.NewReconciler(client, sess)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial load; the service still starts when the backend is down, the
	// UI just sees an empty collection until a refresh succeeds.
	if count, err := articleStore.Refresh(ctx); err != nil {
		slog.Warn("Initial article load failed", "error", err)
	} else {
		slog.Info("Articles loaded", "count", count)
	}

	if sess.Authenticated() {
		if err := reconciler.Load(ctx); err != nil {
			slog.Warn("Initial favorites load failed", "error", err)
		}
	} else {
		slog.Info("No auth token configured, favorite operations disabled")
	}

	var wg sync.WaitGroup
	articleStore.StartPeriodicRefresh(ctx,
		time.Duration(appCfg.RefreshInterval)*time.Second, &wg)

	apiHandler := api.NewHandler(articleStore, reconciler, classifier,
		appCfg.TimelineLimit, splitList(appCfg.ScrapeWebsites))
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

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
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	cancel()
	wg.Wait()

	slog.Info("Article Desk shutdown complete")
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}
