package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/searchmcp/api"
	"github.com/use-agent/searchmcp/browser"
	"github.com/use-agent/searchmcp/cleaner"
	"github.com/use-agent/searchmcp/config"
	"github.com/use-agent/searchmcp/scraper"
	"github.com/use-agent/searchmcp/search"
	"github.com/use-agent/searchmcp/sitemap"
	"github.com/use-agent/searchmcp/tools"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	// stdout carries the stdio transport, so logs always go to stderr.
	initLogger(cfg.Log)
	slog.Info("searchmcp starting",
		"transport", cfg.Server.Transport,
		"version", cfg.Server.Version,
		"locale", cfg.Locale,
	)

	// ── 3. Backends ─────────────────────────────────────────────────
	// The browser is launched lazily by the first scrape.
	browsers := browser.NewManager(browser.NewRodLauncher(cfg.Browser))
	defer func() {
		if err := browsers.Close(); err != nil {
			slog.Warn("failed to close browser", "error", err)
		}
	}()

	sc := scraper.NewScraper(browsers, cleaner.NewCleaner())
	se := search.NewClient(cfg.Search)
	sm := sitemap.NewReader(cfg.Sitemap)

	if cfg.Search.APIKey == "" || cfg.Search.CX == "" {
		slog.Warn("search tool is not configured: set GOOGLE_API_KEY and GOOGLE_CX_ID")
	}

	// ── 4. MCP server ───────────────────────────────────────────────
	s := server.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	tools.NewHandlers(sc, se, sm, tools.NewLocalizer(cfg.Locale), cfg.Scraper.DefaultTimeoutMs).Register(s)

	// ── 5. Serve ────────────────────────────────────────────────────
	var err error
	switch cfg.Server.Transport {
	case "http":
		err = serveHTTP(cfg, s, api.Services{
			Scraper:  sc,
			Searcher: se,
			Sitemaps: sm,
			Browsers: browsers,
		})
	default:
		err = server.ServeStdio(s)
	}
	if err != nil && !isShutdown(err) {
		slog.Error("server error", "error", err)
		if cerr := browsers.Close(); cerr != nil {
			slog.Warn("failed to close browser", "error", cerr)
		}
		os.Exit(1)
	}

	slog.Info("searchmcp stopped")
}

// serveHTTP exposes the MCP streamable transport and the JSON API until
// SIGINT or SIGTERM.
func serveHTTP(cfg *config.Config, s *server.MCPServer, svc api.Services) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mcpHTTP := server.NewStreamableHTTPServer(s)
	svc.MCP = mcpHTTP

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(ctx, cfg, svc, time.Now()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give in-flight requests 5 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := mcpHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Warn("MCP sessions forced closed", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}
	return nil
}

// isShutdown reports whether err only signals a requested stop. The stdio
// transport cancels its own context on SIGINT or SIGTERM.
func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled)
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
