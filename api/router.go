// Package api serves the tools over HTTP: the MCP streamable transport at
// /mcp plus plain JSON endpoints under /api/v1.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/searchmcp/api/handler"
	"github.com/use-agent/searchmcp/api/middleware"
	"github.com/use-agent/searchmcp/config"
)

// Services are the backends behind the HTTP routes.
type Services struct {
	Scraper  handler.Scraper
	Searcher handler.Searcher
	Sitemaps handler.SitemapReader
	Browsers handler.BrowserStats

	// MCP serves the streamable HTTP transport, typically
	// server.NewStreamableHTTPServer.
	MCP http.Handler
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:    Recovery → Logger
//	Protected: Auth (if enabled) → RateLimit
//
// Health stays outside auth so monitoring probes always work. ctx bounds the
// rate limiter's background sweeper.
func NewRouter(ctx context.Context, cfg *config.Config, svc Services, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithWriter(gin.DefaultErrorWriter))

	v1 := r.Group("/api/v1")

	// Health needs no auth.
	v1.GET("/health", handler.Health(svc.Browsers, cfg.Server.Version, startTime))

	protected := []gin.HandlerFunc{}
	if cfg.Auth.Enabled {
		protected = append(protected, middleware.Auth(cfg.Auth.APIKeys))
	}
	protected = append(protected, middleware.RateLimit(ctx, cfg.RateLimit))

	api := v1.Group("", protected...)
	api.POST("/scrape", handler.Scrape(svc.Scraper, cfg.Scraper.DefaultTimeoutMs))
	api.POST("/search", handler.Search(svc.Searcher))
	api.POST("/map", handler.Map(svc.Sitemaps))

	if svc.MCP != nil {
		mcp := r.Group("/mcp", protected...)
		mcp.Any("", gin.WrapH(svc.MCP))
	}

	return r
}
