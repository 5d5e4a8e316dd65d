package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/searchmcp/models"
)

// Scraper renders a page. *scraper.Scraper implements it.
type Scraper interface {
	Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResult, error)
}

// Scrape returns a handler for POST /api/v1/scrape.
//
// Orchestration flow:
//  1. Parse request, apply defaults, validate.
//  2. Scraper.Scrape → result in the requested format.
//  3. Fill Timing, return 200.
func Scrape(sc Scraper, defaultTimeoutMs int) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{Success: false, Error: invalidBody(err)})
			return
		}
		req.Defaults(defaultTimeoutMs)
		if err := models.ValidateInput(&req); err != nil {
			se := asScrapeError(err)
			c.JSON(statusFor(se), models.ScrapeResponse{Success: false, Error: se.ToDetail()})
			return
		}

		// ── 2. Scrape ───────────────────────────────────────────────
		result, err := sc.Scrape(c.Request.Context(), &req)
		timing := models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
		if err != nil {
			se := asScrapeError(err)
			c.JSON(statusFor(se), models.ScrapeResponse{Success: false, Timing: timing, Error: se.ToDetail()})
			return
		}

		// ── 3. Respond ──────────────────────────────────────────────
		c.JSON(http.StatusOK, models.ScrapeResponse{Success: true, Result: result, Timing: timing})
	}
}
