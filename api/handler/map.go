package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/searchmcp/models"
)

// SitemapReader lists the URLs of a sitemap. *sitemap.Reader implements it.
type SitemapReader interface {
	Read(ctx context.Context, req *models.MapRequest) (*models.MapResult, error)
}

// Map returns a handler for POST /api/v1/map.
func Map(sm SitemapReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.MapRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.MapResponse{Success: false, Error: invalidBody(err)})
			return
		}
		if err := models.ValidateInput(&req); err != nil {
			e := asScrapeError(err)
			c.JSON(statusFor(e), models.MapResponse{Success: false, Error: e.ToDetail()})
			return
		}

		result, err := sm.Read(c.Request.Context(), &req)
		timing := models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
		if err != nil {
			e := asScrapeError(err)
			c.JSON(statusFor(e), models.MapResponse{Success: false, Timing: timing, Error: e.ToDetail()})
			return
		}

		c.JSON(http.StatusOK, models.MapResponse{
			Success: true,
			URLs:    result.URLs,
			Kind:    result.Kind,
			Total:   len(result.URLs),
			Timing:  timing,
		})
	}
}
