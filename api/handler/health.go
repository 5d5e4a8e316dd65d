package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/searchmcp/models"
)

// BrowserStats reports the state of the shared browser. *browser.Manager
// implements it.
type BrowserStats interface {
	Running() bool
	Launches() int64
}

// Health returns a handler for GET /api/v1/health.
//
// Status is "healthy" while a browser is running and "idle" before the first
// scrape or after the browser has gone away.
func Health(bs BrowserStats, version string, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		running := bs.Running()

		status := "healthy"
		if !running {
			status = "idle"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         status,
			Uptime:         time.Since(startTime).Round(time.Second).String(),
			BrowserRunning: running,
			BrowserLaunch:  bs.Launches(),
			Version:        version,
		})
	}
}
