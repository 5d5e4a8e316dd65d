package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/searchmcp/models"
)

// Searcher runs a web search. *search.Client implements it.
type Searcher interface {
	Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResult, error)
}

// Search returns a handler for POST /api/v1/search.
func Search(se Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.SearchResponse{Success: false, Error: invalidBody(err)})
			return
		}
		req.Defaults()
		if err := models.ValidateInput(&req); err != nil {
			e := asScrapeError(err)
			c.JSON(statusFor(e), models.SearchResponse{Success: false, Error: e.ToDetail()})
			return
		}

		result, err := se.Search(c.Request.Context(), &req)
		timing := models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
		if err != nil {
			e := asScrapeError(err)
			c.JSON(statusFor(e), models.SearchResponse{Success: false, Timing: timing, Error: e.ToDetail()})
			return
		}

		c.JSON(http.StatusOK, models.SearchResponse{Success: true, Items: result.Items, Timing: timing})
	}
}
