package handler

import (
	"errors"
	"net/http"

	"github.com/use-agent/searchmcp/models"
)

// asScrapeError returns the coded error in err's chain, wrapping unknown
// errors as INTERNAL_ERROR.
func asScrapeError(err error) *models.ScrapeError {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
}

func invalidBody(err error) *models.ErrorDetail {
	return &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()}
}

// statusFor translates error codes to HTTP status codes.
func statusFor(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeNavigation, models.ErrCodeUpstream, models.ErrCodeParse:
		return http.StatusBadGateway // 502
	case models.ErrCodeBrowserLaunch, models.ErrCodeNotConfigured:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusInternalServerError // 500
	}
}
