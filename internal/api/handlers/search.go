package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"jobpulse/internal/cache"
	"jobpulse/internal/logging"
	"jobpulse/pkg/models"
	"jobpulse/pkg/utils"
)

var validate = validator.New()

// JobSearcher is the planner surface the handlers call.
type JobSearcher interface {
	Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error)
	GetJob(ctx context.Context, jobID string) (*models.JobDetail, error)
}

// SearchHandler handles job search requests
func SearchHandler(planner JobSearcher, searchCache *cache.SearchCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		var req models.SearchRequest
		if err := c.Bind(&req); err != nil {
			logger.Warn("Failed to bind search request", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		ctx := c.Request().Context()

		if cached := searchCache.Get(ctx, &req); cached != nil {
			logger.Debug("Search served from cache", map[string]interface{}{
				"request_id": requestID,
				"query":      req.Query,
			})
			return c.JSON(http.StatusOK, cached)
		}

		response, err := planner.Search(ctx, &req)
		if err != nil {
			return writeError(c, requestID, err)
		}

		searchCache.Put(ctx, &req, response)

		logger.Info("Search request completed", map[string]interface{}{
			"request_id":      requestID,
			"query":           req.Query,
			"total":           response.Total,
			"processing_time": time.Since(startTime).String(),
		})

		return c.JSON(http.StatusOK, response)
	}
}

// writeError maps planner errors onto the uniform error envelope.
func writeError(c echo.Context, requestID string, err error) error {
	var custom *utils.CustomError
	if errors.As(err, &custom) {
		return c.JSON(custom.Code, models.ErrorResponse{
			Error:     errorLabel(custom.Code),
			Message:   custom.Error(),
			RequestID: requestID,
			Timestamp: time.Now(),
		})
	}

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:     "internal_error",
		Message:   err.Error(),
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}

func errorLabel(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "validation_failed"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadGateway:
		return "upstream_failed"
	default:
		return "internal_error"
	}
}
