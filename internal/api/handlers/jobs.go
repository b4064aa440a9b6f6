package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobpulse/pkg/models"
	"jobpulse/pkg/utils"
)

// JobDetailHandler serves the full single-job view from the search index.
func JobDetailHandler(planner JobSearcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		jobID := c.Param("id")
		if jobID == "" {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   "job id is required",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		detail, err := planner.GetJob(c.Request().Context(), jobID)
		if err != nil {
			return writeError(c, requestID, err)
		}

		return c.JSON(http.StatusOK, detail)
	}
}
