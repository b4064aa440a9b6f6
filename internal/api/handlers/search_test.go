package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"jobpulse/internal/cache"
	"jobpulse/internal/config"
	"jobpulse/pkg/models"
	"jobpulse/pkg/utils"
)

type stubPlanner struct {
	lastReq  *models.SearchRequest
	response *models.SearchResponse
	err      error
}

func (p *stubPlanner) Search(_ context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return p.response, nil
}

func (p *stubPlanner) GetJob(_ context.Context, jobID string) (*models.JobDetail, error) {
	if p.err != nil {
		return nil, p.err
	}
	detail := &models.JobDetail{}
	detail.ID = jobID
	return detail, nil
}

func disabledCache() *cache.SearchCache {
	cfg := &config.Config{}
	return cache.NewSearchCache(cfg)
}

func performSearch(planner JobSearcher, target string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = SearchHandler(planner, disabledCache())(c)
	return rec
}

func TestSearchHandlerRejectsMissingQuery(t *testing.T) {
	rec := performSearch(&stubPlanner{}, "/api/v1/jobs/search")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "validation_failed", resp.Error)
}

func TestSearchHandlerRejectsBlankQuery(t *testing.T) {
	planner := &stubPlanner{err: utils.NewValidationError("query must not be empty")}
	rec := performSearch(planner, "/api/v1/jobs/search?q=%20%20")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandlerReturnsResults(t *testing.T) {
	planner := &stubPlanner{response: &models.SearchResponse{
		Total:   1,
		Page:    1,
		PerPage: 20,
		Results: []models.JobBrief{{ID: "j1", Title: "Go Engineer", Score: 3.2}},
	}}

	rec := performSearch(planner, "/api/v1/jobs/search?q=golang&sort=date&page=2&per_page=10")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, planner.lastReq)
	require.Equal(t, "golang", planner.lastReq.Query)
	require.Equal(t, "date", planner.lastReq.Sort)
	require.Equal(t, 2, planner.lastReq.Page)
	require.Equal(t, 10, planner.lastReq.PerPage)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 1, resp.Total)
	require.Equal(t, "j1", resp.Results[0].ID)
}

func TestSearchHandlerRejectsInvalidSort(t *testing.T) {
	rec := performSearch(&stubPlanner{}, "/api/v1/jobs/search?q=go&sort=salary")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobDetailHandlerNotFound(t *testing.T) {
	planner := &stubPlanner{err: utils.NewNotFoundError("job missing not found")}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	_ = JobDetailHandler(planner)(c)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "not_found", resp.Error)
}
