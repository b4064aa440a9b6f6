package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"jobpulse/internal/config"
	"jobpulse/internal/index"
	"jobpulse/pkg/models"
	"jobpulse/pkg/utils"
)

type stubClient struct {
	lastTarget string
	lastBody   map[string]any
	result     *index.SearchResult
	err        error
}

func (c *stubClient) Search(_ context.Context, target string, body map[string]any) (*index.SearchResult, error) {
	c.lastTarget = target
	c.lastBody = body
	if c.err != nil {
		return nil, c.err
	}
	if c.result != nil {
		return c.result, nil
	}
	return &index.SearchResult{}, nil
}

func newTestPlanner(client SearchClient) *Planner {
	cfg := &config.Config{}
	cfg.Elasticsearch.Alias = "jobs"
	cfg.Search.DefaultPerPage = 20
	cfg.Search.MinScore = 1.0
	return NewPlanner(client, cfg)
}

func boolPart(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	query, ok := body["query"].(map[string]any)
	require.True(t, ok)
	boolQuery, ok := query["bool"].(map[string]any)
	require.True(t, ok)
	return boolQuery
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	p := newTestPlanner(&stubClient{})

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := p.Search(context.Background(), &models.SearchRequest{Query: q})
		require.Error(t, err)

		var custom *utils.CustomError
		require.ErrorAs(t, err, &custom)
		require.Equal(t, 400, custom.Code)
	}
}

func TestBuildQueryRelevanceSort(t *testing.T) {
	p := newTestPlanner(&stubClient{})
	body := p.BuildQuery(&models.SearchRequest{
		Query: "python engineer", Sort: models.SortRelevance, Page: 1, PerPage: 20,
	})

	boolQuery := boolPart(t, body)

	must, ok := boolQuery["must"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, must, 1)

	mm, ok := must[0]["multi_match"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "python engineer", mm["query"])
	require.Equal(t, []string{
		"title^3", "skill_tags^2", "company.name^1.5", "summary^1.2", "full_description^1",
	}, mm["fields"])
	require.Equal(t, "AUTO", mm["fuzziness"])
	require.Equal(t, "or", mm["operator"])
	require.Equal(t, 0.3, mm["tie_breaker"])

	should, ok := boolQuery["should"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, should, 5)

	// Exact title match carries the strongest boost.
	titleTerm := should[3]["term"].(map[string]any)["title.keyword"].(map[string]any)
	require.Equal(t, 4, titleTerm["boost"])

	require.Equal(t, []any{
		"_score",
		map[string]any{"posted_date": map[string]any{"order": "desc"}},
	}, body["sort"])

	_, hasMinScore := body["min_score"]
	require.False(t, hasMinScore)
	_, hasFloor := boolQuery["minimum_should_match"]
	require.False(t, hasFloor)
}

func TestBuildQueryDateSort(t *testing.T) {
	p := newTestPlanner(&stubClient{})
	body := p.BuildQuery(&models.SearchRequest{
		Query: "golang", Sort: models.SortDate, Page: 1, PerPage: 20,
	})

	boolQuery := boolPart(t, body)

	// The text clause moves out of must and a relevance floor applies.
	_, hasMust := boolQuery["must"]
	require.False(t, hasMust)

	should, ok := boolQuery["should"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, should, 6)
	_, isMultiMatch := should[0]["multi_match"]
	require.True(t, isMultiMatch)

	require.Equal(t, 1, boolQuery["minimum_should_match"])
	require.Equal(t, 1.0, body["min_score"])

	require.Equal(t, []any{
		map[string]any{"posted_date": map[string]any{"order": "desc"}},
		"_score",
	}, body["sort"])
}

func TestBuildQueryFilters(t *testing.T) {
	remote := true
	p := newTestPlanner(&stubClient{})
	body := p.BuildQuery(&models.SearchRequest{
		Query:            "engineer",
		Location:         "Berlin",
		EmploymentTypes:  []string{"FULL_TIME", "CONTRACT"},
		ExperienceLevels: []string{"SENIOR"},
		CompanyIDs:       []string{"c1", "c2"},
		IsRemote:         &remote,
		Sort:             models.SortRelevance,
		Page:             1,
		PerPage:          20,
	})

	filters, ok := boolPart(t, body)["filter"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, filters, 6)

	require.Equal(t, map[string]any{"term": map[string]any{"expired": false}}, filters[0])
	require.Equal(t, map[string]any{"match": map[string]any{"location": "Berlin"}}, filters[1])
	require.Equal(t, map[string]any{"terms": map[string]any{"employment_type": []string{"FULL_TIME", "CONTRACT"}}}, filters[2])
	require.Equal(t, map[string]any{"terms": map[string]any{"experience_level": []string{"SENIOR"}}}, filters[3])
	require.Equal(t, map[string]any{"term": map[string]any{"is_remote": true}}, filters[4])
	require.Equal(t, map[string]any{"terms": map[string]any{"company.id": []string{"c1", "c2"}}}, filters[5])
}

func TestBuildQueryPagination(t *testing.T) {
	p := newTestPlanner(&stubClient{})
	body := p.BuildQuery(&models.SearchRequest{
		Query: "go", Sort: models.SortRelevance, Page: 3, PerPage: 10,
	})

	require.Equal(t, 20, body["from"])
	require.Equal(t, 10, body["size"])
}

func TestSearchDecodesHits(t *testing.T) {
	score := 7.5
	client := &stubClient{result: &index.SearchResult{
		Total: 42,
		Hits: []index.Hit{
			{
				ID:    "j1",
				Score: &score,
				Source: models.SearchDocument{
					ID:        "j1",
					Title:     "Go Engineer",
					Company:   models.CompanyBrief{ID: "c1", Name: "Acme"},
					SkillTags: []string{"Go"},
				},
			},
			{ID: "j2", Source: models.SearchDocument{ID: "j2", Title: "Data Engineer"}},
		},
	}}

	p := newTestPlanner(client)
	resp, err := p.Search(context.Background(), &models.SearchRequest{Query: "engineer"})
	require.NoError(t, err)

	require.Equal(t, "jobs", client.lastTarget)
	require.EqualValues(t, 42, resp.Total)
	require.Equal(t, 1, resp.Page)
	require.Equal(t, 20, resp.PerPage)
	require.Len(t, resp.Results, 2)

	require.Equal(t, 7.5, resp.Results[0].Score)
	require.Equal(t, 0.0, resp.Results[1].Score)
}

func TestGetJob(t *testing.T) {
	client := &stubClient{result: &index.SearchResult{
		Total: 1,
		Hits: []index.Hit{{
			ID: "j1",
			Source: models.SearchDocument{
				ID:              "j1",
				Title:           "Go Engineer",
				FullDescription: "Everything about the role.",
			},
		}},
	}}

	p := newTestPlanner(client)
	detail, err := p.GetJob(context.Background(), "j1")
	require.NoError(t, err)
	require.Equal(t, "j1", detail.ID)
	require.Equal(t, "Everything about the role.", detail.FullDescription)

	term := client.lastBody["query"].(map[string]any)["term"].(map[string]any)
	require.Equal(t, "j1", term["_id"])
}

func TestGetJobNotFound(t *testing.T) {
	p := newTestPlanner(&stubClient{result: &index.SearchResult{}})

	_, err := p.GetJob(context.Background(), "missing")
	require.Error(t, err)

	var custom *utils.CustomError
	require.ErrorAs(t, err, &custom)
	require.Equal(t, 404, custom.Code)
}
