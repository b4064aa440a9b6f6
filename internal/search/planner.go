package search

import (
	"context"
	"fmt"
	"strings"

	"jobpulse/internal/config"
	"jobpulse/internal/index"
	"jobpulse/pkg/models"
	"jobpulse/pkg/utils"
)

// SearchClient is the slice of the index client the planner needs.
type SearchClient interface {
	Search(ctx context.Context, target string, body map[string]any) (*index.SearchResult, error)
}

// Planner turns structured search requests into weighted Elasticsearch
// queries and decodes the hits back into typed results.
type Planner struct {
	client         SearchClient
	alias          string
	defaultPerPage int
	minScore       float64
}

// NewPlanner wires the planner from config.
func NewPlanner(client SearchClient, cfg *config.Config) *Planner {
	return &Planner{
		client:         client,
		alias:          cfg.Elasticsearch.Alias,
		defaultPerPage: cfg.Search.DefaultPerPage,
		minScore:       cfg.Search.MinScore,
	}
}

// Search validates the request, runs the planned query and pages the
// decoded hits.
func (p *Planner) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	p.applyDefaults(req)
	if strings.TrimSpace(req.Query) == "" {
		return nil, utils.NewValidationError("query must not be empty")
	}

	body := p.BuildQuery(req)
	result, err := p.client.Search(ctx, p.alias, body)
	if err != nil {
		return nil, utils.NewInternalServerError(fmt.Sprintf("search failed: %v", err))
	}

	results := make([]models.JobBrief, 0, len(result.Hits))
	for _, hit := range result.Hits {
		results = append(results, decodeBrief(hit))
	}

	return &models.SearchResponse{
		Total:   result.Total,
		Page:    req.Page,
		PerPage: req.PerPage,
		Results: results,
	}, nil
}

// GetJob fetches one job document by id from the live index.
func (p *Planner) GetJob(ctx context.Context, jobID string) (*models.JobDetail, error) {
	body := map[string]any{
		"query": map[string]any{
			"term": map[string]any{"_id": jobID},
		},
	}

	result, err := p.client.Search(ctx, p.alias, body)
	if err != nil {
		return nil, utils.NewInternalServerError(fmt.Sprintf("lookup failed: %v", err))
	}
	if len(result.Hits) == 0 {
		return nil, utils.NewNotFoundError(fmt.Sprintf("job %s not found", jobID))
	}

	hit := result.Hits[0]
	return &models.JobDetail{
		JobBrief:        decodeBrief(hit),
		FullDescription: hit.Source.FullDescription,
	}, nil
}

func (p *Planner) applyDefaults(req *models.SearchRequest) {
	if req.Sort == "" {
		req.Sort = models.SortRelevance
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = p.defaultPerPage
	}
}

// BuildQuery plans the Elasticsearch request body. The weighted text
// clause is mandatory under relevance sort; under date sort it becomes an
// optional scoring clause with a floor, so date ordering still excludes
// documents that match nothing.
func (p *Planner) BuildQuery(req *models.SearchRequest) map[string]any {
	textClause := map[string]any{
		"multi_match": map[string]any{
			"query": req.Query,
			"fields": []string{
				"title^3",
				"skill_tags^2",
				"company.name^1.5",
				"summary^1.2",
				"full_description^1",
			},
			"type":        "best_fields",
			"tie_breaker": 0.3,
			"fuzziness":   "AUTO",
			"operator":    "or",
		},
	}

	should := []map[string]any{
		{"match_phrase": map[string]any{
			"title": map[string]any{"query": req.Query, "boost": 2, "slop": 1},
		}},
		{"match_phrase": map[string]any{
			"summary": map[string]any{"query": req.Query, "boost": 1.5, "slop": 2},
		}},
		{"match_phrase": map[string]any{
			"skill_tags": map[string]any{"query": req.Query, "boost": 1.5},
		}},
		{"term": map[string]any{
			"title.keyword": map[string]any{"value": req.Query, "boost": 4},
		}},
		{"term": map[string]any{
			"skill_tags.keyword": map[string]any{"value": req.Query, "boost": 3},
		}},
	}

	boolQuery := map[string]any{
		"filter": p.buildFilters(req),
	}

	body := map[string]any{
		"from": (req.Page - 1) * req.PerPage,
		"size": req.PerPage,
	}

	if req.Sort == models.SortDate {
		// Text relevance becomes a floor instead of the order key.
		boolQuery["should"] = append([]map[string]any{textClause}, should...)
		boolQuery["minimum_should_match"] = 1
		body["min_score"] = p.minScore
		body["sort"] = []any{
			map[string]any{"posted_date": map[string]any{"order": "desc"}},
			"_score",
		}
	} else {
		boolQuery["must"] = []map[string]any{textClause}
		boolQuery["should"] = should
		body["sort"] = []any{
			"_score",
			map[string]any{"posted_date": map[string]any{"order": "desc"}},
		}
	}

	body["query"] = map[string]any{"bool": boolQuery}
	return body
}

// buildFilters assembles the non-scoring constraints. Expired documents
// are always excluded.
func (p *Planner) buildFilters(req *models.SearchRequest) []map[string]any {
	filters := []map[string]any{
		{"term": map[string]any{"expired": false}},
	}

	if req.Location != "" {
		filters = append(filters, map[string]any{
			"match": map[string]any{"location": req.Location},
		})
	}
	if len(req.EmploymentTypes) > 0 {
		filters = append(filters, map[string]any{
			"terms": map[string]any{"employment_type": req.EmploymentTypes},
		})
	}
	if len(req.ExperienceLevels) > 0 {
		filters = append(filters, map[string]any{
			"terms": map[string]any{"experience_level": req.ExperienceLevels},
		})
	}
	if req.IsRemote != nil {
		filters = append(filters, map[string]any{
			"term": map[string]any{"is_remote": *req.IsRemote},
		})
	}
	if len(req.CompanyIDs) > 0 {
		filters = append(filters, map[string]any{
			"terms": map[string]any{"company.id": req.CompanyIDs},
		})
	}

	return filters
}

// decodeBrief maps one hit back onto the result shape. Hits from unscored
// queries carry score 0.0.
func decodeBrief(hit index.Hit) models.JobBrief {
	score := 0.0
	if hit.Score != nil {
		score = *hit.Score
	}

	src := hit.Source
	return models.JobBrief{
		ID:              src.ID,
		Title:           src.Title,
		Company:         src.Company,
		Location:        src.Location,
		Locations:       src.Locations,
		EmploymentType:  src.EmploymentType,
		PostedDate:      src.PostedDate,
		IsRemote:        src.IsRemote,
		URL:             src.URL,
		SkillTags:       src.SkillTags,
		Summary:         src.Summary,
		SalaryRange:     src.SalaryRange,
		ExperienceLevel: src.ExperienceLevel,
		Expired:         src.Expired,
		Score:           score,
	}
}
