package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"jobpulse/internal/config"
	"jobpulse/pkg/models"
)

// Client wraps go-elasticsearch with the index, alias and search operations
// the pipeline needs.
type Client struct {
	es *elasticsearch.Client
}

// Hit is one scored search hit. Score is nil when the query sorts without
// scoring.
type Hit struct {
	ID     string
	Score  *float64
	Source models.SearchDocument
}

// SearchResult bundles hits and the total match count.
type SearchResult struct {
	Total int64
	Hits  []Hit
}

// NewClient builds an Elasticsearch client from config and verifies
// connectivity.
func NewClient(cfg *config.Config) (*Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	client := &Client{es: es}
	if err := client.Ping(context.Background()); err != nil {
		return nil, err
	}
	return client, nil
}

// Ping checks whether the cluster is reachable.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}

// CreateIndex creates an index with the job document mapping.
func (c *Client) CreateIndex(ctx context.Context, name string) error {
	res, err := c.es.Indices.Create(
		name,
		c.es.Indices.Create.WithBody(strings.NewReader(jobMapping)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("create index %s failed: %s", name, strings.TrimSpace(string(body)))
	}
	return nil
}

// DeleteIndex removes an index. Missing indices are not an error.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	res, err := c.es.Indices.Delete(
		[]string{name},
		c.es.Indices.Delete.WithContext(ctx),
		c.es.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("delete index %s: %w", name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("delete index %s failed: %s", name, strings.TrimSpace(string(body)))
	}
	return nil
}

// IndexExists reports whether an index or alias with the name exists.
func (c *Client) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := c.es.Indices.Exists([]string{name}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", name, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("check index %s failed: %s", name, res.Status())
	}
	return true, nil
}

// DocumentExists reports whether a document with the id is present.
func (c *Client) DocumentExists(ctx context.Context, target, docID string) (bool, error) {
	req := esapi.ExistsRequest{Index: target, DocumentID: docID}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return false, fmt.Errorf("check document %s: %w", docID, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("check document %s failed: %s", docID, res.Status())
	}
}

// IndexDocument writes a document, replacing any previous version.
func (c *Client) IndexDocument(ctx context.Context, target string, doc *models.SearchDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", doc.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      target,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index document %s failed: %s", doc.ID, strings.TrimSpace(string(body)))
	}
	return nil
}

// DeleteDocument removes a document. Missing documents are not an error.
func (c *Client) DeleteDocument(ctx context.Context, target, docID string) error {
	req := esapi.DeleteRequest{Index: target, DocumentID: docID}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", docID, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("delete document %s failed: %s", docID, strings.TrimSpace(string(body)))
	}
	return nil
}

// Count returns the number of documents in the target index or alias.
func (c *Client) Count(ctx context.Context, target string) (int64, error) {
	res, err := c.es.Count(
		c.es.Count.WithContext(ctx),
		c.es.Count.WithIndex(target),
	)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", target, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return 0, fmt.Errorf("count %s failed: %s", target, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return parsed.Count, nil
}

// Refresh makes recent writes to the target visible to search.
func (c *Client) Refresh(ctx context.Context, target string) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithContext(ctx),
		c.es.Indices.Refresh.WithIndex(target),
	)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", target, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("refresh %s failed: %s", target, res.Status())
	}
	return nil
}

// Reindex copies every document from src into dst and waits for completion.
func (c *Client) Reindex(ctx context.Context, src, dst string) error {
	body := map[string]any{
		"source": map[string]any{"index": src},
		"dest":   map[string]any{"index": dst},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal reindex body: %w", err)
	}

	res, err := c.es.Reindex(
		bytes.NewReader(payload),
		c.es.Reindex.WithContext(ctx),
		c.es.Reindex.WithWaitForCompletion(true),
		c.es.Reindex.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("reindex %s to %s: %w", src, dst, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("reindex %s to %s failed: %s", src, dst, strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Failures []json.RawMessage `json:"failures"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode reindex response: %w", err)
	}
	if len(parsed.Failures) > 0 {
		return fmt.Errorf("reindex %s to %s reported %d failures", src, dst, len(parsed.Failures))
	}
	return nil
}

// PutAlias points an alias at an index without touching other alias targets.
func (c *Client) PutAlias(ctx context.Context, indexName, alias string) error {
	res, err := c.es.Indices.PutAlias(
		[]string{indexName},
		alias,
		c.es.Indices.PutAlias.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("put alias %s on %s: %w", alias, indexName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("put alias %s failed: %s", alias, strings.TrimSpace(string(body)))
	}
	return nil
}

// SwapAlias atomically moves an alias from the old index to the new one.
func (c *Client) SwapAlias(ctx context.Context, alias, oldIndex, newIndex string) error {
	actions := map[string]any{
		"actions": []map[string]any{
			{"remove": map[string]any{"index": oldIndex, "alias": alias}},
			{"add": map[string]any{"index": newIndex, "alias": alias}},
		},
	}
	payload, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("marshal alias actions: %w", err)
	}

	res, err := c.es.Indices.UpdateAliases(
		bytes.NewReader(payload),
		c.es.Indices.UpdateAliases.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("swap alias %s: %w", alias, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("swap alias %s failed: %s", alias, strings.TrimSpace(string(body)))
	}
	return nil
}

// AliasTargets lists the concrete indices an alias points at. A missing
// alias yields an empty slice.
func (c *Client) AliasTargets(ctx context.Context, alias string) ([]string, error) {
	res, err := c.es.Indices.GetAlias(
		c.es.Indices.GetAlias.WithContext(ctx),
		c.es.Indices.GetAlias.WithName(alias),
	)
	if err != nil {
		return nil, fmt.Errorf("get alias %s: %w", alias, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("get alias %s failed: %s", alias, res.Status())
	}

	var parsed map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode alias response: %w", err)
	}

	targets := make([]string, 0, len(parsed))
	for indexName := range parsed {
		targets = append(targets, indexName)
	}
	return targets, nil
}

// Search runs a raw query body against the target and decodes the hits.
func (c *Client) Search(ctx context.Context, target string, body map[string]any) (*SearchResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(target),
		c.es.Search.WithBody(bytes.NewReader(payload)),
		c.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string                `json:"_id"`
				Score  *float64              `json:"_score"`
				Source models.SearchDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		hits = append(hits, Hit{ID: hit.ID, Score: hit.Score, Source: hit.Source})
	}

	return &SearchResult{Total: parsed.Hits.Total.Value, Hits: hits}, nil
}
