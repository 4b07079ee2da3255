// Package notion implements the destination record store against the
// Notion HTTP API. One database row per synced paper; archival is Notion's
// page-level soft delete, and archived pages never come back from query.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/openastro/papersync/internal/sync"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"
)

// maxErrorBody bounds how much of an error response is echoed into errors.
const maxErrorBody = 2048

// Config controls the Notion binding.
type Config struct {
	Token          string
	DatabaseID     string
	BaseURL        string
	TimeoutSeconds int
	SourceName     string
}

// Store is a sync.RecordStore backed by one Notion database.
type Store struct {
	client     *http.Client
	baseURL    string
	token      string
	databaseID string
	sourceName string
	logger     *zap.Logger
}

// New constructs a Store. Token and database ID are required; their absence
// is a configuration error surfaced before any network call.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion token is required")
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("notion database id is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.SourceName == "" {
		cfg.SourceName = "arXiv"
	}
	return &Store{
		client:     &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		databaseID: cfg.DatabaseID,
		sourceName: cfg.SourceName,
		logger:     logger,
	}, nil
}

type sortSpec struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type queryRequest struct {
	PageSize    int        `json:"page_size,omitempty"`
	StartCursor string     `json:"start_cursor,omitempty"`
	Sorts       []sortSpec `json:"sorts,omitempty"`
}

type queryResponse struct {
	Results    []pageObject `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

// List queries one page of database rows sorted by the Date property.
// Notion's query endpoint only returns live pages, which is exactly the
// engine's contract.
func (s *Store) List(ctx context.Context, q sync.ListQuery) (sync.Page, error) {
	direction := "descending"
	if q.SortAscending {
		direction = "ascending"
	}
	req := queryRequest{
		PageSize:    q.PageSize,
		StartCursor: q.Cursor,
		Sorts:       []sortSpec{{Property: "Date", Direction: direction}},
	}

	var resp queryResponse
	path := fmt.Sprintf("/v1/databases/%s/query", s.databaseID)
	if err := s.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return sync.Page{}, fmt.Errorf("query database: %w", err)
	}

	page := sync.Page{
		NextCursor: resp.NextCursor,
		HasMore:    resp.HasMore,
	}
	for _, p := range resp.Results {
		page.Records = append(page.Records, p.toRecord())
	}
	return page, nil
}

// Create inserts one database row for the item.
func (s *Store) Create(ctx context.Context, item sync.Item, priority bool) (sync.Record, error) {
	payload := map[string]any{
		"parent":     map[string]any{"database_id": s.databaseID},
		"properties": buildProperties(item, priority, s.sourceName),
	}

	var created pageObject
	if err := s.do(ctx, http.MethodPost, "/v1/pages", payload, &created); err != nil {
		return sync.Record{}, fmt.Errorf("create page: %w", err)
	}
	return sync.Record{
		ID:          created.ID,
		Title:       item.Title,
		PublishedAt: item.PublishedAt,
	}, nil
}

// Archive soft-deletes the page; it disappears from future List calls.
func (s *Store) Archive(ctx context.Context, id string) error {
	payload := map[string]any{"archived": true}
	if err := s.do(ctx, http.MethodPatch, "/v1/pages/"+id, payload, nil); err != nil {
		return fmt.Errorf("archive page %s: %w", id, err)
	}
	return nil
}

func (s *Store) do(ctx context.Context, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Warn("close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
