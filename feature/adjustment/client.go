package adjustment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Adjustment is the parent record grouping a batch of details.
type Adjustment struct {
	Reference string `json:"reference"`
	Memo      string `json:"memo"`
}

// Client talks to the inventory adjustment API.
type Client interface {
	// CreateAdjustment creates the parent record and returns its id.
	CreateAdjustment(ctx context.Context, adj Adjustment) (string, error)
	// CreateDetail attaches one detail line to an adjustment.
	CreateDetail(ctx context.Context, adjustmentID string, detail Detail) error
}

type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates an HTTP client for the adjustment API.
func NewClient(cfg Config) Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.ApiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) CreateAdjustment(ctx context.Context, adj Adjustment) (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/adjustments", adj, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("adjustment API returned no id")
	}
	return created.ID, nil
}

func (c *httpClient) CreateDetail(ctx context.Context, adjustmentID string, detail Detail) error {
	path := fmt.Sprintf("/adjustments/%s/details", adjustmentID)
	return c.post(ctx, path, detail, nil)
}

func (c *httpClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return nil
}
