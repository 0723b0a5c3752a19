package hive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hiveintelligencexyz/hive-mcp/internal/config"
	"github.com/hiveintelligencexyz/hive-mcp/internal/models"
	"github.com/hiveintelligencexyz/hive-mcp/pkg/logger"
)

// Client calls the Hive Intelligence search API. One Search call issues
// exactly one outbound request; a failed attempt is terminal.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a Hive Intelligence API client. The credential is
// injected here once; a zero timeout leaves the call unbounded.
func NewClient(cfg *config.HiveConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.hiveintelligence.xyz/v1"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// Search performs a single search request against the provider and
// returns its reply, or a classified failure: *APIError when the
// provider answered non-2xx, *NetworkError when it could not be reached,
// *TimeoutError when the configured bound elapsed, and the raw error for
// anything else.
func (c *Client) Search(ctx context.Context, searchReq *models.SearchRequest) (*models.SearchResponse, error) {
	log := logger.Log

	bodyBytes, err := json.Marshal(searchReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/search", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if log != nil {
		log.Debug("hive response",
			zap.Int("status", resp.StatusCode),
			zap.Int("body_bytes", len(body)),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(body),
		}
	}

	var searchResp models.SearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &searchResp, nil
}

// statusText prefers the status line the server actually sent over the
// canonical reason phrase.
func statusText(resp *http.Response) string {
	prefix := fmt.Sprintf("%d ", resp.StatusCode)
	if strings.HasPrefix(resp.Status, prefix) {
		if text := strings.TrimPrefix(resp.Status, prefix); text != "" {
			return text
		}
	}
	return http.StatusText(resp.StatusCode)
}
