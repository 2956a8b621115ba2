package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/procurehub/procurement-service/internal/models"
)

// ProposalSummary is the per-proposal slice of data sent for analysis.
type ProposalSummary struct {
	Supplier       string                `json:"supplier"`
	Total          float64               `json:"total"`
	Items          []models.ProposalItem `json:"items"`
	ContextualInfo *string               `json:"contextual_info,omitempty"`
}

// AnalyzeRequest is the payload sent to the analysis service.
type AnalyzeRequest struct {
	Proposals      []ProposalSummary `json:"proposals"`
	InternalBudget *float64          `json:"internalBudget,omitempty"`
}

// Client calls the external proposal-analysis service. The feature degrades
// to disabled when no URL is configured.
type Client struct {
	URL  string
	HTTP *http.Client
}

// New creates an analysis client. An empty URL disables the feature.
func New(url string) *Client {
	return &Client{URL: url, HTTP: &http.Client{Timeout: 60 * time.Second}}
}

// Enabled reports whether the analysis service is configured.
func (c *Client) Enabled() bool {
	return c.URL != ""
}

// Analyze sends the proposal summaries and returns the free-text analysis.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("analysis service is not configured")
	}

	b, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var out map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return "", fmt.Errorf("analysis service returned %d", resp.StatusCode)
	}

	var out struct {
		Analysis string `json:"analysis"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Analysis, nil
}
