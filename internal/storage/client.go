package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
)

// Uploader stores attachment content under a path in the object store.
type Uploader interface {
	Upload(ctx context.Context, path string, content []byte, contentType string) error
}

// Client is an HTTP client for the object store. Objects live under
// bucket-style paths such as proposals/<proposalId>/<fileName>.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates an object store client.
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

// Upload stores one object. Callers treat failures as non-fatal: a failed
// file is logged and skipped, never aborting the surrounding submission.
func (c *Client) Upload(ctx context.Context, path string, content []byte, contentType string) error {
	if c.BaseURL == "" {
		return fmt.Errorf("object store is not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut,
		fmt.Sprintf("%s/object/%s", c.BaseURL, path), bytes.NewReader(content))
	if err != nil {
		return err
	}
	if contentType != "" {
		httpReq.Header.Set("content-type", contentType)
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("object store returned %d", resp.StatusCode)
	}
	return nil
}
