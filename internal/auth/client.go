package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// IdentityClient calls the external identity provider to reissue sessions.
type IdentityClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewIdentityClient creates a client for the identity provider. An empty base
// URL leaves refresh unavailable; mismatched sessions then fail without retry.
func NewIdentityClient(baseURL string) *IdentityClient {
	return &IdentityClient{BaseURL: baseURL, HTTP: &http.Client{}}
}

// RefreshRole asks the provider to reissue the user's session and returns the
// refreshed role claim.
func (c *IdentityClient) RefreshRole(ctx context.Context, userID string) (string, error) {
	if c.BaseURL == "" {
		return "", fmt.Errorf("identity provider is not configured")
	}

	b, _ := json.Marshal(map[string]string{"user_id": userID})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/sessions/refresh", bytes.NewReader(b))
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
		return "", fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}

	var out struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Role, nil
}
