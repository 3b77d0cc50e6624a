package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIClient talks to the TeamLive HTTP API. It implements DeviceRegistry and
// provides the roster fetcher a RosterCache needs.
type APIClient struct {
	baseURL   string
	authToken string
	httpc     *http.Client
}

// NewAPIClient creates an API client. authToken is the viewer's JWT; it may
// be empty for anonymous roster reads, but device registration requires it.
func NewAPIClient(baseURL, authToken string) *APIClient {
	return &APIClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		httpc:     &http.Client{Timeout: 15 * time.Second},
	}
}

type statusEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// UpsertToken registers a push token for the authenticated user. The user's
// identity rides in the bearer token; userID is kept in the signature so
// callers cannot accidentally register a token without a resolved session.
func (c *APIClient) UpsertToken(ctx context.Context, userID, token, deviceType string) error {
	if userID == "" {
		return fmt.Errorf("upsert token: missing user id")
	}

	body, err := json.Marshal(map[string]string{
		"token":       token,
		"device_type": deviceType,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/devices", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.authToken)
	req.Header.Set("X-Device-Type", deviceType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	defer resp.Body.Close()

	var envelope statusEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("upsert token: decoding response: %w", err)
	}
	if envelope.Status != "success" {
		return fmt.Errorf("upsert token: %s", envelope.Message)
	}
	return nil
}

// FetchRoster loads the roster for a scope; plug it into a RosterCache as
// its FetchFunc
func (c *APIClient) FetchRoster(ctx context.Context, scope Scope) ([]RosterMember, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/teams/"+scope.Team+"/roster", nil)
	if err != nil {
		return nil, err
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch roster: unexpected status %d", resp.StatusCode)
	}

	var members []RosterMember
	if err := json.NewDecoder(resp.Body).Decode(&members); err != nil {
		return nil, fmt.Errorf("fetch roster: decoding response: %w", err)
	}
	return members, nil
}
