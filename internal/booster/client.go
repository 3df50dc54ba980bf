package booster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the HTTP implementation of API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a booster service client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type registerRequest struct {
	UserID     string  `json:"user_id"`
	BoosterID  string  `json:"booster_id"`
	BoostType  string  `json:"boost_type"`
	Multiplier float64 `json:"multiplier"`
}

// Register creates or replaces a booster registration.
func (c *Client) Register(ctx context.Context, userID, boosterID, boostType string, multiplier float64) error {
	body, err := json.Marshal(registerRequest{
		UserID:     userID,
		BoosterID:  boosterID,
		BoostType:  boostType,
		Multiplier: multiplier,
	})
	if err != nil {
		return fmt.Errorf("failed to encode register request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathRegister, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build register request: %w", err)
	}
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("booster register failed: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("booster register returned status %d", resp.StatusCode)
	}
	return nil
}

// Exists reports whether a registration is present remotely.
func (c *Client) Exists(ctx context.Context, userID, boosterID string) (bool, error) {
	url := c.baseURL + fmt.Sprintf(pathBoosterFmt, userID, boosterID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build exists request: %w", err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("booster exists check failed: %w", err)
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("booster exists check returned status %d", resp.StatusCode)
	}
}

// Deregister removes a registration. A 404 is treated as success.
func (c *Client) Deregister(ctx context.Context, userID, boosterID string) error {
	url := c.baseURL + fmt.Sprintf(pathBoosterFmt, userID, boosterID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build deregister request: %w", err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("booster deregister failed: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusNotFound && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return fmt.Errorf("booster deregister returned status %d", resp.StatusCode)
	}
	return nil
}

// drainAndClose keeps the underlying connection reusable.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
