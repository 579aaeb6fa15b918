package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/OCAP2/auvplanner/internal/estimator"
	"github.com/OCAP2/auvplanner/internal/planner"
	"github.com/OCAP2/auvplanner/pkg/core"
)

// Client talks to a remote planner server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Healthcheck checks if the planner server is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// Estimate posts a mission to the server. A rejected mission is returned
// as *estimator.ValidationError carrying the server's message.
func (c *Client) Estimate(ctx context.Context, in core.MissionInput) (planner.Report, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return planner.Report{}, fmt.Errorf("failed to encode mission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/estimate", bytes.NewReader(body))
	if err != nil {
		return planner.Report{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return planner.Report{}, fmt.Errorf("estimate request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return planner.Report{}, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var report planner.Report
		if err := json.Unmarshal(data, &report); err != nil {
			return planner.Report{}, fmt.Errorf("failed to decode report: %w", err)
		}
		return report, nil
	case http.StatusUnprocessableEntity:
		var e errorResponse
		if err := json.Unmarshal(data, &e); err != nil {
			return planner.Report{}, fmt.Errorf("failed to decode error: %w", err)
		}
		return planner.Report{}, estimator.NewValidationError(e.Error)
	default:
		return planner.Report{}, fmt.Errorf("estimate returned status %d", resp.StatusCode)
	}
}
