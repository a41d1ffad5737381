package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mcpforge/internal/api"
	"mcpforge/pkg/logging"
)

const subsystem = "Assistant"

// DefaultTimeout bounds a single suggestion call.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a collaborator response is read.
const maxResponseBytes = 1 << 20

// Client talks to the external suggestion service. All of its output is
// advisory; a failing or unreachable collaborator never blocks a build or
// deployment.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a suggestion client for the given endpoint. An empty
// endpoint yields a client whose calls fail with an UpstreamError, which
// callers surface as "no suggestion available".
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an endpoint is set.
func (c *Client) Configured() bool {
	return c.endpoint != ""
}

type suggestRequest struct {
	Prompt string `json:"prompt"`
}

type suggestResponse struct {
	Suggestion string `json:"suggestion"`
}

// Suggest asks the collaborator for advisory text. Any transport or
// protocol failure is wrapped in an UpstreamError so callers can tell
// collaborator trouble apart from their own.
func (c *Client) Suggest(ctx context.Context, prompt string) (string, error) {
	if c.endpoint == "" {
		return "", api.NewUpstreamError("assistant", fmt.Errorf("no endpoint configured"))
	}

	body, err := json.Marshal(suggestRequest{Prompt: prompt})
	if err != nil {
		return "", api.NewUpstreamError("assistant", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/suggest", bytes.NewReader(body))
	if err != nil {
		return "", api.NewUpstreamError("assistant", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", api.NewUpstreamError("assistant", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", api.NewUpstreamError("assistant", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", api.NewUpstreamError("assistant",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	var parsed suggestResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", api.NewUpstreamError("assistant", fmt.Errorf("malformed response: %w", err))
	}

	logging.Debug(subsystem, "Received suggestion (%d bytes)", len(parsed.Suggestion))
	return parsed.Suggestion, nil
}
