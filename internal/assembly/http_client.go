package assembly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/promoforge/promoforge/internal/remote"
)

const (
	ProductionBaseURL = "https://api.shotstack.io/edit/v1"
	SandboxBaseURL    = "https://api.shotstack.io/stage/v1"
)

// BaseURLForEnv maps the configured environment name to the service base URL.
// Anything other than "production" selects the sandbox.
func BaseURLForEnv(env string) string {
	if env == "production" {
		return ProductionBaseURL
	}
	return SandboxBaseURL
}

// HTTPClient talks to the Shotstack edit API with x-api-key auth.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, apiKey string, logger *slog.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = SandboxBaseURL
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

type renderResponse struct {
	Response struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		URL    string `json:"url"`
		Error  string `json:"error"`
	} `json:"response"`
}

// Submit sends a render job for the ordered clips. A missing render id in a
// successful response is a terminal submission failure.
func (c *HTTPClient) Submit(ctx context.Context, clips []Clip, out Output) (remote.Job, error) {
	body, err := json.Marshal(buildRenderPayload(clips, out))
	if err != nil {
		return remote.Job{}, fmt.Errorf("marshal render payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return remote.Job{}, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return remote.Job{}, fmt.Errorf("render submit request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return remote.Job{}, &remote.SubmitError{Service: "shotstack", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result renderResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return remote.Job{}, fmt.Errorf("decode render response: %w", err)
	}
	if result.Response.ID == "" {
		return remote.Job{}, &remote.SubmitError{Service: "shotstack", StatusCode: resp.StatusCode, Body: "response missing render id"}
	}

	c.logger.Info("render submitted", "render_id", result.Response.ID, "clip_count", len(clips))

	return remote.Job{ID: result.Response.ID, State: remote.StateSubmitted}, nil
}

// Poll fetches the current render state. "done" maps to finished and must
// carry the rendered video URL; "failed" is terminal without one.
func (c *HTTPClient) Poll(ctx context.Context, renderID string) (remote.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/render/"+renderID, nil)
	if err != nil {
		return remote.Job{}, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return remote.Job{}, fmt.Errorf("render status request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return remote.Job{}, fmt.Errorf("render status failed: HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result renderResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return remote.Job{}, fmt.Errorf("decode render status response: %w", err)
	}

	job := remote.Job{ID: renderID, Message: result.Response.Error}
	switch strings.ToLower(result.Response.Status) {
	case "done":
		job.State = remote.StateFinished
		job.ResultURL = result.Response.URL
	case "failed":
		job.State = remote.StateFailed
	case "rendering", "fetching", "saving":
		job.State = remote.StateProcessing
	default:
		job.State = remote.StateSubmitted
	}

	return job, nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
