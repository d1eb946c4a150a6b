package scenegen

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

const DefaultBaseURL = "https://api.vidgo.ai/v1/video-series"

// HTTPClient talks to the Vidgo video-series API with bearer auth.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, apiKey string, logger *slog.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
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

type submitPayload struct {
	Prompt          string   `json:"prompt"`
	Duration        int      `json:"duration"`
	Resolution      string   `json:"resolution"`
	AspectRatio     string   `json:"aspect_ratio"`
	GenerationType  string   `json:"generation_type"`
	ReferenceImages []string `json:"reference_images"`
}

type submitResponse struct {
	TaskID string `json:"task_id"`
	ID     string `json:"id"`
}

type statusResponse struct {
	Status    string `json:"status"`
	OutputURL string `json:"output_url"`
	VideoURL  string `json:"video_url"`
	Error     string `json:"error"`
}

// Submit starts a generation job. A missing task id in an otherwise successful
// response is still a terminal submission failure.
func (c *HTTPClient) Submit(ctx context.Context, r Request) (remote.Job, error) {
	generationType := "text-to-video"
	refs := []string{}
	if r.ReferenceImage != "" {
		generationType = "image-to-video"
		refs = []string{r.ReferenceImage}
	}

	duration := r.Duration
	if duration <= 0 {
		duration = 8
	}
	resolution := r.Resolution
	if resolution == "" {
		resolution = "1080p"
	}
	aspectRatio := r.AspectRatio
	if aspectRatio == "" {
		aspectRatio = "16:9"
	}

	body, err := json.Marshal(submitPayload{
		Prompt:          r.Prompt,
		Duration:        duration,
		Resolution:      resolution,
		AspectRatio:     aspectRatio,
		GenerationType:  generationType,
		ReferenceImages: refs,
	})
	if err != nil {
		return remote.Job{}, fmt.Errorf("marshal scene payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return remote.Job{}, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return remote.Job{}, fmt.Errorf("scene submit request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return remote.Job{}, &remote.SubmitError{Service: "vidgo", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result submitResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return remote.Job{}, fmt.Errorf("decode scene submit response: %w", err)
	}

	taskID := result.TaskID
	if taskID == "" {
		taskID = result.ID
	}
	if taskID == "" {
		return remote.Job{}, &remote.SubmitError{Service: "vidgo", StatusCode: resp.StatusCode, Body: "response missing task id"}
	}

	c.logger.Info("scene generation submitted", "task_id", taskID, "type", generationType, "duration_s", duration)

	return remote.Job{ID: taskID, State: remote.StateSubmitted}, nil
}

// Poll fetches the current job state. Status strings are lowercased before
// mapping; the service reports "error" for some failures, which is folded
// into the failed state.
func (c *HTTPClient) Poll(ctx context.Context, jobID string) (remote.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/"+jobID, nil)
	if err != nil {
		return remote.Job{}, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return remote.Job{}, fmt.Errorf("scene status request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return remote.Job{}, fmt.Errorf("scene status failed: HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result statusResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return remote.Job{}, fmt.Errorf("decode scene status response: %w", err)
	}

	job := remote.Job{ID: jobID, Message: result.Error}
	switch strings.ToLower(result.Status) {
	case "finished":
		job.State = remote.StateFinished
		job.ResultURL = result.OutputURL
		if job.ResultURL == "" {
			job.ResultURL = result.VideoURL
		}
	case "failed", "error":
		job.State = remote.StateFailed
	case "processing":
		job.State = remote.StateProcessing
	default:
		job.State = remote.StateSubmitted
	}

	return job, nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
