package scenegen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/promoforge/promoforge/internal/remote"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmit_Success(t *testing.T) {
	var gotPayload map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" {
			t.Errorf("path = %q, want /generate", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"task_id":"task-123"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key", testLogger())
	job, err := c.Submit(context.Background(), Request{
		Prompt:         "cinematic reveal",
		Duration:       4,
		ReferenceImage: "https://x/p.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.ID != "task-123" || job.State != remote.StateSubmitted {
		t.Errorf("job = %+v", job)
	}

	if gotPayload["generation_type"] != "image-to-video" {
		t.Errorf("generation_type = %v, want image-to-video", gotPayload["generation_type"])
	}
	if gotPayload["resolution"] != "1080p" {
		t.Errorf("resolution = %v, want default 1080p", gotPayload["resolution"])
	}
	refs, _ := gotPayload["reference_images"].([]interface{})
	if len(refs) != 1 {
		t.Errorf("reference_images = %v, want one entry", gotPayload["reference_images"])
	}
}

func TestSubmit_TextToVideoWithoutReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["generation_type"] != "text-to-video" {
			t.Errorf("generation_type = %v, want text-to-video", payload["generation_type"])
		}
		if payload["duration"].(float64) != 8 {
			t.Errorf("duration = %v, want default 8", payload["duration"])
		}
		w.Write([]byte(`{"id":"fallback-id"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key", testLogger())
	job, err := c.Submit(context.Background(), Request{Prompt: "macro shot"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.ID != "fallback-id" {
		t.Errorf("job ID = %q, want fallback to id field", job.ID)
	}
}

func TestSubmit_MissingTaskID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key", testLogger())
	_, err := c.Submit(context.Background(), Request{Prompt: "x"})

	var submitErr *remote.SubmitError
	if !errors.As(err, &submitErr) {
		t.Fatalf("error = %v, want *remote.SubmitError", err)
	}
}

func TestSubmit_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key", testLogger())
	_, err := c.Submit(context.Background(), Request{Prompt: "x"})

	var submitErr *remote.SubmitError
	if !errors.As(err, &submitErr) {
		t.Fatalf("error = %v, want *remote.SubmitError", err)
	}
	if submitErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", submitErr.StatusCode)
	}
}

func TestPoll_StatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantState remote.State
		wantURL   string
	}{
		{"processing", `{"status":"processing"}`, remote.StateProcessing, ""},
		{"pending maps to submitted", `{"status":"pending"}`, remote.StateSubmitted, ""},
		{"uppercase finished", `{"status":"FINISHED","output_url":"https://cdn/a.mp4"}`, remote.StateFinished, "https://cdn/a.mp4"},
		{"finished video_url fallback", `{"status":"finished","video_url":"https://cdn/b.mp4"}`, remote.StateFinished, "https://cdn/b.mp4"},
		{"failed", `{"status":"failed"}`, remote.StateFailed, ""},
		{"error maps to failed", `{"status":"error","error":"nsfw"}`, remote.StateFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/status/task-9" {
					t.Errorf("path = %q, want /status/task-9", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewHTTPClient(srv.URL, "test-key", testLogger())
			job, err := c.Poll(context.Background(), "task-9")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if job.State != tt.wantState {
				t.Errorf("state = %q, want %q", job.State, tt.wantState)
			}
			if job.ResultURL != tt.wantURL {
				t.Errorf("ResultURL = %q, want %q", job.ResultURL, tt.wantURL)
			}
		})
	}
}
