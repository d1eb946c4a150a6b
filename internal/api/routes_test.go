package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/promoforge/promoforge/internal/pipeline"
	"github.com/promoforge/promoforge/internal/store"
)

type fakeRunner struct {
	calls     int
	lastInput pipeline.Input
	result    *pipeline.Result
	err       error
}

func (f *fakeRunner) Run(ctx context.Context, input pipeline.Input) (*pipeline.Result, error) {
	f.calls++
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func successResult() *pipeline.Result {
	return &pipeline.Result{
		VideoURL: "https://cdn/final.mp4",
		Prompt:   "combined",
		Output: pipeline.Output{
			RenderID: "render-1",
			Scenes: []pipeline.SceneArtifact{
				{SceneID: "scene_01_intro", VideoURL: "https://cdn/1.mp4", Duration: 4},
				{SceneID: "scene_02_detail", VideoURL: "https://cdn/2.mp4", Duration: 3},
				{SceneID: "scene_03_cta", VideoURL: "https://cdn/3.mp4", Duration: 3},
			},
		},
	}
}

func testServerConfig(t *testing.T, runner PipelineRunner) ServerConfig {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return ServerConfig{
		Runner:       runner,
		Store:        s,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		StartTime:    time.Now(),
		SceneAPIKey:  "scene-key",
		RenderAPIKey: "render-key",
		GeminiAPIKey: "gemini-key",
	}
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestGenerateVideo_Success(t *testing.T) {
	runner := &fakeRunner{result: successResult()}
	cfg := testServerConfig(t, runner)
	router := NewRouter(cfg)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-video",
		strings.NewReader(`{"productImageUrl":"https://x/p.png","avatarImageUrl":"https://x/a.png","marketingAngle":"Luxury reveal"}`))
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	body := decodeJSONBody(t, rr)
	if body["success"] != true {
		t.Error("success = false, want true")
	}
	if body["videoUrl"] != "https://cdn/final.mp4" {
		t.Errorf("videoUrl = %v", body["videoUrl"])
	}
	if body["runId"] == "" || body["runId"] == nil {
		t.Error("runId missing from response")
	}

	if runner.calls != 1 {
		t.Errorf("runner calls = %d, want 1", runner.calls)
	}
	if runner.lastInput.MarketingAngle != "Luxury reveal" {
		t.Errorf("marketing angle = %q", runner.lastInput.MarketingAngle)
	}
	if !runner.lastInput.Options.SendToSora2 || !runner.lastInput.Options.EnableShotstack {
		t.Error("omitted options must default to true")
	}
}

func TestGenerateVideo_MissingProductImage(t *testing.T) {
	runner := &fakeRunner{result: successResult()}
	cfg := testServerConfig(t, runner)
	router := NewRouter(cfg)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-video",
		strings.NewReader(`{"avatarImageUrl":"https://x/a.png"}`))
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	body := decodeJSONBody(t, rr)
	if body["error"] != "productImageUrl is required." {
		t.Errorf("error = %q, want exact validation message", body["error"])
	}
	if runner.calls != 0 {
		t.Errorf("runner calls = %d, want 0", runner.calls)
	}
}

func TestGenerateVideo_MissingAvatarImage(t *testing.T) {
	runner := &fakeRunner{result: successResult()}
	cfg := testServerConfig(t, runner)
	router := NewRouter(cfg)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-video",
		strings.NewReader(`{"productImageUrl":"https://x/p.png"}`))
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	body := decodeJSONBody(t, rr)
	if body["error"] != "avatarImageUrl is required." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestGenerateVideo_DefaultMarketingAngle(t *testing.T) {
	runner := &fakeRunner{result: successResult()}
	cfg := testServerConfig(t, runner)
	router := NewRouter(cfg)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-video",
		strings.NewReader(`{"productImageUrl":"https://x/p.png","avatarImageUrl":"https://x/a.png"}`))
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d: %s", rr.Code, rr.Body.String())
	}
	if runner.lastInput.MarketingAngle != "Product spotlight" {
		t.Errorf("marketing angle = %q, want default", runner.lastInput.MarketingAngle)
	}
}

func TestGenerateVideo_ExplicitOptionsOverrideDefaults(t *testing.T) {
	runner := &fakeRunner{result: successResult()}
	cfg := testServerConfig(t, runner)
	router := NewRouter(cfg)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-video",
		strings.NewReader(`{"productImageUrl":"https://x/p.png","avatarImageUrl":"https://x/a.png","options":{"sendToSora2":false,"logSteps":true}}`))
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d", rr.Code)
	}
	opts := runner.lastInput.Options
	if opts.SendToSora2 {
		t.Error("sendToSora2 = true, want explicit false")
	}
	if !opts.LogSteps {
		t.Error("logSteps = false, want explicit true")
	}
	if !opts.EnableShotstack {
		t.Error("enableShotstack = false, want default true")
	}
}

func TestGenerateVideo_PipelineErrorRecordsFailedRun(t *testing.T) {
	runner := &fakeRunner{err: errors.New("scene scene_02_detail generation failed (job task-2)")}
	cfg := testServerConfig(t, runner)
	router := NewRouter(cfg)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-video",
		strings.NewReader(`{"productImageUrl":"https://x/p.png","avatarImageUrl":"https://x/a.png"}`))
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusInternalServerError)
	}

	runs, err := cfg.Store.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("run count = %d, want 1", len(runs))
	}
	if runs[0].Status != store.RunStatusFailed {
		t.Errorf("run status = %s, want failed", runs[0].Status)
	}
	if runs[0].Error == "" {
		t.Error("run error not recorded")
	}
}

// cancellingRunner simulates a run aborted by client disconnect: it cancels
// the request context mid-run and returns the context error.
type cancellingRunner struct {
	cancel context.CancelFunc
}

func (c *cancellingRunner) Run(ctx context.Context, input pipeline.Input) (*pipeline.Result, error) {
	c.cancel()
	return nil, ctx.Err()
}

func TestGenerateVideo_ClientDisconnectStillRecordsFailure(t *testing.T) {
	runner := &cancellingRunner{}
	cfg := testServerConfig(t, runner)
	router := NewRouter(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.cancel = cancel

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-video",
		strings.NewReader(`{"productImageUrl":"https://x/p.png","avatarImageUrl":"https://x/a.png"}`)).WithContext(ctx)
	router.ServeHTTP(rr, req)

	runs, err := cfg.Store.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("run count = %d, want 1", len(runs))
	}
	if runs[0].Status != store.RunStatusFailed {
		t.Errorf("run status = %s, want failed even when the request context is cancelled", runs[0].Status)
	}
	if runs[0].Error == "" {
		t.Error("run error not recorded")
	}
}

func TestHealth_AllConfigured(t *testing.T) {
	cfg := testServerConfig(t, &fakeRunner{})
	router := NewRouter(cfg)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	body := decodeJSONBody(t, rr)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestHealth_MissingCredential(t *testing.T) {
	cfg := testServerConfig(t, &fakeRunner{})
	cfg.RenderAPIKey = ""
	router := NewRouter(cfg)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}

	body := decodeJSONBody(t, rr)
	services, ok := body["services"].(map[string]interface{})
	if !ok {
		t.Fatal("services missing from response")
	}
	if services["shotstack"] != "missing" {
		t.Errorf("shotstack = %v, want missing", services["shotstack"])
	}
	if services["sora2"] != "configured" {
		t.Errorf("sora2 = %v, want configured", services["sora2"])
	}
}

func TestRunsEndpoints(t *testing.T) {
	runner := &fakeRunner{result: successResult()}
	cfg := testServerConfig(t, runner)
	router := NewRouter(cfg)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-video",
		strings.NewReader(`{"productImageUrl":"https://x/p.png","avatarImageUrl":"https://x/a.png"}`))
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("generate status = %d", rr.Code)
	}
	runID, _ := decodeJSONBody(t, rr)["runId"].(string)
	if runID == "" {
		t.Fatal("runId missing")
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var list RunsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Runs) != 1 || list.Runs[0].Status != store.RunStatusSucceeded {
		t.Fatalf("runs = %+v, want one succeeded run", list.Runs)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs/"+runID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	var detail RunDetailResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if len(detail.Scenes) != 3 {
		t.Errorf("scene count = %d, want 3", len(detail.Scenes))
	}
	if detail.Scenes[0].SceneID != "scene_01_intro" {
		t.Errorf("first scene = %s", detail.Scenes[0].SceneID)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown run status = %d, want 404", rr.Code)
	}
}
