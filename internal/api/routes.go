package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/promoforge/promoforge/internal/config"
	"github.com/promoforge/promoforge/internal/pipeline"
	"github.com/promoforge/promoforge/internal/store"
)

// PipelineRunner runs one video generation pipeline to a terminal outcome.
type PipelineRunner interface {
	Run(ctx context.Context, input pipeline.Input) (*pipeline.Result, error)
}

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Post("/generate-video", generateVideoHandler(cfg))
	r.Get("/runs", listRunsHandler(cfg))
	r.Get("/runs/{id}", getRunHandler(cfg))

	return r
}

// healthHandler reports per-service credential presence. The endpoint answers
// 503 while any upstream credential is missing so orchestration probes keep
// the agent out of rotation until it is fully configured.
func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := map[string]string{
			"sora2":     credentialStatus(cfg.SceneAPIKey),
			"shotstack": credentialStatus(cfg.RenderAPIKey),
			"gemini":    credentialStatus(cfg.GeminiAPIKey),
		}

		status := http.StatusOK
		state := "ok"
		for _, s := range services {
			if s != "configured" {
				status = http.StatusServiceUnavailable
				state = "degraded"
				break
			}
		}

		WriteJSON(w, status, HealthResponse{
			Status:   state,
			Version:  config.Version,
			UptimeS:  int64(time.Since(cfg.StartTime).Seconds()),
			Services: services,
		})
	}
}

func credentialStatus(key string) string {
	if key == "" {
		return "missing"
	}
	return "configured"
}

func generateVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateVideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.ProductImageURL == "" {
			WriteError(w, http.StatusBadRequest, "productImageUrl is required.", "BAD_REQUEST")
			return
		}
		if req.AvatarImageURL == "" {
			WriteError(w, http.StatusBadRequest, "avatarImageUrl is required.", "BAD_REQUEST")
			return
		}

		angle := req.MarketingAngle
		if angle == "" {
			angle = "Product spotlight"
		}

		input := pipeline.Input{
			ProductImageURL: req.ProductImageURL,
			AvatarImageURL:  req.AvatarImageURL,
			MarketingAngle:  angle,
			Options:         req.Options.ToOptions(),
		}

		run := &store.Run{
			ID:              uuid.NewString(),
			ProductImageURL: req.ProductImageURL,
			AvatarImageURL:  req.AvatarImageURL,
			MarketingAngle:  angle,
		}
		if cfg.Store != nil {
			if err := cfg.Store.CreateRun(r.Context(), run); err != nil {
				cfg.Logger.Error("failed to record run", "error", err, "run_id", run.ID)
			}
		}

		result, err := cfg.Runner.Run(r.Context(), input)

		// The request context may already be cancelled when the run ends
		// (client disconnect, timeout). Terminal outcomes must still reach
		// the store, so the completion writes use a detached context.
		recordCtx := context.WithoutCancel(r.Context())
		if err != nil {
			recordRunFailure(recordCtx, cfg, run, err)
			WriteError(w, http.StatusInternalServerError, err.Error(), "PIPELINE_ERROR")
			return
		}

		recordRunSuccess(recordCtx, cfg, run, result)
		WriteJSON(w, http.StatusOK, GenerateVideoResponse{
			Success:  true,
			RunID:    run.ID,
			VideoURL: result.VideoURL,
			Prompt:   result.Prompt,
			Output:   result.Output,
		})
	}
}

func recordRunFailure(ctx context.Context, cfg ServerConfig, run *store.Run, runErr error) {
	if cfg.Store == nil {
		return
	}
	run.Status = store.RunStatusFailed
	run.Error = runErr.Error()
	if err := cfg.Store.CompleteRun(ctx, run, nil); err != nil {
		cfg.Logger.Error("failed to record run failure", "error", err, "run_id", run.ID)
	}
}

func recordRunSuccess(ctx context.Context, cfg ServerConfig, run *store.Run, result *pipeline.Result) {
	if cfg.Store == nil {
		return
	}
	run.Status = store.RunStatusSucceeded
	run.VideoURL = result.VideoURL
	run.RenderID = result.Output.RenderID
	run.Prompt = result.Prompt

	scenes := make([]store.RunScene, len(result.Output.Scenes))
	for i, s := range result.Output.Scenes {
		scenes[i] = store.RunScene{
			SceneID:  s.SceneID,
			Position: i,
			VideoURL: s.VideoURL,
			Duration: s.Duration,
		}
	}
	if err := cfg.Store.CompleteRun(ctx, run, scenes); err != nil {
		cfg.Logger.Error("failed to record run success", "error", err, "run_id", run.ID)
	}
}

func listRunsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Store == nil {
			WriteJSON(w, http.StatusOK, RunsResponse{Runs: []RunResponse{}})
			return
		}

		runs, err := cfg.Store.ListRuns(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list runs", "INTERNAL_ERROR")
			return
		}

		resp := RunsResponse{Runs: make([]RunResponse, len(runs))}
		for i, run := range runs {
			resp.Runs[i] = RunToResponse(run)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getRunHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" || cfg.Store == nil {
			WriteError(w, http.StatusNotFound, "run not found", "NOT_FOUND")
			return
		}

		run, err := cfg.Store.GetRun(r.Context(), id)
		if errors.Is(err, store.ErrRunNotFound) {
			WriteError(w, http.StatusNotFound, "run not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		scenes, err := cfg.Store.GetRunScenes(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		resp := RunDetailResponse{RunResponse: RunToResponse(run), Prompt: run.Prompt}
		for _, s := range scenes {
			resp.Scenes = append(resp.Scenes, RunSceneToResponse(s))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
