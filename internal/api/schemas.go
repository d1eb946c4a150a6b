package api

import (
	"time"

	"github.com/promoforge/promoforge/internal/pipeline"
	"github.com/promoforge/promoforge/internal/store"
)

type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	UptimeS  int64             `json:"uptime_s"`
	Services map[string]string `json:"services"`
}

// GenerateVideoRequest is the POST /generate-video body. Option fields are
// pointers so an omitted option keeps its default instead of reading as false.
type GenerateVideoRequest struct {
	ProductImageURL string          `json:"productImageUrl"`
	AvatarImageURL  string          `json:"avatarImageUrl"`
	MarketingAngle  string          `json:"marketingAngle,omitempty"`
	Options         *OptionsRequest `json:"options,omitempty"`
}

type OptionsRequest struct {
	GeneratePrompt  *bool `json:"generatePrompt,omitempty"`
	GenerateScript  *bool `json:"generateScript,omitempty"`
	SendToSora2     *bool `json:"sendToSora2,omitempty"`
	EnableShotstack *bool `json:"enableShotstack,omitempty"`
	LogSteps        *bool `json:"logSteps,omitempty"`
}

// ToOptions applies default-true semantics for every toggle except logSteps.
func (o *OptionsRequest) ToOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	if o == nil {
		return opts
	}
	if o.GeneratePrompt != nil {
		opts.GeneratePrompt = *o.GeneratePrompt
	}
	if o.GenerateScript != nil {
		opts.GenerateScript = *o.GenerateScript
	}
	if o.SendToSora2 != nil {
		opts.SendToSora2 = *o.SendToSora2
	}
	if o.EnableShotstack != nil {
		opts.EnableShotstack = *o.EnableShotstack
	}
	if o.LogSteps != nil {
		opts.LogSteps = *o.LogSteps
	}
	return opts
}

type GenerateVideoResponse struct {
	Success  bool            `json:"success"`
	RunID    string          `json:"runId,omitempty"`
	VideoURL string          `json:"videoUrl,omitempty"`
	Prompt   string          `json:"prompt,omitempty"`
	Output   pipeline.Output `json:"output"`
}

type RunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

type RunResponse struct {
	ID              string `json:"id"`
	ProductImageURL string `json:"productImageUrl"`
	AvatarImageURL  string `json:"avatarImageUrl,omitempty"`
	MarketingAngle  string `json:"marketingAngle,omitempty"`
	Status          string `json:"status"`
	VideoURL        string `json:"videoUrl,omitempty"`
	RenderID        string `json:"renderId,omitempty"`
	Error           string `json:"error,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type RunDetailResponse struct {
	RunResponse
	Prompt string             `json:"prompt,omitempty"`
	Scenes []RunSceneResponse `json:"scenes,omitempty"`
}

type RunSceneResponse struct {
	SceneID  string `json:"sceneId"`
	JobID    string `json:"jobId,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
	Duration int    `json:"duration"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func RunToResponse(r *store.Run) RunResponse {
	return RunResponse{
		ID:              r.ID,
		ProductImageURL: r.ProductImageURL,
		AvatarImageURL:  r.AvatarImageURL,
		MarketingAngle:  r.MarketingAngle,
		Status:          r.Status,
		VideoURL:        r.VideoURL,
		RenderID:        r.RenderID,
		Error:           r.Error,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
}

func RunSceneToResponse(s store.RunScene) RunSceneResponse {
	return RunSceneResponse{
		SceneID:  s.SceneID,
		JobID:    s.JobID,
		VideoURL: s.VideoURL,
		Duration: s.Duration,
	}
}
