package store

import "time"

const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

type Run struct {
	ID              string    `json:"id"`
	ProductImageURL string    `json:"productImageUrl"`
	AvatarImageURL  string    `json:"avatarImageUrl"`
	MarketingAngle  string    `json:"marketingAngle"`
	Status          string    `json:"status"`
	VideoURL        string    `json:"videoUrl,omitempty"`
	RenderID        string    `json:"renderId,omitempty"`
	Prompt          string    `json:"prompt,omitempty"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type RunScene struct {
	RunID    string `json:"-"`
	SceneID  string `json:"sceneId"`
	Position int    `json:"position"`
	JobID    string `json:"jobId,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
	Duration int    `json:"duration"`
}
