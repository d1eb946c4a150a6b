// Package pipeline contains the product video generation pipeline: the domain
// model, the prompt synthesizer, the result cache, and the orchestrator that
// sequences vision analysis, per-scene generation, and final assembly.
package pipeline

import "time"

// ProductTruth is the structured visual description of a product extracted
// from its image. Immutable once produced; DefaultProductTruth is substituted
// when extraction fails or is skipped.
type ProductTruth struct {
	ObjectForm        []string `json:"object_form"`
	Materials         []string `json:"materials"`
	Colors            []string `json:"colors"`
	VisibleParts      []string `json:"visible_parts"`
	VisualConstraints []string `json:"visual_constraints"`
}

func DefaultProductTruth() ProductTruth {
	return ProductTruth{
		ObjectForm:        []string{"product"},
		Materials:         []string{"unknown"},
		Colors:            []string{"unknown"},
		VisibleParts:      []string{},
		VisualConstraints: []string{"show product only"},
	}
}

// MarketInsight holds marketing language fragments used to flavor generated
// prompts. Immutable.
type MarketInsight struct {
	Hooks             []string `json:"hooks"`
	CTAStyles         []string `json:"ctaStyles"`
	VisualPatterns    []string `json:"visualPatterns"`
	EngagementSignals []string `json:"engagementSignals"`
}

// BuildMarketInsight derives insight fragments from a free-form marketing
// angle supplied by the caller.
func BuildMarketInsight(marketingAngle string) MarketInsight {
	return MarketInsight{
		Hooks:             []string{marketingAngle},
		CTAStyles:         []string{marketingAngle + " - call to action"},
		VisualPatterns:    []string{"clean product spotlight"},
		EngagementSignals: []string{"quick reveal", "macro detail"},
	}
}

// VerifiedAsset is one validated product image usable as a generation
// reference.
type VerifiedAsset struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Type         string    `json:"type"`
	Format       string    `json:"format"`
	Tags         []string  `json:"tags"`
	Source       string    `json:"source"`
	Verified     bool      `json:"verified"`
	VerifiedAt   time.Time `json:"verifiedAt"`
	QualityScore float64   `json:"qualityScore"`
	UsableFor    []string  `json:"usableFor"`
}

// ProductMatch is built once per run from the supplied image references and
// never mutated afterwards. An empty asset list is valid and means all scenes
// are generated from text prompts only.
type ProductMatch struct {
	CompatibleAssets []VerifiedAsset `json:"compatibleAssets"`
	ReuseAllowed     bool            `json:"reuseAllowed"`
	Justification    string          `json:"justification"`
}

// SceneSpec is one scene in the generation plan. Order defines timeline
// position and is never reordered downstream.
type SceneSpec struct {
	SceneID    string `json:"sceneId"`
	Prompt     string `json:"prompt"`
	Duration   int    `json:"duration"`
	Transition string `json:"transition"` // "fade" or "none"
	AssetRef   string `json:"assetRef,omitempty"`
}

// TimelineEntry mirrors a SceneSpec as an assembly timeline row.
type TimelineEntry struct {
	SceneID    string `json:"sceneId"`
	Label      string `json:"label"`
	Duration   int    `json:"duration"`
	Transition string `json:"transition"`
	AssetRef   string `json:"assetRef,omitempty"`
}

// SceneArtifact is a finished scene: the generated clip URL plus the planned
// duration it was generated for.
type SceneArtifact struct {
	SceneID  string `json:"sceneId"`
	VideoURL string `json:"videoUrl"`
	Duration int    `json:"duration"`
}

// Options are the recognised pipeline toggles. The API boundary applies the
// default-true semantics before constructing this struct.
type Options struct {
	GeneratePrompt  bool // run vision analysis
	GenerateScript  bool // accepted, currently informational only
	SendToSora2     bool // perform scene generation
	EnableShotstack bool // perform assembly
	LogSteps        bool // verbose step tracing
}

func DefaultOptions() Options {
	return Options{
		GeneratePrompt:  true,
		GenerateScript:  true,
		SendToSora2:     true,
		EnableShotstack: true,
	}
}

// Input is one pipeline run request.
type Input struct {
	ProductImageURL string
	AvatarImageURL  string
	MarketingAngle  string
	Options         Options
}

// Output is the structured bag of per-scene artifacts and identifiers
// returned on success for audit and debugging.
type Output struct {
	Scenes   []SceneArtifact `json:"scenes,omitempty"`
	RenderID string          `json:"renderId,omitempty"`
	Timeline []TimelineEntry `json:"timeline,omitempty"`
	Prompts  []SceneSpec     `json:"prompts,omitempty"`
	Notes    []string        `json:"notes,omitempty"`
}

// Result is the successful terminal outcome of a run. Failures are reported
// through the error return of Orchestrator.Run, never alongside a Result.
type Result struct {
	VideoURL string `json:"videoUrl,omitempty"`
	Prompt   string `json:"prompt"`
	Output   Output `json:"output"`
}
