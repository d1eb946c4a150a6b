package pipeline

import "strings"

// Scene plan constants. Three scenes today: intro/reveal, detail/macro, and
// call-to-action. The first scene always cuts in hard; later scenes fade.
const (
	SceneIntro  = "scene_01_intro"
	SceneDetail = "scene_02_detail"
	SceneCTA    = "scene_03_cta"
)

// AssetSelector picks the reference asset for a scene. The observed behavior
// assigns every scene the first compatible asset; whether each scene should
// instead get a scene-appropriate asset is pending product-owner confirmation,
// so the selection is a seam rather than a constant.
type AssetSelector func(sceneIndex int, match ProductMatch) string

// FirstAssetSelector returns the first compatible asset's URL for every scene,
// or empty when no assets matched.
func FirstAssetSelector(_ int, match ProductMatch) string {
	if len(match.CompatibleAssets) == 0 {
		return ""
	}
	return match.CompatibleAssets[0].URL
}

// Synthesize deterministically builds the ordered scene plan from product
// truth, market insight, and the asset match. It is a pure function: identical
// input yields byte-identical output. Missing lists are treated as empty.
func Synthesize(productName string, truth ProductTruth, market MarketInsight, match ProductMatch, selectAsset AssetSelector) []SceneSpec {
	if selectAsset == nil {
		selectAsset = FirstAssetSelector
	}

	scenes := []SceneSpec{
		{SceneID: SceneIntro, Prompt: buildIntroPrompt(productName, truth, market), Duration: 4},
		{SceneID: SceneDetail, Prompt: buildDetailPrompt(productName, truth, market), Duration: 3},
		{SceneID: SceneCTA, Prompt: buildCTAPrompt(productName, truth, market), Duration: 3},
	}

	for i := range scenes {
		if i == 0 {
			scenes[i].Transition = "none"
		} else {
			scenes[i].Transition = "fade"
		}
		scenes[i].AssetRef = selectAsset(i, match)
	}

	return scenes
}

// TimelineFromScenes derives assembly timeline rows from the scene plan,
// preserving order.
func TimelineFromScenes(scenes []SceneSpec) []TimelineEntry {
	entries := make([]TimelineEntry, len(scenes))
	for i, s := range scenes {
		entries[i] = TimelineEntry{
			SceneID:    s.SceneID,
			Label:      strings.ReplaceAll(s.SceneID, "_", " "),
			Duration:   s.Duration,
			Transition: s.Transition,
			AssetRef:   s.AssetRef,
		}
	}
	return entries
}

// CombinedPrompt joins all scene prompts for the result payload.
func CombinedPrompt(scenes []SceneSpec) string {
	prompts := make([]string, len(scenes))
	for i, s := range scenes {
		prompts[i] = s.Prompt
	}
	return strings.Join(prompts, "\n\n")
}

func buildIntroPrompt(name string, truth ProductTruth, market MarketInsight) string {
	form := strings.Join(truth.ObjectForm, ", ")
	materials := strings.Join(truth.Materials, ", ")
	colors := strings.Join(truth.Colors, ", ")
	hook := first(market.Hooks, name+" reveal")

	return "Cinematic product reveal: a " + colors + " " + materials + " " + form + ". " + hook +
		". Professional studio lighting, clean background, smooth camera dolly. " +
		strings.Join(truth.VisualConstraints, ". ") + "."
}

func buildDetailPrompt(name string, truth ProductTruth, market MarketInsight) string {
	parts := strings.Join(truth.VisibleParts, " and ")
	if parts == "" {
		parts = name
	}
	pattern := first(market.VisualPatterns, "clean product spotlight")

	return "Extreme close-up macro shot of " + parts + ", revealing texture, quality, and craftsmanship. " +
		pattern + ". Smooth camera movement with shallow depth of field."
}

func buildCTAPrompt(name string, truth ProductTruth, market MarketInsight) string {
	cta := first(market.CTAStyles, name+" call-to-action")
	signals := strings.Join(market.EngagementSignals, ", ")
	if signals == "" {
		signals = "quick reveal"
	}

	return cta + ". Product centered in frame, bold composition. " + signals + ". Clean, minimal background."
}

func first(list []string, fallback string) string {
	if len(list) > 0 && list[0] != "" {
		return list[0]
	}
	return fallback
}
