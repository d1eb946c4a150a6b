package pipeline

import (
	"reflect"
	"strings"
	"testing"
)

func sampleTruth() ProductTruth {
	return ProductTruth{
		ObjectForm:        []string{"bottle"},
		Materials:         []string{"glass"},
		Colors:            []string{"amber"},
		VisibleParts:      []string{"cap", "label"},
		VisualConstraints: []string{"show product only"},
	}
}

func TestSynthesize_ThreeScenesInOrder(t *testing.T) {
	match := MatchProductAssets(nil, []string{"https://x/p.png"})
	scenes := Synthesize("Serum", sampleTruth(), BuildMarketInsight("Luxury reveal"), match, nil)

	if len(scenes) != 3 {
		t.Fatalf("scenes = %d, want 3", len(scenes))
	}

	wantIDs := []string{SceneIntro, SceneDetail, SceneCTA}
	wantDurations := []int{4, 3, 3}
	for i, s := range scenes {
		if s.SceneID != wantIDs[i] {
			t.Errorf("scene %d id = %q, want %q", i, s.SceneID, wantIDs[i])
		}
		if s.Duration != wantDurations[i] {
			t.Errorf("scene %d duration = %d, want %d", i, s.Duration, wantDurations[i])
		}
		if s.Prompt == "" {
			t.Errorf("scene %d has empty prompt", i)
		}
	}

	if scenes[0].Transition != "none" {
		t.Errorf("first transition = %q, want none", scenes[0].Transition)
	}
	for _, s := range scenes[1:] {
		if s.Transition != "fade" {
			t.Errorf("scene %s transition = %q, want fade", s.SceneID, s.Transition)
		}
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	truth := sampleTruth()
	market := BuildMarketInsight("Luxury reveal")
	match := MatchProductAssets(nil, []string{"https://x/p.png"})

	a := Synthesize("Serum", truth, market, match, nil)
	b := Synthesize("Serum", truth, market, match, nil)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("synthesis is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestSynthesize_EmptyListsNeverPanic(t *testing.T) {
	scenes := Synthesize("Widget", ProductTruth{}, MarketInsight{}, ProductMatch{}, nil)

	if len(scenes) != 3 {
		t.Fatalf("scenes = %d, want 3", len(scenes))
	}
	if !strings.Contains(scenes[0].Prompt, "Widget reveal") {
		t.Errorf("intro prompt missing hook fallback: %q", scenes[0].Prompt)
	}
	if !strings.Contains(scenes[1].Prompt, "Widget") {
		t.Errorf("detail prompt missing product name fallback: %q", scenes[1].Prompt)
	}
	if !strings.Contains(scenes[2].Prompt, "quick reveal") {
		t.Errorf("cta prompt missing signals fallback: %q", scenes[2].Prompt)
	}
	for _, s := range scenes {
		if s.AssetRef != "" {
			t.Errorf("scene %s assetRef = %q, want empty with no assets", s.SceneID, s.AssetRef)
		}
	}
}

func TestSynthesize_FirstAssetSelectedForEveryScene(t *testing.T) {
	match := MatchProductAssets(nil, []string{"https://x/first.png", "https://x/second.png"})
	scenes := Synthesize("Serum", sampleTruth(), BuildMarketInsight("angle"), match, nil)

	for _, s := range scenes {
		if s.AssetRef != "https://x/first.png" {
			t.Errorf("scene %s assetRef = %q, want first asset", s.SceneID, s.AssetRef)
		}
	}
}

func TestSynthesize_CustomAssetSelector(t *testing.T) {
	match := MatchProductAssets(nil, []string{"https://x/a.png", "https://x/b.png"})
	perScene := func(i int, m ProductMatch) string {
		return m.CompatibleAssets[i%len(m.CompatibleAssets)].URL
	}

	scenes := Synthesize("Serum", sampleTruth(), BuildMarketInsight("angle"), match, perScene)
	if scenes[0].AssetRef == scenes[1].AssetRef {
		t.Error("custom selector should allow distinct per-scene assets")
	}
}

func TestTimelineFromScenes_PreservesCountAndDuration(t *testing.T) {
	scenes := Synthesize("Serum", sampleTruth(), BuildMarketInsight("angle"), ProductMatch{}, nil)
	timeline := TimelineFromScenes(scenes)

	if len(timeline) != len(scenes) {
		t.Fatalf("timeline entries = %d, want %d", len(timeline), len(scenes))
	}

	sceneTotal, timelineTotal := 0, 0
	for i := range scenes {
		sceneTotal += scenes[i].Duration
		timelineTotal += timeline[i].Duration
		if timeline[i].SceneID != scenes[i].SceneID {
			t.Errorf("entry %d scene id = %q, want %q", i, timeline[i].SceneID, scenes[i].SceneID)
		}
	}
	if sceneTotal != timelineTotal {
		t.Errorf("timeline duration = %d, want %d", timelineTotal, sceneTotal)
	}

	if timeline[0].Label != "scene 01 intro" {
		t.Errorf("label = %q, want underscores replaced", timeline[0].Label)
	}
}

func TestCombinedPrompt(t *testing.T) {
	scenes := []SceneSpec{{Prompt: "one"}, {Prompt: "two"}}
	if got := CombinedPrompt(scenes); got != "one\n\ntwo" {
		t.Errorf("combined = %q", got)
	}
}

func TestCacheKey_StableAndNameNormalised(t *testing.T) {
	truth := sampleTruth()

	a := CacheKey("Amber Serum", truth)
	b := CacheKey("Amber Serum", truth)
	if a != b {
		t.Errorf("keys differ for identical input: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "prompt_amber_serum_") {
		t.Errorf("key = %q, want prompt_amber_serum_ prefix", a)
	}

	other := truth
	other.Colors = []string{"blue"}
	if CacheKey("Amber Serum", other) == a {
		t.Error("different truth should produce a different key")
	}
}

func TestMatchProductAssets(t *testing.T) {
	match := MatchProductAssets(
		[]string{"assets/hero.jpg", ""},
		[]string{"https://cdn/p.png?v=2", "not-a-url", ""},
	)

	if len(match.CompatibleAssets) != 2 {
		t.Fatalf("assets = %d, want 2", len(match.CompatibleAssets))
	}
	if !match.ReuseAllowed {
		t.Error("ReuseAllowed = false, want true with assets present")
	}

	local := match.CompatibleAssets[0]
	if local.ID != "hero" || local.Format != "jpg" || local.QualityScore != 0.7 {
		t.Errorf("local asset = %+v", local)
	}

	rem := match.CompatibleAssets[1]
	if rem.ID != "p" || rem.Format != "png" || rem.QualityScore != 0.8 {
		t.Errorf("remote asset = %+v", rem)
	}

	empty := MatchProductAssets(nil, nil)
	if empty.ReuseAllowed || len(empty.CompatibleAssets) != 0 {
		t.Errorf("empty match = %+v", empty)
	}
	if empty.Justification == "" {
		t.Error("empty match missing justification")
	}
}
