package assembly

import "testing"

func TestBuildRenderPayload_StartOffsets(t *testing.T) {
	clips := []Clip{
		{VideoURL: "https://cdn/a.mp4", Duration: 4, Transition: "none"},
		{VideoURL: "https://cdn/b.mp4", Duration: 3, Transition: "fade"},
		{VideoURL: "https://cdn/c.mp4", Duration: 3, Transition: "fade"},
	}

	payload := buildRenderPayload(clips, Output{})

	if len(payload.Timeline.Tracks) != 1 {
		t.Fatalf("tracks = %d, want 1", len(payload.Timeline.Tracks))
	}
	got := payload.Timeline.Tracks[0].Clips
	if len(got) != len(clips) {
		t.Fatalf("clips = %d, want %d", len(got), len(clips))
	}

	wantStarts := []int{0, 4, 7}
	total := 0
	for i, rc := range got {
		if rc.Start != wantStarts[i] {
			t.Errorf("clip %d start = %d, want %d", i, rc.Start, wantStarts[i])
		}
		if rc.Asset.Src != clips[i].VideoURL {
			t.Errorf("clip %d src = %q, want %q", i, rc.Asset.Src, clips[i].VideoURL)
		}
		total += rc.Length
	}
	if total != 10 {
		t.Errorf("total duration = %d, want sum of clip durations 10", total)
	}
}

func TestBuildRenderPayload_Transitions(t *testing.T) {
	clips := []Clip{
		{VideoURL: "https://cdn/a.mp4", Duration: 4, Transition: "none"},
		{VideoURL: "https://cdn/b.mp4", Duration: 3, Transition: "fade"},
	}

	payload := buildRenderPayload(clips, Output{})
	got := payload.Timeline.Tracks[0].Clips

	if got[0].Transition != nil {
		t.Errorf("clip 0 transition = %+v, want omitted for none", got[0].Transition)
	}
	if got[1].Transition == nil || got[1].Transition.In != "fade" || got[1].Transition.Out != "fade" {
		t.Errorf("clip 1 transition = %+v, want fade in/out", got[1].Transition)
	}
}

func TestBuildRenderPayload_OutputDefaults(t *testing.T) {
	payload := buildRenderPayload(nil, Output{})
	if payload.Output.Format != "mp4" || payload.Output.Resolution != "sd" || payload.Output.FPS != 25 {
		t.Errorf("output = %+v, want mp4/sd/25 defaults", payload.Output)
	}

	payload = buildRenderPayload(nil, Output{Format: "mp4", Resolution: "fhd", FPS: 30, Quality: "high"})
	if payload.Output.Resolution != "fhd" || payload.Output.FPS != 30 || payload.Output.Quality != "high" {
		t.Errorf("output = %+v, want overrides respected", payload.Output)
	}
}
