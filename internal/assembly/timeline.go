package assembly

// Clip is one finished scene artifact placed on the render timeline.
// Clips are rendered back to back; each start offset is the sum of the
// durations of every clip before it.
type Clip struct {
	VideoURL   string
	Duration   int    // seconds
	Transition string // "fade" or "none"
}

// Output holds the render output options recognised by the edit service.
type Output struct {
	Format     string // default "mp4"
	Resolution string // "sd", "hd" or "fhd"; default "sd"
	FPS        int    // 25 or 30; default 25
	Quality    string // "low", "medium" or "high"
}

type renderAsset struct {
	Type string `json:"type"`
	Src  string `json:"src"`
}

type renderTransition struct {
	In  string `json:"in"`
	Out string `json:"out"`
}

type renderClip struct {
	Asset      renderAsset       `json:"asset"`
	Start      int               `json:"start"`
	Length     int               `json:"length"`
	Transition *renderTransition `json:"transition,omitempty"`
}

type renderTrack struct {
	Clips []renderClip `json:"clips"`
}

type renderTimeline struct {
	Tracks []renderTrack `json:"tracks"`
}

type renderOutput struct {
	Format     string `json:"format"`
	Resolution string `json:"resolution"`
	FPS        int    `json:"fps"`
	Quality    string `json:"quality,omitempty"`
}

type renderPayload struct {
	Timeline renderTimeline `json:"timeline"`
	Output   renderOutput   `json:"output"`
}

// buildRenderPayload converts ordered clips into the service's render request.
// Clip order defines timeline position; the total timeline duration equals the
// sum of per-clip durations.
func buildRenderPayload(clips []Clip, out Output) renderPayload {
	rendered := make([]renderClip, len(clips))
	start := 0
	for i, clip := range clips {
		rc := renderClip{
			Asset:  renderAsset{Type: "video", Src: clip.VideoURL},
			Start:  start,
			Length: clip.Duration,
		}
		if clip.Transition == "fade" {
			rc.Transition = &renderTransition{In: "fade", Out: "fade"}
		}
		rendered[i] = rc
		start += clip.Duration
	}

	format := out.Format
	if format == "" {
		format = "mp4"
	}
	resolution := out.Resolution
	if resolution == "" {
		resolution = "sd"
	}
	fps := out.FPS
	if fps == 0 {
		fps = 25
	}

	return renderPayload{
		Timeline: renderTimeline{Tracks: []renderTrack{{Clips: rendered}}},
		Output: renderOutput{
			Format:     format,
			Resolution: resolution,
			FPS:        fps,
			Quality:    out.Quality,
		},
	}
}
