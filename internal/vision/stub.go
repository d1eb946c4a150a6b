package vision

import (
	"context"
	"strings"

	"github.com/promoforge/promoforge/internal/pipeline"
)

// StubAnalyzer serves deployments without a Gemini key. It reports a low
// confidence so callers can tell a real analysis from the fallback.
type StubAnalyzer struct{}

func (StubAnalyzer) Analyze(ctx context.Context, imageRef, productName string) (pipeline.VisionResult, error) {
	return pipeline.VisionResult{
		Truth: pipeline.ProductTruth{
			ObjectForm:        []string{strings.ToLower(productName)},
			Materials:         []string{"unknown"},
			Colors:            []string{"unknown"},
			VisibleParts:      []string{},
			VisualConstraints: []string{"show product only", "no extra props"},
		},
		Confidence: 0.3,
	}, nil
}
