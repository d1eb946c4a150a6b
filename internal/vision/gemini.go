// Package vision extracts grounded product descriptions from product images.
// The Gemini analyzer asks the model for a strict JSON description; the stub
// analyzer serves deployments without an API key.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"github.com/promoforge/promoforge/internal/pipeline"
)

var ErrInvalidJSON = errors.New("vision: invalid JSON from model")

const DefaultModel = "gemini-2.5-flash"

const analysisPrompt = `Analyze this product image of %q. Return a JSON object with these fields:
- object_form: array of strings describing the product shape/form
- materials: array of strings for materials visible
- colors: array of strings for dominant colors
- visible_parts: array of strings for distinct visible components
- visual_constraints: array of strings for things to maintain in video generation

Return ONLY the JSON object, no markdown.`

// GeminiAnalyzer is a thin wrapper around the official genai client.
type GeminiAnalyzer struct {
	cli   *genai.Client
	model string
	http  *http.Client
}

// NewGeminiAnalyzer builds an analyzer against the Gemini API backend. The
// genai client reads GEMINI_API_KEY from the environment.
func NewGeminiAnalyzer(ctx context.Context, model string) (*GeminiAnalyzer, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiAnalyzer{
		cli:   cli,
		model: model,
		http:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Analyze fetches the image, sends it with the analysis prompt, and parses
// the model's JSON into a product truth. Transient failures are retried with
// backoff before giving up.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, imageRef, productName string) (pipeline.VisionResult, error) {
	data, mime, err := g.loadImage(ctx, imageRef)
	if err != nil {
		return pipeline.VisionResult{}, err
	}

	contents := []*genai.Content{{Parts: []*genai.Part{
		{Text: fmt.Sprintf(analysisPrompt, productName)},
		{InlineData: &genai.Blob{MIMEType: mime, Data: data}},
	}}}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents,
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		if err != nil {
			lastErr = err
		} else if truth, perr := parseTruthResponse(resp); perr != nil {
			lastErr = perr
		} else {
			return pipeline.VisionResult{Truth: truth, Confidence: 0.85}, nil
		}

		select {
		case <-ctx.Done():
			return pipeline.VisionResult{}, ctx.Err()
		case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
		}
	}
	return pipeline.VisionResult{}, lastErr
}

// parseTruthResponse pulls the product truth JSON out of a model response.
// Safety-blocked candidates come back with a nil Content, so every level of
// the response is checked before dereferencing.
func parseTruthResponse(resp *genai.GenerateContentResponse) (pipeline.ProductTruth, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return pipeline.ProductTruth{}, ErrInvalidJSON
	}
	var truth pipeline.ProductTruth
	if err := json.Unmarshal([]byte(resp.Candidates[0].Content.Parts[0].Text), &truth); err != nil {
		return pipeline.ProductTruth{}, ErrInvalidJSON
	}
	return truth, nil
}

// loadImage accepts a data URL or an http(s) URL and returns raw bytes plus
// the MIME type to report to the model.
func (g *GeminiAnalyzer) loadImage(ctx context.Context, imageRef string) ([]byte, string, error) {
	if strings.HasPrefix(imageRef, "data:") {
		return decodeDataURL(imageRef)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageRef, nil)
	if err != nil {
		return nil, "", fmt.Errorf("vision: build image request: %w", err)
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("vision: fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("vision: fetch image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, "", fmt.Errorf("vision: read image: %w", err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		mime = "image/png"
	}
	return data, mime, nil
}

func decodeDataURL(ref string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return nil, "", errors.New("vision: not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("vision: malformed data URL")
	}

	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = "image/png"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("vision: decode data URL: %w", err)
	}
	return data, mime, nil
}
