package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// MatchProductAssets builds a ProductMatch from supplied local path
// identifiers and remote URLs. Paths are treated as identifiers only; no
// filesystem access happens here.
func MatchProductAssets(productImagePaths, productImageURLs []string) ProductMatch {
	var compatible []VerifiedAsset

	for _, path := range productImagePaths {
		if path == "" {
			continue
		}
		filename := extractFilename(path)
		ext := extractExtension(filename)
		compatible = append(compatible, VerifiedAsset{
			ID:           strings.TrimSuffix(filename, "."+ext),
			URL:          path,
			Type:         "image",
			Format:       ext,
			Tags:         []string{"product", "local"},
			Source:       "upload",
			Verified:     true,
			VerifiedAt:   time.Now().UTC(),
			QualityScore: 0.7,
			UsableFor:    []string{"reference", "product-shot"},
		})
	}

	for _, url := range productImageURLs {
		if url == "" || !strings.HasPrefix(url, "http") {
			continue
		}
		filename := extractFilename(url)
		ext := extractExtension(filename)
		id := strings.TrimSuffix(filename, "."+ext)
		if id == "" {
			id = "remote-asset"
		}
		compatible = append(compatible, VerifiedAsset{
			ID:           id,
			URL:          url,
			Type:         "image",
			Format:       ext,
			Tags:         []string{"product", "remote"},
			Source:       "upload",
			Verified:     true,
			VerifiedAt:   time.Now().UTC(),
			QualityScore: 0.8,
			UsableFor:    []string{"reference", "product-shot"},
		})
	}

	match := ProductMatch{
		CompatibleAssets: compatible,
		ReuseAllowed:     len(compatible) > 0,
	}
	if len(compatible) > 0 {
		match.Justification = fmt.Sprintf("Found %d compatible asset(s).", len(compatible))
	} else {
		match.Justification = "No compatible assets found. All scenes will be generated from text prompts only."
	}
	return match
}

func extractFilename(input string) string {
	segments := strings.Split(input, "/")
	last := segments[len(segments)-1]
	if last == "" {
		return "asset"
	}
	if i := strings.Index(last, "?"); i >= 0 {
		last = last[:i]
	}
	if last == "" {
		return "asset"
	}
	return last
}

func extractExtension(filename string) string {
	parts := strings.Split(filename, ".")
	if len(parts) > 1 {
		return strings.ToLower(parts[len(parts)-1])
	}
	return "png"
}
