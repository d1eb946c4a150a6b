// Package assets resolves scene asset references into image references the
// generation service can consume. Remote URLs pass through untouched; local
// paths are inlined as data URLs, with a 1x1 placeholder written for paths
// that do not exist yet.
package assets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// placeholderPNG is a 1x1 transparent PNG used when a referenced local asset
// is missing. A pipeline run never aborts on a missing file.
const placeholderPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR4nGNgYAAAAAMAASsJTYQAAAAASUVORK5CYII="

// Resolver turns asset references into prompt-ready image references.
// Relative paths are resolved against BaseDir.
type Resolver struct {
	BaseDir string
}

func NewResolver(baseDir string) *Resolver {
	return &Resolver{BaseDir: baseDir}
}

// Resolve returns the reference to hand to the generation service plus an
// optional trace note. URLs and data URLs pass through. Local files are
// inlined as data URLs; a missing file is replaced by a placeholder image so
// later runs find the same path populated.
func (r *Resolver) Resolve(assetRef string) (string, string, error) {
	if assetRef == "" {
		return "", "", nil
	}
	if strings.HasPrefix(assetRef, "http://") || strings.HasPrefix(assetRef, "https://") || strings.HasPrefix(assetRef, "data:") {
		return assetRef, "", nil
	}

	abs := assetRef
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.BaseDir, assetRef)
	}

	note := ""
	if _, err := os.Stat(abs); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", "", fmt.Errorf("stat asset %s: %w", assetRef, err)
		}
		if err := writePlaceholder(abs); err != nil {
			return "", "", err
		}
		note = fmt.Sprintf("Asset missing, placeholder created at %s", assetRef)
	}

	dataURL, err := toDataURL(abs)
	if err != nil {
		return "", "", err
	}
	return dataURL, note, nil
}

func writePlaceholder(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(placeholderPNG)
	if err != nil {
		return fmt.Errorf("decode placeholder image: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write placeholder image: %w", err)
	}
	return nil
}

func toDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read asset %s: %w", path, err)
	}

	mime := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
