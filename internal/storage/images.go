// Package storage persists uploaded property images to local disk. The
// admin form submits images either as plain URLs (kept as-is) or as base64
// data-URLs, which are decoded and written under the upload directory. The
// file write and the later database row are not atomic; a crash in between
// leaves an orphaned file, which is accepted for this deployment size.
package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotDataURL is returned when the payload is not a base64 data-URL.
var ErrNotDataURL = fmt.Errorf("not a base64 data url")

// ImageStore writes decoded images into Dir and returns their public URL,
// prefixed with BaseURL when one is configured.
type ImageStore struct {
	Dir     string
	BaseURL string
}

func NewImageStore(dir, baseURL string) *ImageStore {
	return &ImageStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

// IsDataURL reports whether the payload looks like an inline base64 image.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:") && strings.Contains(s, ";base64,")
}

// SaveDataURL decodes a "data:image/<ext>;base64,<payload>" string, writes
// it to a timestamped file in the upload directory and returns the public
// URL of the stored file. seq disambiguates multiple images persisted
// within the same millisecond (one property form can carry several).
func (s *ImageStore) SaveDataURL(dataURL string, seq int) (string, error) {
	if !IsDataURL(dataURL) {
		return "", ErrNotDataURL
	}
	meta, payload, _ := strings.Cut(dataURL, ";base64,")

	// "data:image/png" -> "png"; anything unrecognized falls back to png,
	// matching the upload form's behavior.
	ext := "png"
	if _, mime, ok := strings.Cut(meta, "data:"); ok {
		if _, sub, ok := strings.Cut(mime, "/"); ok && sub != "" {
			ext = sub
		}
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	filename := fmt.Sprintf("image_%d_%d.%s", time.Now().UnixMilli(), seq, ext)
	if err := os.WriteFile(filepath.Join(s.Dir, filename), raw, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.BaseURL + "/" + filename, nil
}
