package media

import (
	"fmt"
	"mime"
	"strings"
)

var imageMimeTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// normalizeMimeType strips parameters and lowercases the media type.
func normalizeMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("content type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("content type invalid: %w", err)
	}
	return strings.ToLower(mediaType), nil
}

func isImage(mimeType string) bool {
	_, ok := imageMimeTypes[mimeType]
	return ok
}
