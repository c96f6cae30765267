package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// MaxImageBytes caps embedded data URL images
const MaxImageBytes = 5 * 1024 * 1024

// AllowedImageTypes are the MIME types accepted for uploaded images
var AllowedImageTypes = []string{"image/png", "image/jpeg", "image/jpg", "image/webp"}

// ValidateImageURL accepts http(s) URLs and base64 data URLs of an allowed
// image type no larger than MaxImageBytes
func ValidateImageURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("image is required")
	}

	if strings.HasPrefix(raw, "data:") {
		return validateDataURL(raw)
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("image must be an http(s) URL or an uploaded image")
	}
	return nil
}

func validateDataURL(raw string) error {
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return errors.New("malformed image data")
	}

	mediaType, encoding, _ := strings.Cut(header, ";")
	allowed := false
	for _, t := range AllowedImageTypes {
		if strings.EqualFold(mediaType, t) {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.New("invalid file type, please select a PNG, JPG, or WebP image")
	}
	if encoding != "base64" {
		return errors.New("image data must be base64 encoded")
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+2 {
		return fmt.Errorf("file size exceeds %.1fMB limit", float64(MaxImageBytes)/(1024*1024))
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return errors.New("malformed image data")
	}
	if len(decoded) > MaxImageBytes {
		return fmt.Errorf("file size exceeds %.1fMB limit", float64(MaxImageBytes)/(1024*1024))
	}
	return nil
}
