// Package media checks media references attached to posts, vehicles and messages. A reference is
// either an http(s) URL or a base64 payload, optionally wrapped in a data: URI.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"net/url"
	"strings"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"crewz/internal/models"
)

// Kind classifies a checked reference.
type Kind string

const (
	KindRemote Kind = "remote"
	KindImage  Kind = "image"
	KindVideo  Kind = "video"
)

var videoTypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}

// Limits bounds inline payloads. Zero disables a bound.
type Limits struct {
	MaxBytes     int
	MaxDimension int
	MaxItems     int
}

// Info describes an accepted reference.
type Info struct {
	Kind   Kind
	Format string
	Width  int
	Height int
	Bytes  int
}

// Checker validates media references against Limits.
type Checker struct {
	limits Limits
}

func NewChecker(limits Limits) *Checker {
	return &Checker{limits: limits}
}

// CheckAll validates every reference in refs.
func (c *Checker) CheckAll(refs []string) error {
	if c.limits.MaxItems > 0 && len(refs) > c.limits.MaxItems {
		return models.NewValidationError(fmt.Sprintf("at most %d media items are allowed", c.limits.MaxItems))
	}
	for i, ref := range refs {
		if _, err := c.Check(ref); err != nil {
			return models.NewValidationError(fmt.Sprintf("media[%d]: %s", i, err.Error()))
		}
	}
	return nil
}

// Check validates a single reference and describes it.
func (c *Checker) Check(ref string) (*Info, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, models.NewValidationError("media reference is empty")
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" {
			return nil, models.NewValidationError("media URL is malformed")
		}
		return &Info{Kind: KindRemote}, nil
	}

	mime, payload, err := splitDataURI(ref)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if c.limits.MaxBytes > 0 && base64.StdEncoding.DecodedLen(len(payload)) > c.limits.MaxBytes+2 {
		return nil, c.tooLarge()
	}
	raw, err := decodeBase64(payload)
	if err != nil {
		return nil, models.NewValidationError("media is not valid base64")
	}
	if c.limits.MaxBytes > 0 && len(raw) > c.limits.MaxBytes {
		return nil, c.tooLarge()
	}

	if videoTypes[mime] {
		return &Info{Kind: KindVideo, Format: strings.TrimPrefix(mime, "video/"), Bytes: len(raw)}, nil
	}
	if mime != "" && !strings.HasPrefix(mime, "image/") {
		return nil, models.NewValidationError(fmt.Sprintf("unsupported media type %q", mime))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, models.NewValidationError("image must be JPEG, PNG, GIF or WebP")
	}
	if max := c.limits.MaxDimension; max > 0 && (cfg.Width > max || cfg.Height > max) {
		return nil, models.NewValidationError(fmt.Sprintf("image dimensions %dx%d exceed %dpx", cfg.Width, cfg.Height, max))
	}
	return &Info{Kind: KindImage, Format: format, Width: cfg.Width, Height: cfg.Height, Bytes: len(raw)}, nil
}

func (c *Checker) tooLarge() error {
	return models.NewValidationError(fmt.Sprintf("media exceeds %d bytes", c.limits.MaxBytes))
}

// splitDataURI returns the declared MIME type (empty for a bare payload) and the base64 payload.
func splitDataURI(ref string) (string, string, error) {
	if !strings.HasPrefix(ref, "data:") {
		return "", ref, nil
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return "", "", fmt.Errorf("data URI has no payload")
	}
	mime, params, _ := strings.Cut(header, ";")
	if !strings.Contains(params, "base64") {
		return "", "", fmt.Errorf("data URI must be base64 encoded")
	}
	return strings.ToLower(mime), payload, nil
}

func decodeBase64(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return raw, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
