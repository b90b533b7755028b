package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Asset describes a file stored on the media host.
type Asset struct {
	URL       string    `json:"url"`
	PublicID  string    `json:"public_id"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Format    string    `json:"format"`
	Bytes     int       `json:"bytes"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// UploadParams is what the relay asks the media host to do with one file.
type UploadParams struct {
	PublicID       string
	Folder         string
	Overwrite      bool
	ResourceType   string
	Transformation string
}

// Host is the subset of the media provider API the relay depends on.
type Host interface {
	Upload(ctx context.Context, dataURI string, params UploadParams) (*Asset, error)
	// Destroy returns the provider's result string, "ok" on success.
	Destroy(ctx context.Context, publicID string) (string, error)
	// Search lists assets matching a folder expression, newest first.
	Search(ctx context.Context, expression string, maxResults int) ([]Asset, error)
	URL(publicID string, transformation string) (string, error)
	Sign(params url.Values) (string, error)
	CloudName() string
	APIKey() string
}

// Transform is a caller-selected delivery transformation for an existing asset.
type Transform struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Crop    string `json:"crop"`
	Quality string `json:"quality"`
	Format  string `json:"format"`
}

var crops = map[string]bool{
	"fill": true, "fit": true, "limit": true, "scale": true,
	"thumb": true, "crop": true, "pad": true,
}

const maxDimension = 4000

func (t Transform) validate() error {
	if t.Width < 0 || t.Width > maxDimension || t.Height < 0 || t.Height > maxDimension {
		return fmt.Errorf("%w: width and height must be between 0 and %d", ErrInvalidTransform, maxDimension)
	}
	if t.Crop != "" && !crops[t.Crop] {
		return fmt.Errorf("%w: unsupported crop %q", ErrInvalidTransform, t.Crop)
	}
	for _, v := range []string{t.Quality, t.Format} {
		if strings.ContainsAny(v, ",/ ") {
			return fmt.Errorf("%w: %q", ErrInvalidTransform, v)
		}
	}
	return nil
}

// String renders t in provider syntax with a fixed component order.
func (t Transform) String() string {
	var parts []string
	if t.Width > 0 || t.Height > 0 {
		crop := t.Crop
		if crop == "" {
			crop = "limit"
		}
		parts = append(parts, "c_"+crop)
		if t.Width > 0 {
			parts = append(parts, fmt.Sprintf("w_%d", t.Width))
		}
		if t.Height > 0 {
			parts = append(parts, fmt.Sprintf("h_%d", t.Height))
		}
	}

	quality := t.Quality
	if quality == "" {
		quality = "auto"
	}
	format := t.Format
	if format == "" {
		format = "auto"
	}
	parts = append(parts, "q_"+quality, "f_"+format)
	return strings.Join(parts, ",")
}
