// internal/imagedata/imagedata.go
// Package imagedata reads evaluation images and turns them into inline image references.
//
// Bytes are never re-encoded: a Ref carries the file exactly as it was read, plus the MIME type
// derived from its extension. When probing is enabled, the image header is decoded to record pixel
// dimensions. PNG, JPEG and WebP headers are understood; SVG and anything that fails to decode keep
// zero dimensions.
package imagedata

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG header decoder
	_ "image/png"  // Register PNG header decoder
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	_ "golang.org/x/image/webp" // Register WebP header decoder
)

// Ref is an inline image: the source file name, its MIME type and its raw bytes.
type Ref struct {
	Name   string `json:"name"`
	MIME   string `json:"mime"`
	Data   []byte `json:"-"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// DataURL renders the reference as a base64 data URL.
func (r *Ref) DataURL() string {
	if r == nil {
		return ""
	}
	return "data:" + r.MIME + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}

// Size returns the number of raw bytes held by the reference.
func (r *Ref) Size() int {
	if r == nil {
		return 0
	}
	return len(r.Data)
}

// MIMEType maps a file name to the MIME type used in data URLs.
func MIMEType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// Loader reads image files from a filesystem.
type Loader struct {
	fs    afero.Fs
	probe bool
}

// NewLoader returns a loader over fs. With probe set, image headers are decoded for dimensions.
func NewLoader(fs afero.Fs, probe bool) *Loader {
	return &Loader{fs: fs, probe: probe}
}

// Load reads the file at path into a Ref. Read failures are returned; header decode failures
// are not, the reference simply has no dimensions.
func (l *Loader) Load(path string) (*Ref, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	ref := &Ref{
		Name: filepath.Base(path),
		MIME: MIMEType(path),
		Data: data,
	}
	if l.probe {
		ref.Width, ref.Height = probeDimensions(data)
	}
	return ref, nil
}

func probeDimensions(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
