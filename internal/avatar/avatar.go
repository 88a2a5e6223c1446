// Package avatar validates uploaded profile images and normalizes them to a
// fixed-size PNG.
package avatar

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"regexp"

	"github.com/disintegration/imaging"
)

// Normalized avatar dimensions and upload limits.
const (
	Size           = 250
	MaxUploadBytes = 1_000_000
	MaxPixels      = 25_000_000
)

// ErrInvalidUpload is returned for files with the wrong extension, files over
// MaxUploadBytes or MaxPixels, and content that does not decode as an image.
var ErrInvalidUpload = errors.New("invalid avatar upload")

var allowedName = regexp.MustCompile(`(?i)\.(png|jpg|jpeg)$`)

// Processor turns uploads into stored avatar images.
type Processor struct {
	maxBytes  int64
	maxPixels int64
}

// NewProcessor creates a Processor with the default limits.
func NewProcessor() *Processor {
	return &Processor{maxBytes: MaxUploadBytes, maxPixels: MaxPixels}
}

// CheckName reports whether filename has an accepted image extension.
func CheckName(filename string) error {
	if !allowedName.MatchString(filename) {
		return fmt.Errorf("%w: please upload an image file (png, jpg, jpeg)", ErrInvalidUpload)
	}
	return nil
}

// Process validates the upload and returns it as a Size x Size PNG, cropped
// around the center.
func (p *Processor) Process(filename string, r io.Reader) ([]byte, error) {
	if err := CheckName(filename); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, p.maxBytes)
	}

	// Header check only; the pixel buffer is allocated by Decode below.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > p.maxPixels {
		return nil, fmt.Errorf("%w: image dimensions %dx%d exceed %d pixels",
			ErrInvalidUpload, cfg.Width, cfg.Height, p.maxPixels)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}

	return encode(imaging.Fill(src, Size, Size, imaging.Center, imaging.Lanczos))
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
