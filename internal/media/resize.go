// Package media holds the deterministic image transforms applied by the
// asset upload pipeline.
package media

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	// Cover images are fitted inside this bounding box.
	CoverMaxWidth  = 300
	CoverMaxHeight = 300

	coverJPEGQuality = 90
)

// ResizeCover decodes an image, scales it down to fit within the cover
// bounding box (aspect ratio preserved, never upscaled) and re-encodes it
// as JPEG at the fixed quality.
func ResizeCover(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover image: %w", err)
	}

	// Fit only scales down; images already inside the box pass through.
	img = imaging.Fit(img, CoverMaxWidth, CoverMaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(coverJPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode cover image: %w", err)
	}
	return buf.Bytes(), nil
}
