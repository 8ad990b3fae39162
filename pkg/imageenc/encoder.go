// Package imageenc writes raw pixel buffers as standard raster images and
// probes existing image files.
package imageenc

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// Encoder writes a tightly packed pixel buffer as an image file.
type Encoder interface {
	// Encode writes pix (width*height*channels bytes, row-major) to w.
	Encode(w io.Writer, pix []byte, width, height, channels int) error
	// Ext returns the file extension, including the dot.
	Ext() string
}

// ForFormat returns the encoder registered for format ("png" or "webp").
func ForFormat(format string) (Encoder, error) {
	switch strings.ToLower(format) {
	case "", "png":
		return PNG{}, nil
	case "webp":
		return WebP{}, nil
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
}

// PNG encodes lossless PNG files.
type PNG struct{}

// Encode implements Encoder.
func (PNG) Encode(w io.Writer, pix []byte, width, height, channels int) error {
	img, err := toImage(pix, width, height, channels)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

// Ext implements Encoder.
func (PNG) Ext() string { return ".png" }

// WebP encodes lossless WebP files.
type WebP struct{}

// Encode implements Encoder.
func (WebP) Encode(w io.Writer, pix []byte, width, height, channels int) error {
	img, err := toImage(pix, width, height, channels)
	if err != nil {
		return err
	}
	return nativewebp.Encode(w, img, nil)
}

// Ext implements Encoder.
func (WebP) Ext() string { return ".webp" }

// toImage expands a 1, 3 or 4 channel buffer into an opaque-by-default NRGBA image.
func toImage(pix []byte, width, height, channels int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if channels != 1 && channels != 3 && channels != 4 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	if len(pix) < width*height*channels {
		return nil, fmt.Errorf("pixel buffer too short: %d bytes for %dx%dx%d", len(pix), width, height, channels)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		src := pix[i*channels:]
		dst := img.Pix[i*4 : i*4+4]
		switch channels {
		case 1:
			dst[0], dst[1], dst[2], dst[3] = src[0], src[0], src[0], 255
		case 3:
			dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], 255
		case 4:
			copy(dst, src[:4])
		}
	}
	return img, nil
}
