// Package imaging transforms listing photos to satisfy per-platform limits.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // sellers upload GIFs; decode them for JPEG conversion
	"image/jpeg"
	"image/png"

	"github.com/crosslist/backend/internal/domain/channel"
)

var (
	ErrUndecodable = errors.New("imaging: image bytes could not be decoded")
	ErrTooLarge    = errors.New("imaging: image cannot be reduced under the size limit")
)

// qualityFloor is the lowest JPEG quality tried before giving up
const qualityFloor = 40

// qualityStart is the JPEG quality of the first re-encode attempt
const qualityStart = 90

// Processor prepares photo bytes for a platform. Decoding always inspects
// the actual bytes; file extensions and client-reported content types are
// never trusted.
type Processor struct{}

// NewProcessor creates a Processor
func NewProcessor() *Processor {
	return &Processor{}
}

// Prepare decodes the photo and transforms it to satisfy the limits:
// downscales when the longest side exceeds MaxDimensionPx, converts
// disallowed formats to JPEG, and re-encodes at descending quality until
// the encoded size fits under MaxBytes.
func (p *Processor) Prepare(data []byte, limits channel.PlatformImageLimits) (*channel.PreparedPhoto, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	mime := formatMime(format)
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	needsResize := limits.MaxDimensionPx > 0 && maxDim(width, height) > limits.MaxDimensionPx
	needsConvert := len(limits.AllowedFormats) > 0 && !limits.AllowsFormat(mime)
	fitsBytes := limits.MaxBytes <= 0 || len(data) <= limits.MaxBytes

	// Original bytes pass through untouched when nothing has to change
	if !needsResize && !needsConvert && fitsBytes {
		return &channel.PreparedPhoto{
			Data:     data,
			MimeType: mime,
			Width:    width,
			Height:   height,
		}, nil
	}

	if needsResize {
		img = scaleDown(img, limits.MaxDimensionPx)
		bounds = img.Bounds()
		width, height = bounds.Dx(), bounds.Dy()
	}

	// PNG stays PNG when the platform allows it and the size fits;
	// everything else is re-encoded as JPEG
	if format == "png" && limits.AllowsFormat("image/png") {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("imaging: png encode: %w", err)
		}
		if limits.MaxBytes <= 0 || buf.Len() <= limits.MaxBytes {
			return &channel.PreparedPhoto{
				Data:     buf.Bytes(),
				MimeType: "image/png",
				Width:    width,
				Height:   height,
			}, nil
		}
		// Oversized PNG falls through to JPEG re-encoding
	}

	encoded, err := encodeJPEGUnder(img, limits.MaxBytes)
	if err != nil {
		return nil, err
	}

	return &channel.PreparedPhoto{
		Data:     encoded,
		MimeType: "image/jpeg",
		Width:    width,
		Height:   height,
	}, nil
}

// encodeJPEGUnder re-encodes at descending quality until the result fits
// under maxBytes or the quality floor is reached
func encodeJPEGUnder(img image.Image, maxBytes int) ([]byte, error) {
	for quality := qualityStart; quality >= qualityFloor; quality -= 10 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("imaging: jpeg encode: %w", err)
		}
		if maxBytes <= 0 || buf.Len() <= maxBytes {
			return buf.Bytes(), nil
		}
	}
	return nil, ErrTooLarge
}

// scaleDown resizes the image so its longest side equals maxDimension,
// preserving aspect ratio, using bilinear interpolation
func scaleDown(img image.Image, maxDimension int) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	var dstW, dstH int
	if srcW >= srcH {
		dstW = maxDimension
		dstH = srcH * maxDimension / srcW
	} else {
		dstH = maxDimension
		dstW = srcW * maxDimension / srcH
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xRatio := float64(srcW) / float64(dstW)
	yRatio := float64(srcH) / float64(dstH)

	for y := 0; y < dstH; y++ {
		srcY := (float64(y) + 0.5) * yRatio
		y0 := int(srcY - 0.5)
		y1 := y0 + 1
		fy := srcY - 0.5 - float64(y0)
		if y0 < 0 {
			y0, y1, fy = 0, 0, 0
		}
		if y1 >= srcH {
			y1 = srcH - 1
		}

		for x := 0; x < dstW; x++ {
			srcX := (float64(x) + 0.5) * xRatio
			x0 := int(srcX - 0.5)
			x1 := x0 + 1
			fx := srcX - 0.5 - float64(x0)
			if x0 < 0 {
				x0, x1, fx = 0, 0, 0
			}
			if x1 >= srcW {
				x1 = srcW - 1
			}

			r, g, b, a := bilinear(img, bounds, x0, x1, y0, y1, fx, fy)
			offset := dst.PixOffset(x, y)
			dst.Pix[offset+0] = r
			dst.Pix[offset+1] = g
			dst.Pix[offset+2] = b
			dst.Pix[offset+3] = a
		}
	}

	return dst
}

// bilinear blends the four neighboring pixels
func bilinear(img image.Image, bounds image.Rectangle, x0, x1, y0, y1 int, fx, fy float64) (uint8, uint8, uint8, uint8) {
	r00, g00, b00, a00 := img.At(bounds.Min.X+x0, bounds.Min.Y+y0).RGBA()
	r10, g10, b10, a10 := img.At(bounds.Min.X+x1, bounds.Min.Y+y0).RGBA()
	r01, g01, b01, a01 := img.At(bounds.Min.X+x0, bounds.Min.Y+y1).RGBA()
	r11, g11, b11, a11 := img.At(bounds.Min.X+x1, bounds.Min.Y+y1).RGBA()

	blend := func(v00, v10, v01, v11 uint32) uint8 {
		top := float64(v00)*(1-fx) + float64(v10)*fx
		bottom := float64(v01)*(1-fx) + float64(v11)*fx
		return uint8(uint32(top*(1-fy)+bottom*fy) >> 8)
	}

	return blend(r00, r10, r01, r11),
		blend(g00, g10, g01, g11),
		blend(b00, b10, b01, b11),
		blend(a00, a10, a01, a11)
}

// formatMime maps a stdlib decode format name to a mime type
func formatMime(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// maxDim returns the larger of width and height
func maxDim(w, h int) int {
	if w > h {
		return w
	}
	return h
}
