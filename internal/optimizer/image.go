package optimizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"mediaflow/internal/port"
)

const defaultQuality = 85

// Optimizer implements port.ImageOptimizer with pure-Go codecs: JPEG, PNG and
// WebP decode; renditions are encoded as JPEG. Alpha channels are flattened
// onto white since JPEG carries no transparency.
type Optimizer struct{}

// New creates an image optimizer.
func New() *Optimizer {
	return &Optimizer{}
}

func (o *Optimizer) Optimize(ctx context.Context, input port.OptimizeInput) (*port.OptimizeOutput, error) {
	img, _, err := image.Decode(bytes.NewReader(input.Data))
	if err != nil {
		return nil, fmt.Errorf("optimizer: decoding %s: %w", input.ContentType, err)
	}

	w, h := fit(img.Bounds().Dx(), img.Bounds().Dy(), input.MaxWidth, input.MaxHeight)
	img = scale(img, w, h)

	quality := input.Quality
	if quality <= 0 {
		quality = defaultQuality
	}
	encoded, err := encodeJPEG(img, quality)
	if err != nil {
		return nil, err
	}
	return output(encoded, w, h, int64(len(input.Data))), nil
}

func (o *Optimizer) Thumbnail(ctx context.Context, data []byte, contentType string, spec port.ThumbnailSpec, quality int) (*port.OptimizeOutput, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("optimizer: thumbnail %q has invalid dimensions %dx%d", spec.Name, spec.Width, spec.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("optimizer: decoding %s: %w", contentType, err)
	}

	w, h := fit(img.Bounds().Dx(), img.Bounds().Dy(), spec.Width, spec.Height)
	img = scale(img, w, h)

	if quality <= 0 {
		quality = defaultQuality
	}
	encoded, err := encodeJPEG(img, quality)
	if err != nil {
		return nil, err
	}
	return output(encoded, w, h, int64(len(data))), nil
}

// fit shrinks (never grows) srcW x srcH to fit within maxW x maxH, keeping the
// aspect ratio. Zero bounds leave that dimension unconstrained.
func fit(srcW, srcH, maxW, maxH int) (int, int) {
	w, h := srcW, srcH
	if maxW > 0 && w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if maxH > 0 && h > maxH {
		w = w * maxH / h
		h = maxH
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func scale(img image.Image, w, h int) image.Image {
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	// Flatten transparency onto white before the JPEG encode.
	flat := image.NewRGBA(img.Bounds())
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("optimizer: encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func output(encoded []byte, w, h int, originalSize int64) *port.OptimizeOutput {
	optimizedSize := int64(len(encoded))
	reduction := 0.0
	if originalSize > 0 {
		reduction = float64(originalSize-optimizedSize) / float64(originalSize) * 100
	}
	return &port.OptimizeOutput{
		Data:             encoded,
		ContentType:      "image/jpeg",
		Width:            w,
		Height:           h,
		OriginalSize:     originalSize,
		OptimizedSize:    optimizedSize,
		ReductionPercent: reduction,
	}
}
