package optimizer

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaflow/internal/port"
)

// pngFixture renders a solid-color PNG of the given size.
func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOptimize_ReencodesToJPEG(t *testing.T) {
	o := New()
	src := pngFixture(t, 320, 200)

	out, err := o.Optimize(context.Background(), port.OptimizeInput{
		Data:        src,
		ContentType: "image/png",
		Quality:     80,
	})
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", out.ContentType)
	assert.Equal(t, 320, out.Width)
	assert.Equal(t, 200, out.Height)
	assert.Equal(t, int64(len(src)), out.OriginalSize)
	assert.Equal(t, int64(len(out.Data)), out.OptimizedSize)

	decoded, format, err := image.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 320, decoded.Bounds().Dx())
}

func TestOptimize_BoundsDimensions(t *testing.T) {
	o := New()
	out, err := o.Optimize(context.Background(), port.OptimizeInput{
		Data:        pngFixture(t, 1000, 500),
		ContentType: "image/png",
		MaxWidth:    200,
	})
	require.NoError(t, err)

	assert.Equal(t, 200, out.Width)
	assert.Equal(t, 100, out.Height)
}

func TestOptimize_NeverUpscales(t *testing.T) {
	o := New()
	out, err := o.Optimize(context.Background(), port.OptimizeInput{
		Data:        pngFixture(t, 50, 40),
		ContentType: "image/png",
		MaxWidth:    1920,
		MaxHeight:   1080,
	})
	require.NoError(t, err)

	assert.Equal(t, 50, out.Width)
	assert.Equal(t, 40, out.Height)
}

func TestOptimize_GarbageInput(t *testing.T) {
	o := New()
	_, err := o.Optimize(context.Background(), port.OptimizeInput{
		Data:        []byte("not an image"),
		ContentType: "image/png",
	})
	assert.Error(t, err)
}

func TestThumbnail_FitsWithinSpec(t *testing.T) {
	o := New()
	out, err := o.Thumbnail(context.Background(), pngFixture(t, 1920, 1080), "image/png",
		port.ThumbnailSpec{Name: "small", Width: 640, Height: 360}, 80)
	require.NoError(t, err)

	assert.Equal(t, 640, out.Width)
	assert.Equal(t, 360, out.Height)
	assert.Equal(t, "image/jpeg", out.ContentType)
}

func TestThumbnail_InvalidSpec(t *testing.T) {
	o := New()
	_, err := o.Thumbnail(context.Background(), pngFixture(t, 10, 10), "image/png",
		port.ThumbnailSpec{Name: "broken", Width: 0, Height: 100}, 80)
	assert.Error(t, err)
}

func TestFit(t *testing.T) {
	cases := []struct {
		srcW, srcH, maxW, maxH, wantW, wantH int
	}{
		{100, 100, 0, 0, 100, 100},
		{1000, 500, 200, 0, 200, 100},
		{500, 1000, 0, 200, 100, 200},
		{1920, 1080, 640, 360, 640, 360},
		{10, 10, 640, 360, 10, 10},
	}
	for _, tc := range cases {
		w, h := fit(tc.srcW, tc.srcH, tc.maxW, tc.maxH)
		assert.Equal(t, tc.wantW, w)
		assert.Equal(t, tc.wantH, h)
	}
}
