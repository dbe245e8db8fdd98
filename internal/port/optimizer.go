package port

import "context"

// OptimizeInput holds the source image and target encoding settings.
type OptimizeInput struct {
	Data        []byte
	ContentType string
	Quality     int
	MaxWidth    int
	MaxHeight   int
}

// OptimizeOutput is the re-encoded rendition plus size accounting.
type OptimizeOutput struct {
	Data             []byte
	ContentType      string
	Width            int
	Height           int
	OriginalSize     int64
	OptimizedSize    int64
	ReductionPercent float64
}

// ThumbnailSpec names one derived rendition size.
type ThumbnailSpec struct {
	Name   string
	Width  int
	Height int
}

// ImageOptimizer abstracts image re-encoding and thumbnail generation. Codec
// work is delegated entirely to the imaging libraries behind the implementation.
type ImageOptimizer interface {
	Optimize(ctx context.Context, input OptimizeInput) (*OptimizeOutput, error)
	Thumbnail(ctx context.Context, data []byte, contentType string, spec ThumbnailSpec, quality int) (*OptimizeOutput, error)
}
