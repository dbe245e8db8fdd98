// Package stage provides the concrete pipeline operations for media
// deployment runs: optimize, upload, distribute and verify. Each operation
// wraps a port (object storage, CDN, image optimizer) and translates its
// outcome into the executor's effect and failure-class contract.
package stage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"mediaflow/internal/domain"
	"mediaflow/internal/pipeline"
	"mediaflow/internal/port"
)

// Artifact meta keys written by the stages and read downstream.
const (
	MetaStagedDir        = "staged_dir"
	MetaPrimaryKey       = "primary_key"
	MetaDeployedKeys     = "deployed_keys"
	MetaStorageURL       = "storage_url"
	MetaPurgeID          = "purge_id"
	MetaCDNURL           = "cdn_url"
	MetaCacheStatus      = "cdn_cache_status"
	MetaReductionPercent = "reduction_percent"
)

const primaryRendition = "primary.jpg"

// OptimizeOp re-encodes image artifacts (primary rendition plus thumbnails)
// into a per-artifact scratch directory. Non-image artifacts pass through
// untouched and commit no effect.
type OptimizeOp struct {
	Optimizer        port.ImageOptimizer
	ScratchDir       string
	Quality          int
	ThumbnailQuality int
	MaxWidth         int
	MaxHeight        int
	Thumbnails       []port.ThumbnailSpec
}

// DefaultThumbnails mirrors the documented rendition set.
func DefaultThumbnails() []port.ThumbnailSpec {
	return []port.ThumbnailSpec{
		{Name: "large", Width: 1920, Height: 1080},
		{Name: "medium", Width: 1280, Height: 720},
		{Name: "small", Width: 640, Height: 360},
	}
}

func (o *OptimizeOp) Execute(ctx context.Context, art *pipeline.Artifact) (*pipeline.Effect, error) {
	if !domain.OptimizableContentTypes[art.ContentType] {
		return nil, nil
	}

	dir := filepath.Join(o.ScratchDir, art.ID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("optimize: creating scratch dir: %w", err)
	}

	out, err := o.Optimizer.Optimize(ctx, port.OptimizeInput{
		Data:        art.Data,
		ContentType: art.ContentType,
		Quality:     o.Quality,
		MaxWidth:    o.MaxWidth,
		MaxHeight:   o.MaxHeight,
	})
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	var staged []string
	primary := filepath.Join(dir, primaryRendition)
	if err := os.WriteFile(primary, out.Data, 0o644); err != nil {
		return nil, fmt.Errorf("optimize: staging primary rendition: %w", err)
	}
	staged = append(staged, primary)

	for _, spec := range o.Thumbnails {
		thumb, err := o.Optimizer.Thumbnail(ctx, art.Data, art.ContentType, spec, o.ThumbnailQuality)
		if err != nil {
			removeAll(staged)
			return nil, fmt.Errorf("optimize: thumbnail %s: %w", spec.Name, err)
		}
		path := filepath.Join(dir, "thumb_"+spec.Name+".jpg")
		if err := os.WriteFile(path, thumb.Data, 0o644); err != nil {
			removeAll(staged)
			return nil, fmt.Errorf("optimize: staging thumbnail %s: %w", spec.Name, err)
		}
		staged = append(staged, path)
	}

	art.Meta[MetaStagedDir] = dir
	art.Meta[MetaReductionPercent] = strconv.FormatFloat(out.ReductionPercent, 'f', 1, 64)

	return &pipeline.Effect{Kind: pipeline.EffectRenditionStaged, Refs: staged}, nil
}

// Compensate removes the staged renditions. Files already gone count as
// compensated, so a replay is harmless.
func (o *OptimizeOp) Compensate(ctx context.Context, eff pipeline.Effect) error {
	var firstErr error
	for _, path := range eff.Refs {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			if firstErr == nil {
				firstErr = fmt.Errorf("optimize compensate: %w", err)
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}
	if len(eff.Refs) > 0 {
		// Drop the now-empty scratch dir; best effort.
		_ = os.Remove(filepath.Dir(eff.Refs[0]))
	}
	return nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
