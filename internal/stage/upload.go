package stage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediaflow/internal/domain"
	"mediaflow/internal/pipeline"
	"mediaflow/internal/port"
)

// Budget for cleaning up a partial upload set before a retry.
const cleanupTimeout = 15 * time.Second

// UploadOp pushes the artifact's renditions to the deploy bucket. When the
// optimize stage staged files, those are uploaded under optimized/ and
// thumbnails/ prefixes; otherwise the raw artifact bytes go up under the
// artifact's own key.
type UploadOp struct {
	Storage port.ObjectStorage
	Bucket  string
}

type rendition struct {
	key         string
	data        []byte
	contentType string
}

func (o *UploadOp) Execute(ctx context.Context, art *pipeline.Artifact) (*pipeline.Effect, error) {
	renditions, err := o.renditions(art)
	if err != nil {
		return nil, err
	}

	var uploaded []string
	var location string
	for i, r := range renditions {
		out, err := o.Storage.Upload(ctx, port.UploadInput{
			Bucket:      o.Bucket,
			Key:         r.key,
			Body:        bytes.NewReader(r.data),
			ContentType: r.contentType,
			Size:        int64(len(r.data)),
			Metadata:    map[string]string{"artifact-id": art.ID.String()},
		})
		if err != nil {
			// Leave no partial set behind before the retry.
			o.deleteKeys(uploaded)
			return nil, fmt.Errorf("upload: %s: %w", r.key, err)
		}
		uploaded = append(uploaded, r.key)
		if i == 0 {
			location = out.Location
		}
	}

	art.Meta[MetaPrimaryKey] = uploaded[0]
	art.Meta[MetaDeployedKeys] = strings.Join(uploaded, ",")
	art.Meta[MetaStorageURL] = location

	return &pipeline.Effect{Kind: pipeline.EffectObjectUploaded, Refs: uploaded}, nil
}

// Compensate deletes the uploaded objects in reverse order. An object that is
// already gone counts as compensated.
func (o *UploadOp) Compensate(ctx context.Context, eff pipeline.Effect) error {
	var firstErr error
	for i := len(eff.Refs) - 1; i >= 0; i-- {
		err := o.Storage.Delete(ctx, o.Bucket, eff.Refs[i])
		if err != nil && !errors.Is(err, domain.ErrNotFound) && firstErr == nil {
			firstErr = fmt.Errorf("upload compensate: %s: %w", eff.Refs[i], err)
		}
	}
	return firstErr
}

// renditions resolves what to upload: staged files from the optimize stage,
// or the raw artifact bytes when nothing was staged.
func (o *UploadOp) renditions(art *pipeline.Artifact) ([]rendition, error) {
	dir := art.Meta[MetaStagedDir]
	if dir == "" {
		return []rendition{{key: art.Key, data: art.Data, contentType: art.ContentType}}, nil
	}

	base := strings.TrimSuffix(filepath.Base(art.Key), filepath.Ext(art.Key))

	primaryData, err := os.ReadFile(filepath.Join(dir, primaryRendition))
	if err != nil {
		return nil, fmt.Errorf("upload: reading staged primary: %w", err)
	}
	out := []rendition{{
		key:         "optimized/" + base + ".jpg",
		data:        primaryData,
		contentType: "image/jpeg",
	}}

	thumbs, err := filepath.Glob(filepath.Join(dir, "thumb_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("upload: listing staged thumbnails: %w", err)
	}
	for _, path := range thumbs {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("upload: reading staged thumbnail: %w", err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "thumb_"), ".jpg")
		out = append(out, rendition{
			key:         "thumbnails/" + base + "_" + name + ".jpg",
			data:        data,
			contentType: "image/jpeg",
		})
	}
	return out, nil
}

func (o *UploadOp) deleteKeys(keys []string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	for _, key := range keys {
		_ = o.Storage.Delete(ctx, o.Bucket, key)
	}
}
