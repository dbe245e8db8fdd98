package stage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"mediaflow/internal/domain"
	"mediaflow/internal/pipeline"
	"mediaflow/internal/port"
)

// VerifyOp confirms the deployment is actually live: the primary rendition
// must exist in the deploy bucket and, when an edge domain is configured, be
// reachable through the CDN. Verification commits no effect of its own.
type VerifyOp struct {
	Storage port.ObjectStorage
	CDN     port.CDN
	Bucket  string
	Domain  string // public CDN domain, e.g. https://cdn.example.com; empty skips the edge check
}

func (o *VerifyOp) Execute(ctx context.Context, art *pipeline.Artifact) (*pipeline.Effect, error) {
	key := art.Meta[MetaPrimaryKey]
	if key == "" {
		key = art.Key
	}

	info, err := o.Storage.Head(ctx, o.Bucket, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, pipeline.Permanent(fmt.Errorf("verify: object %s missing after upload: %w", key, err))
		}
		return nil, fmt.Errorf("verify: %w", err)
	}
	if info.Size == 0 {
		return nil, pipeline.Permanent(fmt.Errorf("verify: object %s is empty", key))
	}

	if o.Domain != "" {
		edge, err := o.CDN.FetchEdge(ctx, o.Domain+"/"+key)
		if err != nil {
			return nil, fmt.Errorf("verify: %w", err)
		}
		switch {
		case edge.StatusCode == http.StatusOK:
		case edge.StatusCode >= http.StatusInternalServerError:
			return nil, pipeline.Transient(fmt.Errorf("verify: edge returned %d for %s", edge.StatusCode, key))
		default:
			return nil, pipeline.Permanent(fmt.Errorf("verify: edge returned %d for %s", edge.StatusCode, key))
		}
		art.Meta[MetaCDNURL] = o.Domain + "/" + key
		art.Meta[MetaCacheStatus] = edge.CacheStatus + "/" + strconv.Itoa(edge.CacheAge)
	}

	return nil, nil
}

// Compensate is a no-op: verification never changes external state.
func (o *VerifyOp) Compensate(ctx context.Context, eff pipeline.Effect) error {
	return nil
}
