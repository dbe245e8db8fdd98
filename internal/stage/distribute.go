package stage

import (
	"context"
	"fmt"
	"strings"

	"mediaflow/internal/pipeline"
	"mediaflow/internal/port"
)

// DistributeOp invalidates the CDN cache for every deployed key so the edge
// serves the freshly uploaded renditions. With Wait set it blocks until the
// purge reports completion.
type DistributeOp struct {
	CDN  port.CDN
	Wait bool
}

func (o *DistributeOp) Execute(ctx context.Context, art *pipeline.Artifact) (*pipeline.Effect, error) {
	paths := purgePaths(art)
	if len(paths) == 0 {
		return nil, pipeline.Permanent(fmt.Errorf("distribute: no deployed keys on artifact %s", art.ID))
	}

	ticket, err := o.CDN.Purge(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("distribute: %w", err)
	}
	art.Meta[MetaPurgeID] = ticket.PurgeID

	if o.Wait {
		if err := o.CDN.WaitForPurge(ctx, ticket.PurgeID); err != nil {
			return nil, fmt.Errorf("distribute: %w", err)
		}
	}

	return &pipeline.Effect{Kind: pipeline.EffectCachePurged, Refs: paths}, nil
}

// Compensate re-purges the same paths so the edge stops serving renditions
// that the upload rollback is about to remove.
func (o *DistributeOp) Compensate(ctx context.Context, eff pipeline.Effect) error {
	if _, err := o.CDN.Purge(ctx, eff.Refs); err != nil {
		return fmt.Errorf("distribute compensate: %w", err)
	}
	return nil
}

func purgePaths(art *pipeline.Artifact) []string {
	keys := art.Meta[MetaDeployedKeys]
	if keys == "" {
		return nil
	}
	var paths []string
	for _, key := range strings.Split(keys, ",") {
		paths = append(paths, "/"+key)
	}
	return paths
}
