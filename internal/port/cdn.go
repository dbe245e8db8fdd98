package port

import (
	"context"
	"time"
)

// PurgeTicket identifies an accepted cache purge request.
type PurgeTicket struct {
	PurgeID    string
	Status     string
	PathsCount int
}

// PurgeState is the polled status of a purge request.
type PurgeState struct {
	PurgeID         string
	Status          string // in_progress, completed, failed
	ProgressPercent int
}

// EdgeResponse captures what a CDN edge returned for a test fetch.
type EdgeResponse struct {
	StatusCode    int
	CacheStatus   string // HIT, MISS, BYPASS, UNKNOWN
	CacheAge      int
	ContentType   string
	ContentLength int64
	ResponseTime  time.Duration
}

// CDN abstracts the CDN vendor API: cache invalidation plus edge verification.
type CDN interface {
	Purge(ctx context.Context, paths []string) (*PurgeTicket, error)
	PurgeStatus(ctx context.Context, purgeID string) (*PurgeState, error)
	WaitForPurge(ctx context.Context, purgeID string) error
	FetchEdge(ctx context.Context, url string) (*EdgeResponse, error)
}
