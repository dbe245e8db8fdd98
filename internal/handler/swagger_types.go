package handler

import (
	"time"

	"github.com/google/uuid"

	"mediaflow/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"ops@example.com"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// CreateUserRequest represents the create user request body.
type CreateUserRequest struct {
	Email    string          `json:"email" binding:"required" example:"jane.doe@example.com"`
	Password string          `json:"password" binding:"required" example:"securepassword123"`
	FullName string          `json:"full_name" example:"Jane Doe"`
	Role     domain.UserRole `json:"role" binding:"required" example:"member"`
}

// UpdateUserRequest represents the update user request body.
type UpdateUserRequest struct {
	Email    *string          `json:"email" example:"jane.smith@example.com"`
	FullName *string          `json:"full_name" example:"Jane Smith"`
	Role     *domain.UserRole `json:"role" example:"admin"`
	IsActive *bool            `json:"is_active" example:"true"`
}

// --- Response Types ---

// TokenResponse represents the authentication token response.
type TokenResponse struct {
	AccessToken  string    `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string    `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt    time.Time `json:"expires_at" example:"2026-01-15T10:30:00Z"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status     string `json:"status" example:"ok"`
	QueuedRuns int    `json:"queued_runs,omitempty" example:"0"`
	Error      string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// AssetWithDownloadURL represents an asset with its presigned download URL.
type AssetWithDownloadURL struct {
	Asset       domain.MediaAsset `json:"asset"`
	DownloadURL string            `json:"download_url" example:"https://s3.amazonaws.com/mediaflow-sources/...?X-Amz-Signature=..."`
}

// StageOutcomeDoc represents one stage's outcome inside a run result.
type StageOutcomeDoc struct {
	Stage   string `json:"stage" example:"upload"`
	State   string `json:"state" example:"succeeded"`
	Retries int    `json:"retries" example:"1"`
	Error   string `json:"error,omitempty" example:"storage: connection reset"`
}

// RunResultDoc represents the executor result persisted with a finished run.
type RunResultDoc struct {
	ArtifactID uuid.UUID         `json:"artifact_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status     string            `json:"status" example:"succeeded"`
	Canceled   bool              `json:"canceled" example:"false"`
	Stages     []StageOutcomeDoc `json:"stages"`
	Error      string            `json:"error,omitempty"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
