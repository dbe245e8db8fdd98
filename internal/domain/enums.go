package domain

// FileType represents the allowed media types for upload.
type FileType string

const (
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeWebP FileType = "webp"
	FileTypeGIF  FileType = "gif"
	FileTypeSVG  FileType = "svg"
	FileTypeCSS  FileType = "css"
	FileTypeJS   FileType = "js"
	FileTypeHTML FileType = "html"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypeWebP: "image/webp",
	FileTypeGIF:  "image/gif",
	FileTypeSVG:  "image/svg+xml",
	FileTypeCSS:  "text/css",
	FileTypeJS:   "application/javascript",
	FileTypeHTML: "text/html",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"webp": FileTypeWebP,
	"gif":  FileTypeGIF,
	"svg":  FileTypeSVG,
	"css":  FileTypeCSS,
	"js":   FileTypeJS,
	"html": FileTypeHTML,
}

// OptimizableContentTypes are the image types the optimize stage re-encodes;
// everything else passes through the pipeline unmodified.
var OptimizableContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UserRole defines the operator role hierarchy.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// ValidUserRoles is the set of assignable roles.
var ValidUserRoles = map[UserRole]bool{
	RoleAdmin:  true,
	RoleMember: true,
}

// AssetStatus represents the lifecycle of an uploaded source asset.
type AssetStatus string

const (
	AssetStatusPending  AssetStatus = "pending"
	AssetStatusUploaded AssetStatus = "uploaded"
	AssetStatusDeployed AssetStatus = "deployed"
	AssetStatusFailed   AssetStatus = "failed"
	AssetStatusDeleted  AssetStatus = "deleted"
)

// RunStatus represents the lifecycle of a pipeline run. Queued runs are
// claimed by the deploy queue worker; the terminal states mirror the pipeline
// executor's result statuses.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusRunning    RunStatus = "running"
	RunStatusSucceeded  RunStatus = "succeeded"
	RunStatusRolledBack RunStatus = "rolled_back"
)
