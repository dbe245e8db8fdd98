package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	CDN       CDNConfig
	Optimizer OptimizerConfig
	Pipeline  PipelineConfig
	Queue     QueueConfig
	Log       LogConfig
	CORS      CORSConfig
	Email     EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds S3-compatible object storage settings. SourceBucket receives
// raw uploads; DeployBucket is the CDN origin the pipeline publishes to.
type S3Config struct {
	Region        string `mapstructure:"region"`
	SourceBucket  string `mapstructure:"source_bucket"`
	DeployBucket  string `mapstructure:"deploy_bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// CDNConfig holds CDN vendor API settings.
type CDNConfig struct {
	APIEndpoint   string `mapstructure:"api_endpoint"`
	ServiceID     string `mapstructure:"service_id"`
	Domain        string `mapstructure:"domain"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
	PurgeWaitSecs int    `mapstructure:"purge_wait_secs"`
	PurgePollSecs int    `mapstructure:"purge_poll_secs"`
	WaitForPurge  bool   `mapstructure:"wait_for_purge"`
}

// OptimizerConfig holds image optimization settings.
type OptimizerConfig struct {
	Quality          int    `mapstructure:"quality"`
	ThumbnailQuality int    `mapstructure:"thumbnail_quality"`
	MaxWidth         int    `mapstructure:"max_width"`
	MaxHeight        int    `mapstructure:"max_height"`
	ScratchDir       string `mapstructure:"scratch_dir"`
	Thumbnails       bool   `mapstructure:"thumbnails"`
}

// PipelineConfig holds retry and timeout settings for deployment runs.
type PipelineConfig struct {
	MaxAttempts             int `mapstructure:"max_attempts"`
	BackoffBaseMS           int `mapstructure:"backoff_base_ms"`
	BackoffCapMS            int `mapstructure:"backoff_cap_ms"`
	StageTimeoutSecs        int `mapstructure:"stage_timeout_secs"`
	CompensationTimeoutSecs int `mapstructure:"compensation_timeout_secs"`
}

// QueueConfig holds deploy queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
	RunTimeoutSecs   int `mapstructure:"run_timeout_secs"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds notification email settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	AlertsTo    string `mapstructure:"alerts_to"`
}

// Load reads configuration from environment variables with the MEDIAFLOW_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDIAFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "mediaflow")
	v.SetDefault("db.password", "mediaflow_secret")
	v.SetDefault("db.name", "mediaflow_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "mediaflow")

	// S3 defaults
	v.SetDefault("s3.region", "kr-standard")
	v.SetDefault("s3.source_bucket", "mediaflow-sources")
	v.SetDefault("s3.deploy_bucket", "mediaflow-deploy")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// CDN defaults
	v.SetDefault("cdn.api_endpoint", "")
	v.SetDefault("cdn.service_id", "")
	v.SetDefault("cdn.domain", "")
	v.SetDefault("cdn.timeout_secs", 10)
	v.SetDefault("cdn.purge_wait_secs", 300)
	v.SetDefault("cdn.purge_poll_secs", 5)
	v.SetDefault("cdn.wait_for_purge", false)

	// Optimizer defaults
	v.SetDefault("optimizer.quality", 85)
	v.SetDefault("optimizer.thumbnail_quality", 80)
	v.SetDefault("optimizer.max_width", 0)
	v.SetDefault("optimizer.max_height", 0)
	v.SetDefault("optimizer.scratch_dir", os.TempDir())
	v.SetDefault("optimizer.thumbnails", true)

	// Pipeline defaults: 3 attempts, 500ms base doubling, 10s cap.
	v.SetDefault("pipeline.max_attempts", 3)
	v.SetDefault("pipeline.backoff_base_ms", 500)
	v.SetDefault("pipeline.backoff_cap_ms", 10000)
	v.SetDefault("pipeline.stage_timeout_secs", 60)
	v.SetDefault("pipeline.compensation_timeout_secs", 30)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.run_timeout_secs", 600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-northeast-2")
	v.SetDefault("email.from_address", "noreply@mediaflow.dev")
	v.SetDefault("email.from_name", "Mediaflow")
	v.SetDefault("email.alerts_to", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                        "MEDIAFLOW_SERVER_PORT",
		"server.read_timeout":                "MEDIAFLOW_SERVER_READ_TIMEOUT",
		"server.write_timeout":               "MEDIAFLOW_SERVER_WRITE_TIMEOUT",
		"server.environment":                 "MEDIAFLOW_SERVER_ENVIRONMENT",
		"db.host":                            "MEDIAFLOW_DB_HOST",
		"db.port":                            "MEDIAFLOW_DB_PORT",
		"db.user":                            "MEDIAFLOW_DB_USER",
		"db.password":                        "MEDIAFLOW_DB_PASSWORD",
		"db.name":                            "MEDIAFLOW_DB_NAME",
		"db.sslmode":                         "MEDIAFLOW_DB_SSLMODE",
		"db.max_open":                        "MEDIAFLOW_DB_MAX_OPEN",
		"db.max_idle":                        "MEDIAFLOW_DB_MAX_IDLE",
		"jwt.secret":                         "MEDIAFLOW_JWT_SECRET",
		"jwt.access_expiry":                  "MEDIAFLOW_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":                 "MEDIAFLOW_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                         "MEDIAFLOW_JWT_ISSUER",
		"s3.region":                          "MEDIAFLOW_S3_REGION",
		"s3.source_bucket":                   "MEDIAFLOW_S3_SOURCE_BUCKET",
		"s3.deploy_bucket":                   "MEDIAFLOW_S3_DEPLOY_BUCKET",
		"s3.endpoint":                        "MEDIAFLOW_S3_ENDPOINT",
		"s3.access_key":                      "MEDIAFLOW_S3_ACCESS_KEY",
		"s3.secret_key":                      "MEDIAFLOW_S3_SECRET_KEY",
		"s3.max_file_size_mb":                "MEDIAFLOW_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":                  "MEDIAFLOW_S3_PRESIGN_EXPIRY",
		"cdn.api_endpoint":                   "MEDIAFLOW_CDN_API_ENDPOINT",
		"cdn.service_id":                     "MEDIAFLOW_CDN_SERVICE_ID",
		"cdn.domain":                         "MEDIAFLOW_CDN_DOMAIN",
		"cdn.access_key":                     "MEDIAFLOW_CDN_ACCESS_KEY",
		"cdn.secret_key":                     "MEDIAFLOW_CDN_SECRET_KEY",
		"cdn.timeout_secs":                   "MEDIAFLOW_CDN_TIMEOUT_SECS",
		"cdn.purge_wait_secs":                "MEDIAFLOW_CDN_PURGE_WAIT_SECS",
		"cdn.purge_poll_secs":                "MEDIAFLOW_CDN_PURGE_POLL_SECS",
		"cdn.wait_for_purge":                 "MEDIAFLOW_CDN_WAIT_FOR_PURGE",
		"optimizer.quality":                  "MEDIAFLOW_OPTIMIZER_QUALITY",
		"optimizer.thumbnail_quality":        "MEDIAFLOW_OPTIMIZER_THUMBNAIL_QUALITY",
		"optimizer.max_width":                "MEDIAFLOW_OPTIMIZER_MAX_WIDTH",
		"optimizer.max_height":               "MEDIAFLOW_OPTIMIZER_MAX_HEIGHT",
		"optimizer.scratch_dir":              "MEDIAFLOW_OPTIMIZER_SCRATCH_DIR",
		"optimizer.thumbnails":               "MEDIAFLOW_OPTIMIZER_THUMBNAILS",
		"pipeline.max_attempts":              "MEDIAFLOW_PIPELINE_MAX_ATTEMPTS",
		"pipeline.backoff_base_ms":           "MEDIAFLOW_PIPELINE_BACKOFF_BASE_MS",
		"pipeline.backoff_cap_ms":            "MEDIAFLOW_PIPELINE_BACKOFF_CAP_MS",
		"pipeline.stage_timeout_secs":        "MEDIAFLOW_PIPELINE_STAGE_TIMEOUT_SECS",
		"pipeline.compensation_timeout_secs": "MEDIAFLOW_PIPELINE_COMPENSATION_TIMEOUT_SECS",
		"queue.poll_interval_secs":           "MEDIAFLOW_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":                  "MEDIAFLOW_QUEUE_CONCURRENCY",
		"queue.run_timeout_secs":             "MEDIAFLOW_QUEUE_RUN_TIMEOUT_SECS",
		"log.level":                          "MEDIAFLOW_LOG_LEVEL",
		"log.format":                         "MEDIAFLOW_LOG_FORMAT",
		"cors.allowed_origins":               "MEDIAFLOW_CORS_ALLOWED_ORIGINS",
		"email.provider":                     "MEDIAFLOW_EMAIL_PROVIDER",
		"email.region":                       "MEDIAFLOW_EMAIL_REGION",
		"email.from_address":                 "MEDIAFLOW_EMAIL_FROM_ADDRESS",
		"email.from_name":                    "MEDIAFLOW_EMAIL_FROM_NAME",
		"email.alerts_to":                    "MEDIAFLOW_EMAIL_ALERTS_TO",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if MEDIAFLOW_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MEDIAFLOW_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		SourceBucket:  v.GetString("s3.source_bucket"),
		DeployBucket:  v.GetString("s3.deploy_bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.CDN = CDNConfig{
		APIEndpoint:   v.GetString("cdn.api_endpoint"),
		ServiceID:     v.GetString("cdn.service_id"),
		Domain:        v.GetString("cdn.domain"),
		AccessKey:     v.GetString("cdn.access_key"),
		SecretKey:     v.GetString("cdn.secret_key"),
		TimeoutSecs:   v.GetInt("cdn.timeout_secs"),
		PurgeWaitSecs: v.GetInt("cdn.purge_wait_secs"),
		PurgePollSecs: v.GetInt("cdn.purge_poll_secs"),
		WaitForPurge:  v.GetBool("cdn.wait_for_purge"),
	}
	cfg.Optimizer = OptimizerConfig{
		Quality:          v.GetInt("optimizer.quality"),
		ThumbnailQuality: v.GetInt("optimizer.thumbnail_quality"),
		MaxWidth:         v.GetInt("optimizer.max_width"),
		MaxHeight:        v.GetInt("optimizer.max_height"),
		ScratchDir:       v.GetString("optimizer.scratch_dir"),
		Thumbnails:       v.GetBool("optimizer.thumbnails"),
	}
	cfg.Pipeline = PipelineConfig{
		MaxAttempts:             v.GetInt("pipeline.max_attempts"),
		BackoffBaseMS:           v.GetInt("pipeline.backoff_base_ms"),
		BackoffCapMS:            v.GetInt("pipeline.backoff_cap_ms"),
		StageTimeoutSecs:        v.GetInt("pipeline.stage_timeout_secs"),
		CompensationTimeoutSecs: v.GetInt("pipeline.compensation_timeout_secs"),
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		Concurrency:      v.GetInt("queue.concurrency"),
		RunTimeoutSecs:   v.GetInt("queue.run_timeout_secs"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		AlertsTo:    v.GetString("email.alerts_to"),
	}

	return cfg, nil
}
