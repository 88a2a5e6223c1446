package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Mail     MailConfig     `mapstructure:"mail" validate:"required"`
	Avatar   AvatarConfig   `mapstructure:"avatar" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`

	// AuthRateLimitPerMinute caps sign-up and login attempts per client IP.
	// Zero disables the limiter.
	AuthRateLimitPerMinute int `mapstructure:"auth_rate_limit_per_minute" validate:"gte=0"`

	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`

	// AutoMigrate applies pending migrations before the server starts.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret" validate:"required,min=32"`
	BcryptCost int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// MailConfig controls transactional email delivery.
// An empty SendGridAPIKey switches delivery to the log-only mailer.
type MailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromAddress    string `mapstructure:"from_address" validate:"required,email"`
	FromName       string `mapstructure:"from_name"`
	QueueSize      int    `mapstructure:"queue_size" validate:"gt=0"`
	WorkerCount    int    `mapstructure:"worker_count" validate:"gt=0"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gt=0"`
}

// Avatar storage backends.
const (
	AvatarBackendDatabase = "database"
	AvatarBackendS3       = "s3"
)

// AvatarConfig selects where processed avatar images are kept.
type AvatarConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=database s3"`

	S3Bucket          string `mapstructure:"s3_bucket" validate:"required_if=Backend s3"`
	S3Region          string `mapstructure:"s3_region" validate:"required_if=Backend s3"`
	S3Endpoint        string `mapstructure:"s3_endpoint" validate:"omitempty,url"`
	S3AccessKeyID     string `mapstructure:"s3_access_key_id"`
	S3SecretAccessKey string `mapstructure:"s3_secret_access_key"`
	S3UsePathStyle    bool   `mapstructure:"s3_use_path_style"`
}
