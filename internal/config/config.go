package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Catalog  CatalogConfig  `mapstructure:"catalog" validate:"required"`
	Review   ReviewConfig   `mapstructure:"review" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret              string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes   int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshLifetimeMinutes int    `mapstructure:"refresh_lifetime_minutes" validate:"required,gt=0"`
}

// CatalogConfig locates the item catalog export.
type CatalogConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ReviewConfig tunes the scheduling and batch composition engine.
// Interval settings of zero keep the engine defaults.
type ReviewConfig struct {
	BatchSize             int `mapstructure:"batch_size" validate:"required,gt=0"`
	CooldownSeconds       int `mapstructure:"cooldown_seconds" validate:"required,gt=0"`
	WrongRetryMinutes     int `mapstructure:"wrong_retry_minutes" validate:"gte=0"`
	EasyIntervalMinutes   int `mapstructure:"easy_interval_minutes" validate:"gte=0"`
	MediumIntervalMinutes int `mapstructure:"medium_interval_minutes" validate:"gte=0"`
	HardIntervalMinutes   int `mapstructure:"hard_interval_minutes" validate:"gte=0"`
}
