package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Advisor   AdvisorConfig   `mapstructure:"advisor"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int    `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" validate:"gte=0"` // seconds
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string `mapstructure:"url"               validate:"required"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"    validate:"gte=0"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" validate:"gte=0"` // minutes
}

// SchedulerConfig contains tunables for the review scheduling algorithm.
// These map directly onto srs.Params; keeping them here lets deployments
// adjust scheduling behavior without a rebuild.
type SchedulerConfig struct {
	InitialEaseFactor float64 `mapstructure:"initial_ease_factor" validate:"omitempty,gt=1"`
	MinEaseFactor     float64 `mapstructure:"min_ease_factor"     validate:"omitempty,gt=1"`
	DueCardsLimit     int     `mapstructure:"due_cards_limit"     validate:"omitempty,gt=0"`
}

// AdvisorConfig contains settings for the optional external reasoning
// service that supplies adaptive scheduling multipliers. The scheduler is
// fully functional without it; an empty API key disables the integration.
type AdvisorConfig struct {
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`
	ModelName        string `mapstructure:"model_name"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"   validate:"omitempty,gt=0,lte=30"`
	FailureThreshold int    `mapstructure:"failure_threshold" validate:"omitempty,gt=0"`
	CooldownSeconds  int    `mapstructure:"cooldown_seconds"  validate:"omitempty,gt=0"`
}
