package lisd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete daemon configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Offload OffloadConfig `mapstructure:"offload"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	// Address is the listen address (default: ":7733").
	Address string `mapstructure:"address"`
	// ShutdownTimeoutSeconds bounds graceful shutdown (default: 10).
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
	// ReadHeaderTimeoutSeconds bounds the initial request read (default: 5).
	// Connection read/write timeouts are deliberately absent: /offload
	// holds websocket connections open indefinitely.
	ReadHeaderTimeoutSeconds int `mapstructure:"read_header_timeout_seconds"`
}

// OffloadConfig controls the /offload websocket endpoint.
type OffloadConfig struct {
	// MaxPositions caps the position count accepted per request.
	// Larger requests are answered with an error frame (default: 1048576).
	MaxPositions int `mapstructure:"max_positions"`
	// ReadLimitBytes caps a single websocket frame; oversized frames
	// terminate the connection (default: 33554432, 32 MiB).
	ReadLimitBytes int64 `mapstructure:"read_limit_bytes"`
	// WriteTimeoutSeconds bounds each response write (default: 10).
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds"`
	// PathThreshold overrides the engine's small/large path switch.
	// Zero keeps the engine default.
	PathThreshold int `mapstructure:"path_threshold"`
}

// LoggingConfig controls daemon logging.
type LoggingConfig struct {
	// Level is the slog level: "debug", "info", "warn", "error" (default: "info").
	Level string `mapstructure:"level"`
}

// ShutdownTimeout returns the graceful shutdown bound as a time.Duration.
func (c *ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// ReadHeaderTimeout returns the header read bound as a time.Duration.
func (c *ServerConfig) ReadHeaderTimeout() time.Duration {
	return time.Duration(c.ReadHeaderTimeoutSeconds) * time.Second
}

// WriteTimeout returns the response write bound as a time.Duration.
func (c *OffloadConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// Default returns a Config with the daemon's default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:                  ":7733",
			ShutdownTimeoutSeconds:   10,
			ReadHeaderTimeoutSeconds: 5,
		},
		Offload: OffloadConfig{
			MaxPositions:        1 << 20,
			ReadLimitBytes:      32 << 20,
			WriteTimeoutSeconds: 10,
			PathThreshold:       0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("server.address", defaults.Server.Address)
	v.SetDefault("server.shutdown_timeout_seconds", defaults.Server.ShutdownTimeoutSeconds)
	v.SetDefault("server.read_header_timeout_seconds", defaults.Server.ReadHeaderTimeoutSeconds)

	v.SetDefault("offload.max_positions", defaults.Offload.MaxPositions)
	v.SetDefault("offload.read_limit_bytes", defaults.Offload.ReadLimitBytes)
	v.SetDefault("offload.write_timeout_seconds", defaults.Offload.WriteTimeoutSeconds)
	v.SetDefault("offload.path_threshold", defaults.Offload.PathThreshold)

	v.SetDefault("logging.level", defaults.Logging.Level)
}

// NewViper returns a viper instance wired for the daemon: defaults
// registered, SKEIND_* environment variables bound, and an optional config
// file loaded when path is non-empty.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("SKEIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("lisd: read config %s: %w", path, err)
		}
	}

	return v, nil
}

// Load unmarshals and validates the daemon configuration.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("lisd: unmarshal config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// ValidationError reports one invalid configuration value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted logging.level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config and returns every invalid value found.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.Server.Address == "" {
		errs = append(errs, ValidationError{
			Field:   "server.address",
			Value:   c.Server.Address,
			Message: "must not be empty",
		})
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "server.shutdown_timeout_seconds",
			Value:   c.Server.ShutdownTimeoutSeconds,
			Message: "must be positive",
		})
	}
	if c.Server.ReadHeaderTimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "server.read_header_timeout_seconds",
			Value:   c.Server.ReadHeaderTimeoutSeconds,
			Message: "must be positive",
		})
	}
	if c.Offload.MaxPositions <= 0 {
		errs = append(errs, ValidationError{
			Field:   "offload.max_positions",
			Value:   c.Offload.MaxPositions,
			Message: "must be positive",
		})
	}
	if c.Offload.ReadLimitBytes <= 0 {
		errs = append(errs, ValidationError{
			Field:   "offload.read_limit_bytes",
			Value:   c.Offload.ReadLimitBytes,
			Message: "must be positive",
		})
	}
	if c.Offload.WriteTimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "offload.write_timeout_seconds",
			Value:   c.Offload.WriteTimeoutSeconds,
			Message: "must be positive",
		})
	}
	if c.Offload.PathThreshold < 0 {
		errs = append(errs, ValidationError{
			Field:   "offload.path_threshold",
			Value:   c.Offload.PathThreshold,
			Message: "must not be negative",
		})
	}

	if !validLogLevel(c.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errs
}

func validLogLevel(level string) bool {
	for _, valid := range ValidLogLevels() {
		if level == valid {
			return true
		}
	}
	return false
}

// LogLevel maps logging.level to its slog level. Unknown strings fall back
// to info; Validate rejects them before this is reached.
func (c *LoggingConfig) LogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
