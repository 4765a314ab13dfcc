package config

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. LOADOUTLAB_PORT
const EnvPrefix = "LOADOUTLAB"

// Config is the server configuration
type Config struct {
	Port                int           `mapstructure:"port"`
	DB                  string        `mapstructure:"db"`
	LogLevel            string        `mapstructure:"log_level"`
	LogFormat           string        `mapstructure:"log_format"`
	JWTSecret           string        `mapstructure:"jwt_secret"`
	SessionTTL          time.Duration `mapstructure:"session_ttl"`
	ForgeSessionTTL     time.Duration `mapstructure:"forge_session_ttl"`
	CatalogFile         string        `mapstructure:"catalog_file"`
	EnforceDependencies bool          `mapstructure:"enforce_dependencies"`
	StrictPlatform      bool          `mapstructure:"strict_platform"`
	BaseURL             string        `mapstructure:"base_url"`
	SecureCookies       bool          `mapstructure:"secure_cookies"`
	NoKeyboard          bool          `mapstructure:"no_keyboard"`
	OpenBrowser         bool          `mapstructure:"open_browser"`
}

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("db", "loadoutlab.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("forge_session_ttl", 12*time.Hour)
	v.SetDefault("catalog_file", "")
	v.SetDefault("enforce_dependencies", false)
	v.SetDefault("strict_platform", false)
	v.SetDefault("base_url", "")
	v.SetDefault("secure_cookies", false)
	v.SetDefault("no_keyboard", false)
	v.SetDefault("open_browser", false)
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing priority. Flags bound to v take precedence over all.
// An empty configFile searches for loadoutlab.yaml in the working directory.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("loadoutlab")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &Error{Field: "port", Message: fmt.Sprintf("%d is out of range", c.Port)}
	}
	if c.DB == "" {
		return &Error{Field: "db", Message: "database path is required"}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &Error{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return &Error{Field: "log_format", Message: fmt.Sprintf("unknown format %q", c.LogFormat)}
	}
	if c.SessionTTL <= 0 {
		return &Error{Field: "session_ttl", Message: "must be positive"}
	}
	if c.ForgeSessionTTL <= 0 {
		return &Error{Field: "forge_session_ttl", Message: "must be positive"}
	}
	return nil
}

// Addr is the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// PublicURL is base_url, or the local server address when unset
func (c *Config) PublicURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Port)
}

// SlogLevel converts log_level for the logger
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Error reports an invalid configuration value
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
