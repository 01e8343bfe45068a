package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string        `mapstructure:"app_env"`
	LogLevel              string        `mapstructure:"log_level"`
	HTTPPort              int           `mapstructure:"http_port"`
	GRPCPort              int           `mapstructure:"grpc_port"`
	GRPCReflectionEnabled bool          `mapstructure:"grpc_reflection_enabled"`
	DBDriver              string        `mapstructure:"db_driver"`
	DBDSN                 string        `mapstructure:"db_dsn"`
	DBMaxOpenConns        int           `mapstructure:"db_max_open_conns"`
	RedisAddr             string        `mapstructure:"redis_addr"`
	RedisPassword         string        `mapstructure:"redis_password"`
	RedisDB               int           `mapstructure:"redis_db"`
	CacheTTL              time.Duration `mapstructure:"cache_ttl"`
	QueryTimeout          time.Duration `mapstructure:"query_timeout"`
	ShutdownTimeout       time.Duration `mapstructure:"shutdown_timeout"`
	CORSAllowedOrigins    []string      `mapstructure:"cors_allowed_origins"`
}

var defaults = map[string]any{
	"app_env":                 "development",
	"log_level":               "",
	"http_port":               8080,
	"grpc_port":               50051,
	"grpc_reflection_enabled": false,
	"db_driver":               "sqlite3",
	"db_dsn":                  "./data/eqrev.db",
	"db_max_open_conns":       25,
	"redis_addr":              "",
	"redis_password":          "",
	"redis_db":                0,
	"cache_ttl":               10 * time.Minute,
	"query_timeout":           5 * time.Second,
	"shutdown_timeout":        10 * time.Second,
	"cors_allowed_origins":    []string{"*"},
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing order of precedence.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3", "postgres", "mysql":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want sqlite3, postgres or mysql", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("DB_DSN must not be empty")
	}
	for name, port := range map[string]int{"HTTP_PORT": c.HTTPPort, "GRPC_PORT": c.GRPCPort} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s %d", name, port)
		}
	}
	if c.QueryTimeout <= 0 {
		return errors.New("QUERY_TIMEOUT must be positive")
	}
	return nil
}

// CacheEnabled reports whether a redis address was configured.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.AppEnv == "production" {
		zc = zap.NewProductionConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	return zc.Build()
}
