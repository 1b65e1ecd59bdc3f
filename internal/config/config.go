// Package config loads knotic configuration from an optional config file and
// KNOTIC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/knotic/internal/ingestion"
	"github.com/jonathan/knotic/internal/llm"
	"github.com/spf13/viper"
)

const (
	appName   = "knotic"
	envPrefix = "KNOTIC"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	PDF      PDFConfig      `mapstructure:"pdf"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	AnalyzeParallel int           `mapstructure:"analyze-parallel"`
}

// DatabaseConfig holds the Postgres connection URL
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// LLMConfig selects the delegate provider and its models
type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api-key"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Lite     string        `mapstructure:"lite-model"`
	Standard string        `mapstructure:"standard-model"`
	Advanced string        `mapstructure:"advanced-model"`
}

// PDFConfig selects the text extraction engine
type PDFConfig struct {
	Engine string `mapstructure:"engine"`
}

// StorageConfig enables archiving uploaded PDFs to S3 when Bucket is set
type StorageConfig struct {
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Prefix   string `mapstructure:"prefix"`
	Endpoint string `mapstructure:"endpoint"`
}

// RedisConfig enables the shared rate limiter when Addr is set
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	RateLimit int           `mapstructure:"rate-limit"`
	Window    time.Duration `mapstructure:"rate-window"`
}

// AuthConfig holds token and password hashing settings
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt-secret"`
	JWTExpirationHours int    `mapstructure:"jwt-expiration-hours"`
	BcryptCost         int    `mapstructure:"bcrypt-cost"`
	PasswordPepper     string `mapstructure:"password-pepper"`
}

// LogConfig selects the log encoder and level
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// Load reads configuration. path may be empty, in which case knotic.yaml
// (or .json) in the working directory is used if present. Environment
// variables override file values: llm.api-key is KNOTIC_LLM_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(appName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it on Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read-timeout", 30*time.Second)
	v.SetDefault("server.write-timeout", 300*time.Second)
	v.SetDefault("server.idle-timeout", 60*time.Second)
	v.SetDefault("server.shutdown-timeout", 30*time.Second)
	v.SetDefault("server.analyze-parallel", 4)

	v.SetDefault("database.url", "")

	v.SetDefault("llm.provider", string(llm.ProviderGemini))
	v.SetDefault("llm.api-key", "")
	v.SetDefault("llm.timeout", llm.DefaultTimeout)
	v.SetDefault("llm.lite-model", "")
	v.SetDefault("llm.standard-model", "")
	v.SetDefault("llm.advanced-model", "")

	v.SetDefault("pdf.engine", ingestion.EngineFitz)

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.prefix", "resumes")
	v.SetDefault("storage.endpoint", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.rate-limit", 100)
	v.SetDefault("redis.rate-window", time.Minute)

	v.SetDefault("auth.jwt-secret", "")
	v.SetDefault("auth.jwt-expiration-hours", DefaultJWTExpirationHours)
	v.SetDefault("auth.bcrypt-cost", DefaultBcryptCost)
	v.SetDefault("auth.password-pepper", "")

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// Validate checks value ranges. Required secrets are checked where they are
// used, so CLI commands that never touch them can run without them.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.AnalyzeParallel < 1 {
		return fmt.Errorf("config error: 'server.analyze-parallel' must be at least 1")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("config error: 'llm.timeout' must be positive")
	}
	if _, err := llm.ConfigFor(llm.Provider(c.LLM.Provider)); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if _, err := ingestion.NewExtractor(c.PDF.Engine); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Redis.RateLimit < 0 {
		return fmt.Errorf("config error: 'redis.rate-limit' must be non-negative")
	}
	if c.Redis.Addr != "" && c.Redis.Window <= 0 {
		return fmt.Errorf("config error: 'redis.rate-window' must be positive")
	}
	return nil
}

// LLMClientConfig resolves the provider defaults overlaid with any models
// set explicitly.
func (c *Config) LLMClientConfig() (*llm.Config, error) {
	cfg, err := llm.ConfigFor(llm.Provider(c.LLM.Provider))
	if err != nil {
		return nil, err
	}
	cfg.Timeout = c.LLM.Timeout
	for tier, model := range map[llm.ModelTier]string{
		llm.TierLite:     c.LLM.Lite,
		llm.TierStandard: c.LLM.Standard,
		llm.TierAdvanced: c.LLM.Advanced,
	} {
		if model != "" {
			cfg.Models[tier] = model
		}
	}
	return cfg, nil
}
