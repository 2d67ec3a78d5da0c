// Package config loads application settings from configs/config.yml and
// BIKESHARE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "BIKESHARE"

type Config struct {
	Port   string       `mapstructure:"port"`
	DB     DBConfig     `mapstructure:"db"`
	Log    LogConfig    `mapstructure:"log"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Upload UploadConfig `mapstructure:"upload"`
	Server ServerConfig `mapstructure:"server"`
	Feed   FeedConfig   `mapstructure:"feed"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AuthConfig struct {
	SigningKey   string        `mapstructure:"signing_key"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
}

// UploadConfig gates image support. Strict rejects disallowed extensions and
// validates the title before any bytes are written.
type UploadConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Strict      bool   `mapstructure:"strict"`
	Folder      string `mapstructure:"folder"`
	MaxMemoryMB int64  `mapstructure:"max_memory_mb"`
}

type ServerConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type FeedConfig struct {
	RecentLimit int `mapstructure:"recent_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "bikeshare.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.signing_key", "dev-signing-key-change-me")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.cookie_name", "session")
	v.SetDefault("auth.secure_cookie", false)
	v.SetDefault("upload.enabled", true)
	v.SetDefault("upload.strict", false)
	v.SetDefault("upload.folder", "uploads")
	v.SetDefault("upload.max_memory_mb", 32)
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("feed.recent_limit", 20)
}

// Load reads config.yml from the given directories (configs/ when none are
// given). A missing file is not an error: defaults and environment apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errors.New("auth.signing_key must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Upload.Enabled && strings.TrimSpace(c.Upload.Folder) == "" {
		return errors.New("upload.folder must be set when uploads are enabled")
	}
	if c.Feed.RecentLimit <= 0 {
		c.Feed.RecentLimit = 20
	}
	return nil
}

// MaxMultipartMemory converts the configured MB budget for gin.
func (u UploadConfig) MaxMultipartMemory() int64 {
	if u.MaxMemoryMB <= 0 {
		return 32 << 20
	}
	return u.MaxMemoryMB << 20
}
