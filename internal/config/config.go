package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	Log struct {
		Level string
	}
	Database struct {
		URL            string
		LogLevel       string
		MigrationsPath string
	}
	Redis struct {
		URL string
	}
	Medical struct {
		BaseURL    string
		QueryPath  string
		HealthPath string
		// Zero means requests never time out.
		Timeout time.Duration
	}
	Auth struct {
		Mode      string
		Token     string
		UserID    string
		JWTSecret string
		JWTTTL    time.Duration
	}
	UI struct {
		LatestOnly bool
		SessionTTL time.Duration
		RateLimit  int
	}
	Health struct {
		Interval time.Duration
	}
}

const (
	AuthModeStatic = "static"
	AuthModeJWT    = "jwt"
)

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.url", "")
	v.SetDefault("database.log_level", "")
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("redis.url", "")
	v.SetDefault("medical.base_url", "http://localhost:8000")
	v.SetDefault("medical.query_path", "/api/v1/medical/query")
	v.SetDefault("medical.health_path", "/api/v1/health/check")
	v.SetDefault("medical.timeout", time.Duration(0))
	v.SetDefault("auth.mode", AuthModeStatic)
	v.SetDefault("auth.token", "your-token-here")
	v.SetDefault("auth.user_id", "test-user")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_ttl", time.Hour)
	v.SetDefault("ui.latest_only", true)
	v.SetDefault("ui.session_ttl", 30*time.Minute)
	v.SetDefault("ui.rate_limit", 30)
	v.SetDefault("health.interval", 30*time.Second)
}

func fromViper(v *viper.Viper) *Config {
	var config Config

	config.Server.Port = v.GetString("server.port")
	config.Log.Level = v.GetString("log.level")
	config.Database.URL = v.GetString("database.url")
	config.Database.LogLevel = v.GetString("database.log_level")
	config.Database.MigrationsPath = v.GetString("database.migrations_path")
	config.Redis.URL = v.GetString("redis.url")
	config.Medical.BaseURL = strings.TrimRight(v.GetString("medical.base_url"), "/")
	config.Medical.QueryPath = v.GetString("medical.query_path")
	config.Medical.HealthPath = v.GetString("medical.health_path")
	config.Medical.Timeout = v.GetDuration("medical.timeout")
	config.Auth.Mode = strings.ToLower(v.GetString("auth.mode"))
	config.Auth.Token = v.GetString("auth.token")
	config.Auth.UserID = v.GetString("auth.user_id")
	config.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	config.Auth.JWTTTL = v.GetDuration("auth.jwt_ttl")
	config.UI.LatestOnly = v.GetBool("ui.latest_only")
	config.UI.SessionTTL = v.GetDuration("ui.session_ttl")
	config.UI.RateLimit = v.GetInt("ui.rate_limit")
	config.Health.Interval = v.GetDuration("health.interval")

	return &config
}

// QueryURL is the full endpoint the form posts to.
func (c *Config) QueryURL() string {
	return c.Medical.BaseURL + c.Medical.QueryPath
}

func (c *Config) HistoryEnabled() bool {
	return c.Database.URL != ""
}

func (c *Config) Validate() error {
	if c.Medical.BaseURL == "" {
		return fmt.Errorf("MEDICAL_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Medical.QueryPath, "/") {
		return fmt.Errorf("medical.query_path must start with '/': %q", c.Medical.QueryPath)
	}
	if c.Medical.Timeout < 0 {
		return fmt.Errorf("medical.timeout cannot be negative")
	}

	switch c.Auth.Mode {
	case AuthModeStatic:
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required when auth.mode is %q", AuthModeJWT)
		}
		if c.Auth.JWTTTL <= 0 {
			return fmt.Errorf("auth.jwt_ttl must be positive")
		}
	default:
		return fmt.Errorf("unknown auth.mode %q", c.Auth.Mode)
	}

	if c.UI.SessionTTL <= 0 {
		return fmt.Errorf("ui.session_ttl must be positive")
	}
	if c.UI.RateLimit <= 0 {
		return fmt.Errorf("ui.rate_limit must be positive")
	}
	if c.Health.Interval <= 0 {
		return fmt.Errorf("health.interval must be positive")
	}
	return nil
}
