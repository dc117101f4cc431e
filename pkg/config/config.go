package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		Mode            string        `yaml:"mode"` // gin mode: debug, release, test
		// CORSOrigins lists browser origins allowed to call the API; empty disables CORS.
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Database struct {
		Driver          string        `yaml:"driver"` // postgres or sqlite
		DSN             string        `yaml:"dsn"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		ConnectAttempts int           `yaml:"connect_attempts"`
	} `yaml:"database"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Auth struct {
		JWTSecret     string        `yaml:"jwt_secret"`
		TokenTTL      time.Duration `yaml:"token_ttl"`
		ResetTTL      time.Duration `yaml:"reset_ttl"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
		BcryptCost    int           `yaml:"bcrypt_cost"`
		// TokenStore is "auto" (Redis, else database) or "memory".
		TokenStore string `yaml:"token_store"`

		Admin struct {
			Name     string `yaml:"name"`
			Password string `yaml:"password"`
		} `yaml:"admin"`
	} `yaml:"auth"`

	Media struct {
		ApprovalPoints int64 `yaml:"approval_points"`
		MaxTags        int   `yaml:"max_tags"`
	} `yaml:"media"`

	Monitoring struct {
		PrometheusEnabled bool          `yaml:"prometheus_enabled"`
		HealthTimeout     time.Duration `yaml:"health_timeout"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Tracing struct {
		Enabled        bool    `yaml:"enabled"`
		ServiceName    string  `yaml:"service_name"`
		Environment    string  `yaml:"environment"`
		JaegerEndpoint string  `yaml:"jaeger_endpoint"`
		SampleRate     float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
			MaxConcurrent     int     `yaml:"max_concurrent"` // global concurrent HTTP requests
		} `yaml:"http"`

		// Auth applies to login and password reset routes even when the
		// global limiter is disabled.
		Auth struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
		} `yaml:"auth"`
	} `yaml:"rate_limiting"`
}

// PlaceholderJWTSecret is the shipped default secret. Validate accepts it only
// in debug and test mode.
const PlaceholderJWTSecret = "change-me-in-production"

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Database
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database pool sizes must be >= 0")
	}
	if c.Database.ConnectAttempts < 1 {
		return fmt.Errorf("database.connect_attempts must be >= 1")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
	}

	// Auth
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.JWTSecret == PlaceholderJWTSecret && c.Server.Mode != "debug" && c.Server.Mode != "test" {
		return fmt.Errorf("auth.jwt_secret must be changed from the placeholder in %s mode", c.Server.Mode)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0")
	}
	if c.Auth.ResetTTL <= 0 {
		return fmt.Errorf("auth.reset_ttl must be > 0")
	}
	if c.Auth.SweepInterval <= 0 {
		return fmt.Errorf("auth.sweep_interval must be > 0")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31")
	}
	if c.Auth.TokenStore != "auto" && c.Auth.TokenStore != "memory" {
		return fmt.Errorf("auth.token_store must be auto or memory")
	}
	if (c.Auth.Admin.Name == "") != (c.Auth.Admin.Password == "") {
		return fmt.Errorf("auth.admin.name and auth.admin.password must be set together")
	}

	// Media
	if c.Media.ApprovalPoints < 0 {
		return fmt.Errorf("media.approval_points must be >= 0")
	}
	if c.Media.MaxTags <= 0 {
		return fmt.Errorf("media.max_tags must be > 0")
	}

	// Monitoring
	if c.Monitoring.HealthTimeout <= 0 {
		return fmt.Errorf("monitoring.health_timeout must be > 0")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.ServiceName == "" {
			return fmt.Errorf("tracing.service_name must not be empty when tracing.enabled=true")
		}
		if c.Tracing.JaegerEndpoint == "" {
			return fmt.Errorf("tracing.jaeger_endpoint must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.http.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}
	if c.RateLimiting.Auth.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limiting.auth.requests_per_second must be > 0")
	}
	if c.RateLimiting.Auth.Burst <= 0 {
		return fmt.Errorf("rate_limiting.auth.burst must be > 0")
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second
	cfg.Server.Mode = "release"

	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "file:mediahub.db?_foreign_keys=on"
	cfg.Database.MaxOpenConns = 10
	cfg.Database.MaxIdleConns = 5
	cfg.Database.ConnMaxLifetime = time.Hour
	cfg.Database.ConnectAttempts = 5

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Auth.JWTSecret = PlaceholderJWTSecret
	cfg.Auth.TokenTTL = 24 * time.Hour
	cfg.Auth.ResetTTL = 15 * time.Minute
	cfg.Auth.SweepInterval = 10 * time.Minute
	cfg.Auth.BcryptCost = 10
	cfg.Auth.TokenStore = "auto"

	cfg.Media.ApprovalPoints = 10
	cfg.Media.MaxTags = 16

	cfg.Monitoring.PrometheusEnabled = true
	cfg.Monitoring.HealthTimeout = 2 * time.Second

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "mediahub"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.JaegerEndpoint = "http://localhost:14268/api/traces"
	cfg.Tracing.SampleRate = 1.0

	// Rate limiting defaults (global limiter disabled by default)
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 50
	cfg.RateLimiting.HTTP.Burst = 100
	cfg.RateLimiting.HTTP.MaxConcurrent = 0
	cfg.RateLimiting.Auth.RequestsPerSecond = 1
	cfg.RateLimiting.Auth.Burst = 5

	return cfg
}

func (c *Config) applyEnvOverrides() error {
	if addr := os.Getenv("MEDIAHUB_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if mode := os.Getenv("MEDIAHUB_SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("MEDIAHUB_DATABASE_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("MEDIAHUB_DATABASE_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if enabled := os.Getenv("MEDIAHUB_REDIS_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("MEDIAHUB_REDIS_ENABLED: %w", err)
		}
		c.Redis.Enabled = v
	}
	if addr := os.Getenv("MEDIAHUB_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
	if password := os.Getenv("MEDIAHUB_REDIS_PASSWORD"); password != "" {
		c.Redis.Password = password
	}
	if level := os.Getenv("MEDIAHUB_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("MEDIAHUB_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if ttl := os.Getenv("MEDIAHUB_TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("MEDIAHUB_TOKEN_TTL: %w", err)
		}
		c.Auth.TokenTTL = d
	}
	if name := os.Getenv("MEDIAHUB_ADMIN_NAME"); name != "" {
		c.Auth.Admin.Name = name
	}
	if password := os.Getenv("MEDIAHUB_ADMIN_PASSWORD"); password != "" {
		c.Auth.Admin.Password = password
	}
	return nil
}
