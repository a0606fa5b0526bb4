package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Security  SecurityConfig  `mapstructure:"security"`
	EventLog  EventLogConfig  `mapstructure:"event_log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Environment     string        `mapstructure:"environment"`
	Port            int           `mapstructure:"port"`
	AdminPort       int           `mapstructure:"admin_port"`
	MetricsPort     int           `mapstructure:"metrics_port"`
	SecretKey       string        `mapstructure:"secret_key"`
	UpstreamURL     string        `mapstructure:"upstream_url"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`
	BodyLimit       int           `mapstructure:"body_limit"`
}

type MetricsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	EnableLatency bool `mapstructure:"enable_latency"`
}

type SecurityConfig struct {
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	BlockList   BlockListConfig   `mapstructure:"block_list"`
	Detection   DetectionConfig   `mapstructure:"detection"`
	Headers     HeadersConfig     `mapstructure:"headers"`
	AuthPaths   []string          `mapstructure:"auth_paths"`
	Routes      []string          `mapstructure:"routes"`
	RequestBody RequestBodyConfig `mapstructure:"request_body"`
	Feed        FeedConfig        `mapstructure:"feed"`
}

// FeedConfig bounds the live admin event feed.
type FeedConfig struct {
	MaxConnections int `mapstructure:"max_connections"`
}

type RateLimitConfig struct {
	Backend       string        `mapstructure:"backend"`
	Window        time.Duration `mapstructure:"window"`
	MaxRequests   int           `mapstructure:"max_requests"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type BlockListConfig struct {
	Backend string `mapstructure:"backend"`
	Key     string `mapstructure:"key"`
}

type DetectionConfig struct {
	MaxBodyBytes int `mapstructure:"max_body_bytes"`
}

type HeadersConfig struct {
	Disabled              bool   `mapstructure:"disabled"`
	ContentSecurityPolicy string `mapstructure:"content_security_policy"`
}

// RequestBodyConfig controls what is echoed into the event log for
// mutating requests. Mode is one of "raw", "redact" or "omit".
type RequestBodyConfig struct {
	Mode         string   `mapstructure:"mode"`
	RedactFields []string `mapstructure:"redact_fields"`
}

type EventLogConfig struct {
	Backend  string `mapstructure:"backend"`
	Capacity int    `mapstructure:"capacity"`
	FilePath string `mapstructure:"file_path"`
	RedisKey string `mapstructure:"redis_key"`
	Workers  int    `mapstructure:"workers"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

// TelemetryConfig lists the sinks every stored event is exported to.
type TelemetryConfig struct {
	Exporters []ExporterConfig `mapstructure:"exporters"`
}

// ExporterConfig selects one exporter by name.
type ExporterConfig struct {
	Name     string                 `mapstructure:"name"`
	Settings map[string]interface{} `mapstructure:"settings"`
}

// NeedsRedis reports whether any configured backend talks to redis.
func (c *Config) NeedsRedis() bool {
	return c.Security.RateLimit.Backend == BackendRedis ||
		c.Security.BlockList.Backend == BackendRedis ||
		c.EventLog.Backend == BackendRedis
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}
	setDefaultValues(&globalConfig)
	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if cfg.Server.AdminPort == 0 {
		cfg.Server.AdminPort = 8081
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Server.UpstreamTimeout == 0 {
		cfg.Server.UpstreamTimeout = 30 * time.Second
	}
	if cfg.Server.BodyLimit == 0 {
		cfg.Server.BodyLimit = 10 * 1024 * 1024
	}
	if cfg.Security.RateLimit.Backend == "" {
		cfg.Security.RateLimit.Backend = BackendMemory
	}
	if cfg.Security.RateLimit.Window == 0 {
		cfg.Security.RateLimit.Window = 15 * time.Minute
	}
	if cfg.Security.RateLimit.MaxRequests == 0 {
		cfg.Security.RateLimit.MaxRequests = 100
	}
	if cfg.Security.RateLimit.SweepInterval == 0 {
		cfg.Security.RateLimit.SweepInterval = time.Minute
	}
	if cfg.Security.BlockList.Backend == "" {
		cfg.Security.BlockList.Backend = BackendMemory
	}
	if cfg.Security.BlockList.Key == "" {
		cfg.Security.BlockList.Key = "siteguard:blocklist"
	}
	if cfg.Security.Detection.MaxBodyBytes == 0 {
		cfg.Security.Detection.MaxBodyBytes = 1024 * 1024
	}
	if len(cfg.Security.AuthPaths) == 0 {
		cfg.Security.AuthPaths = []string{"/api/auth/login", "/api/auth/register"}
	}
	if cfg.Security.RequestBody.Mode == "" {
		cfg.Security.RequestBody.Mode = "raw"
	}
	if cfg.Security.Feed.MaxConnections == 0 {
		cfg.Security.Feed.MaxConnections = 100
	}
	if cfg.EventLog.Backend == "" {
		cfg.EventLog.Backend = BackendMemory
	}
	if cfg.EventLog.Capacity == 0 {
		cfg.EventLog.Capacity = 1000
	}
	if cfg.EventLog.FilePath == "" {
		cfg.EventLog.FilePath = "data/security-logs.json"
	}
	if cfg.EventLog.RedisKey == "" {
		cfg.EventLog.RedisKey = "siteguard:events"
	}
	if cfg.EventLog.Workers == 0 {
		cfg.EventLog.Workers = 2
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
}

func GetConfig() *Config {
	return &globalConfig
}
