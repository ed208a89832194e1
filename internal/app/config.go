package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/yungbote/bloom-backend/internal/clients/redis"
	"github.com/yungbote/bloom-backend/internal/data/db"
	"github.com/yungbote/bloom-backend/internal/observability"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	// ConfigPathEnv names the optional YAML file loaded before env overrides.
	ConfigPathEnv = "BLOOM_CONFIG"

	maxConfigFileSize = 1024 * 1024
)

// sections are the top-level keys env vars may target; anything else in the environment is ignored.
var sections = map[string]bool{
	"app": true, "server": true, "db": true, "session": true, "redis": true,
	"otel": true, "metrics": true, "happiness": true, "log": true, "cors": true,
}

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	DB        DBConfig        `koanf:"db"`
	Session   SessionConfig   `koanf:"session"`
	Redis     RedisConfig     `koanf:"redis"`
	Otel      OtelConfig      `koanf:"otel"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Happiness HappinessConfig `koanf:"happiness"`
	Log       LogConfig       `koanf:"log"`
	CORS      CORSConfig      `koanf:"cors"`
}

type AppConfig struct {
	Env     string `koanf:"env"`
	Version string `koanf:"version"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DBConfig struct {
	Driver          string        `koanf:"driver"`
	DSN             string        `koanf:"dsn"`
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"sslmode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	SlowThreshold   time.Duration `koanf:"slow_threshold"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type SessionConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Prefix   string        `koanf:"prefix"`
	TTL      time.Duration `koanf:"ttl"`
}

// OtelConfig field names follow the OTEL_EXPORTER_OTLP_* environment convention.
type OtelConfig struct {
	Enabled     bool    `koanf:"enabled"`
	ServiceName string  `koanf:"service_name"`
	Endpoint    string  `koanf:"exporter_otlp_endpoint"`
	Insecure    bool    `koanf:"exporter_otlp_insecure"`
	Headers     string  `koanf:"exporter_otlp_headers"`
	SampleRatio float64 `koanf:"sample_ratio"`
}

type MetricsConfig struct {
	Enabled        bool          `koanf:"enabled"`
	ScrapeInterval time.Duration `koanf:"scrape_interval"`
}

type HappinessConfig struct {
	Timezone  string        `koanf:"timezone"`
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

type LogConfig struct {
	Mode string `koanf:"mode"`
}

type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

// LoadConfig reads the YAML file at path (or $BLOOM_CONFIG) when present, then applies env
// overrides. SECTION_FIELD_NAME maps to section.field_name, e.g. SESSION_SECRET -> session.secret.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = strings.TrimSpace(os.Getenv(ConfigPathEnv))
	}
	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func envKey(s string) string {
	parts := strings.SplitN(strings.ToLower(s), "_", 2)
	if len(parts) != 2 || !sections[parts[0]] || parts[1] == "" {
		return ""
	}
	return parts[0] + "." + parts[1]
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return content, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Env == "" {
		cfg.App.Env = EnvDevelopment
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "dev"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = db.DriverSQLite
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 7 * 24 * time.Hour
	}
	if cfg.Otel.ServiceName == "" {
		cfg.Otel.ServiceName = "bloom-backend"
	}
	if cfg.Metrics.ScrapeInterval == 0 {
		cfg.Metrics.ScrapeInterval = 15 * time.Second
	}
	if cfg.Happiness.Timezone == "" {
		cfg.Happiness.Timezone = "UTC"
	}
	if cfg.Happiness.CacheSize == 0 {
		cfg.Happiness.CacheSize = 1024
	}
	if cfg.Happiness.CacheTTL == 0 {
		cfg.Happiness.CacheTTL = 5 * time.Minute
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = cfg.App.Env
	}
}

func (c *Config) Validate() error {
	switch c.App.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("unknown app env %q", c.App.Env)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	switch c.DB.Driver {
	case db.DriverPostgres:
		if c.DB.DSN == "" && c.DB.Host == "" {
			return errors.New("postgres requires db.dsn or db.host")
		}
	case db.DriverSQLite:
	default:
		return fmt.Errorf("unknown db driver %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.Session.Secret) == "" && c.App.Env != EnvDevelopment {
		return errors.New("session secret is required outside development")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the zone week boundaries are computed in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Happiness.Timezone)
	if err != nil {
		return nil, fmt.Errorf("happiness timezone %q: %w", c.Happiness.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }

func (c *Config) Database() db.Config {
	return db.Config{
		Driver:          c.DB.Driver,
		DSN:             c.DB.DSN,
		Host:            c.DB.Host,
		Port:            c.DB.Port,
		User:            c.DB.User,
		Password:        c.DB.Password,
		Name:            c.DB.Name,
		SSLMode:         c.DB.SSLMode,
		MaxOpenConns:    c.DB.MaxOpenConns,
		MaxIdleConns:    c.DB.MaxIdleConns,
		ConnMaxLifetime: c.DB.ConnMaxLifetime,
		SlowThreshold:   c.DB.SlowThreshold,
	}
}

func (c *Config) RedisCache() redis.Config {
	return redis.Config{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		Prefix:   c.Redis.Prefix,
		TTL:      c.Redis.TTL,
	}
}

func (c *Config) Tracing() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.Otel.Enabled,
		ServiceName: c.Otel.ServiceName,
		Environment: c.App.Env,
		Version:     c.App.Version,
		Endpoint:    c.Otel.Endpoint,
		Insecure:    c.Otel.Insecure,
		Headers:     observability.ParseHeaders(c.Otel.Headers),
		SampleRatio: c.Otel.SampleRatio,
	}
}

// SessionSecret falls back to a fixed development secret so local runs need no setup.
func (c *Config) SessionSecret() string {
	if s := strings.TrimSpace(c.Session.Secret); s != "" {
		return s
	}
	return "bloom-development-secret"
}
