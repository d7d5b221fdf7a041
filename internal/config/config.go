// Package config loads the service configuration.
//
// Sources, highest priority first:
//  1. explicit --config path;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. environment only.
//
// Environment variables always overlay values read from a file.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreGorm   = "gorm"
	StoreMemory = "memory"

	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Log       LogConfig       `yaml:"log"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	S3        S3Config        `yaml:"s3"`
	Providers ProvidersConfig `yaml:"providers"`
}

type AppConfig struct {
	ENV   string `yaml:"env"   env:"APP_ENV"   env-default:"development"`
	Store string `yaml:"store" env:"APP_STORE" env-default:"gorm"`
	Seed  bool   `yaml:"seed"  env:"APP_SEED"  env-default:"false"`
}

type LogConfig struct {
	Level     string `yaml:"level"     env:"LOG_LEVEL"     env-default:"info"`
	Format    string `yaml:"format"    env:"LOG_FORMAT"    env-default:"text"`
	Component string `yaml:"component" env:"LOG_COMPONENT" env-default:"vibecheck"`
	Source    bool   `yaml:"source"    env:"LOG_SOURCE"    env-default:"false"`
}

// DBConfig describes the relational store. DSN wins over the individual parts.
type DBConfig struct {
	Driver   string `yaml:"driver"   env:"DB_DRIVER"   env-default:"mysql"`
	DSN      string `yaml:"dsn"      env:"MYSQL_DSN"`
	Host     string `yaml:"host"     env:"DB_HOST"     env-default:"localhost"`
	Port     string `yaml:"port"     env:"DB_PORT"     env-default:"3306"`
	User     string `yaml:"user"     env:"DB_USER"     env-default:"root"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-default:"root"`
	Name     string `yaml:"name"     env:"DB_NAME"     env-default:"vibecheck"`
	LogSQL   bool   `yaml:"log_sql"  env:"DB_LOG_SQL"  env-default:"false"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"     env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"       env-default:"0"`
}

type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

func (g GRPCConfig) Addr() string { return net.JoinHostPort(g.Host, g.Port) }

type HTTPConfig struct {
	Host           string        `yaml:"host"            env:"HTTP_HOST"            env-default:"0.0.0.0"`
	Port           string        `yaml:"port"            env:"HTTP_PORT"            env-default:"8080"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"HTTP_REQUEST_TIMEOUT" env-default:"15s"`
	CORSOrigins    []string      `yaml:"cors_origins"    env:"HTTP_CORS_ORIGINS"    env-default:"*"`
	RateLimit      int           `yaml:"rate_limit"      env:"HTTP_RATE_LIMIT"      env-default:"120"`
	RateWindow     time.Duration `yaml:"rate_window"     env:"HTTP_RATE_WINDOW"     env-default:"1m"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"  env:"AUTH_JWT_SECRET"  env-default:"change-me"`
	Issuer     string        `yaml:"issuer"      env:"AUTH_ISSUER"      env-default:"vibecheck"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"AUTH_SESSION_TTL" env-default:"24h"`
	Enforce    bool          `yaml:"enforce"     env:"AUTH_ENFORCE"     env-default:"false"`
}

type S3Config struct {
	Region     string        `yaml:"region"      env:"AWS_REGION"        env-default:"us-east-1"`
	Bucket     string        `yaml:"bucket"      env:"S3_BUCKET_NAME"`
	Endpoint   string        `yaml:"endpoint"    env:"S3_ENDPOINT"`
	AccessKey  string        `yaml:"access_key"  env:"S3_ACCESS_KEY"`
	SecretKey  string        `yaml:"secret_key"  env:"S3_SECRET_KEY"`
	PresignTTL time.Duration `yaml:"presign_ttl" env:"S3_PRESIGN_TTL" env-default:"5m"`
}

type ProvidersConfig struct {
	Timeout      time.Duration `yaml:"timeout"       env:"PROVIDER_TIMEOUT"  env-default:"10s"`
	SpotifyURL   string        `yaml:"spotify_url"   env:"SPOTIFY_API_URL"   env-default:"https://api.spotify.com"`
	SpotifyToken string        `yaml:"spotify_token" env:"SPOTIFY_TOKEN"`
	GeniusURL    string        `yaml:"genius_url"    env:"GENIUS_API_URL"    env-default:"https://api.genius.com"`
	GeniusToken  string        `yaml:"genius_token"  env:"GENIUS_TOKEN"`
}

// New returns the environment-only configuration. It never fails; use Load
// to surface malformed values.
func New() *Config {
	cfg := &Config{}
	_ = cleanenv.ReadEnv(cfg)
	cfg.finish()
	return cfg
}

// MustLoad panics when the configuration cannot be loaded.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		cfg.finish()
		return &cfg, nil
	}

	if path != "" {
		return tryRead(path)
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	cfg.finish()
	return &cfg, nil
}

// finish normalises values and composes the DSN when it was not given.
func (c *Config) finish() {
	c.App.Store = strings.ToLower(strings.TrimSpace(c.App.Store))
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))

	if c.DB.DSN != "" {
		return
	}

	switch c.DB.Driver {
	case DriverPostgres:
		c.DB.DSN = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name,
		)
	case DriverSQLite:
		c.DB.DSN = c.DB.Name + ".db"
	default:
		c.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name,
		)
	}
}

// IsDevelopment reports whether the service runs in the development env.
func (c *Config) IsDevelopment() bool {
	return c.App.ENV == "development"
}
