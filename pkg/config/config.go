package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"required,oneof=development test staging production"`
	Server      ServerConfig     `yaml:"server"`
	Log         LogConfig        `yaml:"log"`
	Prediction  PredictionConfig `yaml:"prediction"`
	RateLimit   RateLimitConfig  `yaml:"ratelimit"`
	Archive     ArchiveConfig    `yaml:"archive"`
	Cache       CacheConfig      `yaml:"cache"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Metrics     MetricsConfig    `yaml:"metrics"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	SlowRequest     time.Duration `yaml:"slow_request" default:"2s"`
	CORS            bool          `yaml:"cors" default:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"json" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stdout" validate:"required"`
}

// PredictionConfig locates the per-asset prediction services. Ports are
// fixed per asset; only the host is configurable.
type PredictionConfig struct {
	Host    string        `yaml:"host" default:"localhost" validate:"required"`
	Path    string        `yaml:"path" default:"/predict" validate:"startswith=/"`
	Timeout time.Duration `yaml:"timeout" default:"60s" validate:"gt=0"`
}

// RateLimitConfig throttles POST /api/predict per client address.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" default:"2" validate:"gte=0"`
	Burst int     `yaml:"burst" default:"5" validate:"gte=1"`
}

type ArchiveConfig struct {
	Timeout     time.Duration `yaml:"timeout" default:"5s" validate:"gt=0"`
	RetryBuffer int           `yaml:"retry_buffer" default:"256" validate:"gte=1"`
}

type CacheConfig struct {
	Backend    string        `yaml:"backend" default:"memory" validate:"oneof=memory redis layered none"`
	TTL        time.Duration `yaml:"ttl" default:"24h"`
	MemorySize int           `yaml:"memory_size" default:"1000" validate:"gte=1"`
	Redis      RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" default:"localhost:6379" validate:"required,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	PoolSize int    `yaml:"pool_size" default:"10" validate:"gte=1"`
	Prefix   string `yaml:"prefix" default:"cryptocast"`
}

type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"prediction-outcomes" validate:"required"`
	RequiredAcks int           `yaml:"required_acks" default:"-1" validate:"oneof=-1 0 1"`
	Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=none gzip snappy lz4 zstd"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3" validate:"gte=1"`
	BatchTimeout time.Duration `yaml:"batch_timeout" default:"10ms"`
	Async        bool          `yaml:"async"`
}

type ClickHouseConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host" default:"localhost"`
	Port         int           `yaml:"port" default:"9000" validate:"min=1,max=65535"`
	Database     string        `yaml:"database" default:"cryptocast" validate:"required,alphanumunicode"`
	User         string        `yaml:"user" default:"default"`
	Password     string        `yaml:"password"`
	UseHTTP      bool          `yaml:"use_http"`
	AsyncInsert  bool          `yaml:"async_insert"`
	WaitForAsync bool          `yaml:"wait_for_async_insert"`
	InitSchema   bool          `yaml:"init_schema" default:"true"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics" validate:"startswith=/"`
}

var validate = validator.New()

// Load applies defaults and then the YAML file at path on top. A missing
// file leaves the defaults in place.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML, then .env files (".env" when none
// are given), then environment overrides, and validates the result.
// Variables already set in the process win over .env entries.
func LoadWithEnv(path string, envFiles ...string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CRYPTOCAST_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("PREDICTION_HOST"); v != "" {
		c.Prediction.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		if c.Cache.Backend == "memory" {
			c.Cache.Backend = "redis"
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
