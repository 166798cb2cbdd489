package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"), filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.Environment != "development" || c.Server.Port != 8080 || !c.Server.CORS {
		t.Fatalf("server defaults: %+v", c.Server)
	}
	if c.Prediction.Host != "localhost" || c.Prediction.Path != "/predict" || c.Prediction.Timeout != 60*time.Second {
		t.Fatalf("prediction defaults: %+v", c.Prediction)
	}
	if c.Cache.Backend != "memory" || c.Cache.Redis.Addr != "localhost:6379" {
		t.Fatalf("cache defaults: %+v", c.Cache)
	}
	if c.Kafka.Enabled || c.ClickHouse.Enabled || !c.Metrics.Enabled {
		t.Fatalf("sink defaults: kafka=%v clickhouse=%v metrics=%v", c.Kafka.Enabled, c.ClickHouse.Enabled, c.Metrics.Enabled)
	}
	if c.Kafka.RequiredAcks != -1 || c.RateLimit.Burst != 5 {
		t.Fatalf("numeric defaults: acks=%d burst=%d", c.Kafka.RequiredAcks, c.RateLimit.Burst)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
environment: production
server:
  port: 9090
  cors: false
prediction:
  host: predictor.internal
  timeout: 30s
cache:
  backend: none
metrics:
  enabled: false
`)
	c, err := LoadWithEnv(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.Environment != "production" || c.Server.Port != 9090 || c.Server.CORS {
		t.Fatalf("server: %+v", c.Server)
	}
	if c.Prediction.Host != "predictor.internal" || c.Prediction.Timeout != 30*time.Second {
		t.Fatalf("prediction: %+v", c.Prediction)
	}
	if c.Prediction.Path != "/predict" {
		t.Fatalf("untouched field lost its default: %q", c.Prediction.Path)
	}
	if c.Cache.Backend != "none" || c.Metrics.Enabled {
		t.Fatalf("cache=%s metrics=%v", c.Cache.Backend, c.Metrics.Enabled)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CRYPTOCAST_ENV", "staging")
	t.Setenv("PREDICTION_HOST", "models")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("LOG_LEVEL", "DEBUG")

	c, err := LoadWithEnv("", filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.Environment != "staging" || c.Prediction.Host != "models" || c.Log.Level != "debug" {
		t.Fatalf("env not applied: %+v", c)
	}
	if c.Cache.Backend != "redis" || c.Cache.Redis.Addr != "redis:6380" {
		t.Fatalf("redis: %+v", c.Cache)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("kafka: %+v", c.Kafka)
	}
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "PREDICTION_HOST=from-dotenv\n")
	t.Setenv("PREDICTION_HOST", "")
	os.Unsetenv("PREDICTION_HOST")

	c, err := LoadWithEnv("", envFile)
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.Prediction.Host != "from-dotenv" {
		t.Fatalf("prediction host = %q", c.Prediction.Host)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"bad environment":       "environment: qa\n",
		"bad port":              "server:\n  port: 70000\n",
		"bad cache backend":     "cache:\n  backend: memcached\n",
		"bad log level":         "log:\n  level: verbose\n",
		"kafka without brokers": "kafka:\n  enabled: true\n",
		"relative path":         "prediction:\n  path: predict\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "config.yaml", body)
			if _, err := LoadWithEnv(path, filepath.Join(dir, "missing.env")); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "server: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
