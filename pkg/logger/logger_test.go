package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Output: "stdout"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.DebugLevel).With(String("component", "test"))

	l.Info("prediction applied",
		String("asset", "bitcoin"),
		Uint64("generation", 7),
		Float64("price", 105.5),
		Duration("latency_ms", 1500*time.Millisecond),
		Bool("stale", false),
		Error(errors.New("boom")),
	)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if entry["message"] != "prediction applied" || entry["component"] != "test" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["asset"] != "bitcoin" || entry["generation"] != float64(7) || entry["latency_ms"] != float64(1500) {
		t.Fatalf("unexpected fields %v", entry)
	}
	if entry["error"] != "boom" {
		t.Fatalf("expected error field, got %v", entry["error"])
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %s", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Fatalf("expected warn entry")
	}
}

func TestNopDiscards(t *testing.T) {
	Nop().Error("ignored", String("k", "v"))
}
