package registry

import (
	"errors"
	"testing"

	"CryptoCast/internal/domain/models"
)

func TestDefaultRegistry(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := len(r.Assets()); got != 8 {
		t.Fatalf("expected 8 assets, got %d", got)
	}
	if got := len(r.Timeframes()); got != 4 {
		t.Fatalf("expected 4 timeframes, got %d", got)
	}

	btc, err := r.Asset("bitcoin")
	if err != nil {
		t.Fatalf("lookup bitcoin: %v", err)
	}
	if btc.Endpoint.Host != DefaultHost || btc.Endpoint.Port != 5474 {
		t.Fatalf("unexpected endpoint %+v", btc.Endpoint)
	}
	if btc.Endpoint.BaseURL() != "http://localhost:5474" {
		t.Fatalf("unexpected base url %s", btc.Endpoint.BaseURL())
	}

	tf, err := r.Timeframe("30d")
	if err != nil {
		t.Fatalf("lookup 30d: %v", err)
	}
	if tf.Days != 30 || tf.Label != "30 Days" {
		t.Fatalf("unexpected timeframe %+v", tf)
	}
}

func TestUnknownIDs(t *testing.T) {
	r, _ := New()

	_, err := r.Asset("litecoin")
	if !errors.Is(err, ErrUnknownAsset) {
		t.Fatalf("expected ErrUnknownAsset, got %v", err)
	}
	if err.Error() != `unknown asset "litecoin"` {
		t.Fatalf("unexpected message %q", err.Error())
	}

	_, err = r.Timeframe("2y")
	if !errors.Is(err, ErrUnknownTimeframe) {
		t.Fatalf("expected ErrUnknownTimeframe, got %v", err)
	}
	if _, err := r.Timeframe(DefaultTimeframeID); err != nil {
		t.Fatalf("default timeframe: %v", err)
	}
}

func TestWithHost(t *testing.T) {
	r, err := New(WithHost("predictor.internal"), WithAssets([]models.Asset{
		{ID: "a", Endpoint: models.Endpoint{Port: 1000}},
		{ID: "b", Endpoint: models.Endpoint{Host: "10.0.0.2", Port: 1001}},
	}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a, _ := r.Asset("a")
	if a.Endpoint.Host != "predictor.internal" {
		t.Fatalf("expected configured host, got %s", a.Endpoint.Host)
	}
	b, _ := r.Asset("b")
	if b.Endpoint.Host != "10.0.0.2" {
		t.Fatalf("explicit host must win, got %s", b.Endpoint.Host)
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"duplicate asset", []Option{WithAssets([]models.Asset{
			{ID: "x", Endpoint: models.Endpoint{Port: 1}},
			{ID: "x", Endpoint: models.Endpoint{Port: 2}},
		})}},
		{"empty asset id", []Option{WithAssets([]models.Asset{{Endpoint: models.Endpoint{Port: 1}}})}},
		{"bad port", []Option{WithAssets([]models.Asset{{ID: "x", Endpoint: models.Endpoint{Port: 70000}}})}},
		{"duplicate timeframe", []Option{WithTimeframes([]models.Timeframe{{ID: "1d"}, {ID: "1d"}})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts...); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestAssetsReturnsCopy(t *testing.T) {
	r, _ := New()
	as := r.Assets()
	as[0].ID = "mutated"
	if _, err := r.Asset("bitcoin"); err != nil {
		t.Fatalf("registry must not be mutated through Assets(): %v", err)
	}
}
