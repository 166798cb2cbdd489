package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"CryptoCast/internal/domain/models"
	"CryptoCast/pkg/logger"
)

var sevenDays = models.Timeframe{ID: "7d", Label: "7 Days", Days: 7}

func assetFor(t *testing.T, rawURL string) models.Asset {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return models.Asset{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Endpoint: models.Endpoint{Host: host, Port: port}}
}

func TestFetchSuccess(t *testing.T) {
	var got models.PredictionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"success":true,"crypto":"bitcoin","timeframe":"7d","result":{
			"chart_data":{"historical":{"dates":["2024-01-01","2024-01-02"],"prices":[100,102]},
			"predictions":{"dates":["2024-01-03"],"prices":[105]}},
			"prediction":{"price":105,"date":"2024-01-03"},"timeframe":"7 days"}}`))
	}))
	defer srv.Close()

	resp, err := New().Fetch(context.Background(), assetFor(t, srv.URL), sevenDays)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Crypto != "bitcoin" || got.Timeframe != "7d" {
		t.Fatalf("request body = %+v", got)
	}
	if !resp.Success || resp.Result == nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	if tgt, _ := resp.Target(); tgt.Price != 105 || tgt.Date != "2024-01-03" {
		t.Fatalf("target = %+v", tgt)
	}
	if len(resp.Historical().Prices) != 2 || resp.Result.Timeframe != "7 days" {
		t.Fatalf("result = %+v", resp.Result)
	}
}

func TestFetchApplicationFailure(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"500 envelope", http.StatusInternalServerError, `{"success":false,"error":"Model file not found"}`, "Model file not found"},
		{"200 envelope", http.StatusOK, `{"success":false,"error":"Unsupported timeframe"}`, "Unsupported timeframe"},
		{"empty error", http.StatusInternalServerError, `{"success":false,"error":""}`, DefaultFailureMessage},
		{"missing error", http.StatusOK, `{"success":false}`, DefaultFailureMessage},
		{"whitespace kept", http.StatusInternalServerError, `{"success":false,"error":"  model unavailable\n"}`, "  model unavailable\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New().Fetch(context.Background(), assetFor(t, srv.URL), sevenDays)
			var appErr *ApplicationError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected ApplicationError, got %T %v", err, err)
			}
			if appErr.Message != tc.message || appErr.Status != tc.status {
				t.Fatalf("got %q/%d want %q/%d", appErr.Message, appErr.Status, tc.message, tc.status)
			}
		})
	}
}

func TestFetchTransportFailure(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"html error page", http.StatusBadGateway, "<html>bad gateway</html>"},
		{"non json", http.StatusOK, "not json"},
		{"empty body", http.StatusOK, ""},
		{"no success field", http.StatusOK, `{"result":null}`},
		{"success without result", http.StatusOK, `{"success":true}`},
		{"success with error status", http.StatusInternalServerError, `{"success":true,"result":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New().Fetch(context.Background(), assetFor(t, srv.URL), sevenDays)
			var tErr *TransportError
			if !errors.As(err, &tErr) {
				t.Fatalf("expected TransportError, got %T %v", err, err)
			}
			if tErr.Status != tc.status {
				t.Fatalf("status = %d want %d", tErr.Status, tc.status)
			}
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	asset := assetFor(t, srv.URL)
	srv.Close()

	_, err := New().Fetch(context.Background(), asset, sevenDays)
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
	if tErr.Status != 0 {
		t.Fatalf("status = %d", tErr.Status)
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(WithTimeout(50*time.Millisecond)).Fetch(context.Background(), assetFor(t, srv.URL), sevenDays)
	var tErr *TransportError
	if !errors.As(err, &tErr) || !tErr.Timeout() {
		t.Fatalf("expected timeout TransportError, got %v", err)
	}
}

func TestFetchTimeoutLogged(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	var buf bytes.Buffer
	c := New(WithTimeout(50*time.Millisecond), WithLogger(logger.NewWriter(&buf, zerolog.DebugLevel)))
	if _, err := c.Fetch(context.Background(), assetFor(t, srv.URL), sevenDays); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(buf.String(), `"timeout":true`) {
		t.Fatalf("log missing timeout flag: %s", buf.String())
	}
}

func TestFetchCustomPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/predict" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"result":{"chart_data":{"historical":{"dates":[],"prices":[]},"predictions":{"dates":[],"prices":[]}},"prediction":{"price":1,"date":"2024-01-01"}}}`))
	}))
	defer srv.Close()

	if _, err := New(WithPath("/v2/predict")).Fetch(context.Background(), assetFor(t, srv.URL), sevenDays); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
}

func TestFetchDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, _ = New().Fetch(context.Background(), assetFor(t, srv.URL), sevenDays)
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
}
