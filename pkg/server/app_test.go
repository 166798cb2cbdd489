package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"CryptoCast/internal/domain/models"
	"CryptoCast/internal/registry"
	"CryptoCast/internal/usecase"
	"CryptoCast/pkg/config"
	xhttp "CryptoCast/pkg/http"
	applogger "CryptoCast/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

type nopClient struct{}

func (nopClient) Fetch(ctx context.Context, asset models.Asset, tf models.Timeframe) (models.PredictionResponse, error) {
	return models.PredictionResponse{Success: false, Error: "unused"}, nil
}

type recordingCloser struct {
	name  string
	order *[]string
	err   error
}

func (r recordingCloser) Close() error {
	*r.order = append(*r.order, r.name)
	return r.err
}

func TestRunContextShutsDownInOrder(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	reg, err := registry.New()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	promReg := prometheus.NewRegistry()
	srv := xhttp.NewServer(nil,
		xhttp.WithHost("127.0.0.1"),
		xhttp.WithPort(0),
		xhttp.WithTimeouts(time.Second, time.Second, time.Second),
		xhttp.WithMetrics("", promReg, promReg),
	)
	ctrl := usecase.NewRequestController(reg, nopClient{})

	var order []string
	closeErr := errors.New("boom")
	app := New(cfg, applogger.Nop(), srv, ctrl, recordingCloser{name: "archive", order: &order})
	app.AddCloser("kafka", recordingCloser{name: "kafka", order: &order, err: closeErr})
	app.AddCloser("skipped", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = app.RunContext(ctx)
	if !errors.Is(err, closeErr) {
		t.Fatalf("RunContext error = %v, want closer error", err)
	}
	if len(order) != 2 || order[0] != "archive" || order[1] != "kafka" {
		t.Fatalf("close order = %v", order)
	}
	if _, err := ctrl.Submit(context.Background(), "bitcoin", "7d"); !errors.Is(err, usecase.ErrControllerClosed) {
		t.Fatalf("controller still open: %v", err)
	}
}
