package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CryptoCast/internal/domain/models"
	"CryptoCast/internal/registry"
	"CryptoCast/internal/repository"
	"CryptoCast/internal/service/ratelimit"
	"CryptoCast/internal/usecase"
	"CryptoCast/pkg/cache"
	xlogger "CryptoCast/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type stubClient struct {
	resp models.PredictionResponse
	err  error
}

func (s stubClient) Fetch(ctx context.Context, asset models.Asset, tf models.Timeframe) (models.PredictionResponse, error) {
	return s.resp, s.err
}

func upResponse() models.PredictionResponse {
	return models.PredictionResponse{
		Success: true,
		Result: &models.PredictionResult{
			ChartData: models.ChartData{
				Historical:  models.Series{Dates: []string{"2024-01-01", "2024-01-02"}, Prices: []float64{100, 101}},
				Predictions: models.Series{Dates: []string{"2024-01-03"}, Prices: []float64{105}},
			},
			Prediction: models.PredictionPoint{Price: 105, Date: "2024-01-03"},
		},
	}
}

type fixture struct {
	e          *echo.Echo
	controller *usecase.RequestController
	handler    *PredictionHandler
}

func newFixture(t *testing.T, client stubClient, limiter *ratelimit.Limiter) *fixture {
	t.Helper()
	reg, err := registry.New()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	mem := cache.NewMemoryCache()
	archive := repository.NewCacheOutcomeArchive(mem, time.Hour)
	ctrl := usecase.NewRequestController(reg, client, usecase.WithArchive(archive))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = ctrl.Close(ctx)
		_ = mem.Close()
	})

	e := echo.New()
	h := NewPredictionHandler(xlogger.Nop(), reg, ctrl, archive, limiter)
	h.RegisterRoutes(e)
	return &fixture{e: e, controller: ctrl, handler: h}
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestRegistriesEndpoints(t *testing.T) {
	f := newFixture(t, stubClient{resp: upResponse()}, nil)

	rec := f.do(http.MethodGet, "/api/assets", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"bitcoin"`) {
		t.Fatalf("assets: %d %s", rec.Code, rec.Body.String())
	}
	rec = f.do(http.MethodGet, "/api/timeframes", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"7d"`) {
		t.Fatalf("timeframes: %d %s", rec.Code, rec.Body.String())
	}
	rec = f.do(http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
}

func TestPredictAcceptedThenSuccessView(t *testing.T) {
	f := newFixture(t, stubClient{resp: upResponse()}, nil)

	rec := f.do(http.MethodPost, "/api/predict", `{"crypto":"bitcoin","timeframe":"7d"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("predict: %d %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		Data models.SubmitReceipt `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if accepted.Data.Generation != 1 || accepted.Data.SubmissionID == "" {
		t.Fatalf("unexpected receipt: %+v", accepted.Data)
	}

	eventually(t, func() bool { return f.controller.State().Kind == models.StateSuccess })

	rec = f.do(http.MethodGet, "/api/state", "")
	var got struct {
		Data models.StateView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if got.Data.View == nil || got.Data.View.Title != "Predicted Price for Bitcoin" {
		t.Fatalf("missing view: %s", rec.Body.String())
	}
	if got.Data.View.Trend == nil || !got.Data.View.Trend.IsUp {
		t.Fatalf("expected up trend: %+v", got.Data.View.Trend)
	}
	if n := len(got.Data.View.Dataset.Labels); n != 3 {
		t.Fatalf("labels = %d, want 3", n)
	}
}

func TestPredictDefaultsApply(t *testing.T) {
	f := newFixture(t, stubClient{resp: upResponse()}, nil)

	rec := f.do(http.MethodPost, "/api/predict", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("predict: %d %s", rec.Code, rec.Body.String())
	}
	st := f.controller.State()
	if st.AssetID != "bitcoin" || st.TimeframeID != "7d" {
		t.Fatalf("defaults not applied: %+v", st)
	}
}

func TestPredictUnknownAsset(t *testing.T) {
	f := newFixture(t, stubClient{resp: upResponse()}, nil)

	rec := f.do(http.MethodPost, "/api/predict", `{"crypto":"dogecoin","timeframe":"7d"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `unknown asset \"dogecoin\"`) {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if st := f.controller.State(); st.Kind != models.StateFailure {
		t.Fatalf("state = %s, want failure", st.Kind)
	}
}

func TestPredictValidation(t *testing.T) {
	f := newFixture(t, stubClient{resp: upResponse()}, nil)

	rec := f.do(http.MethodPost, "/api/predict", `{"crypto":"`+strings.Repeat("x", 40)+`"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "ERR_MAX") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"field":"crypto"`) {
		t.Fatalf("field should use the json name: %s", rec.Body.String())
	}
}

func TestPredictRateLimited(t *testing.T) {
	f := newFixture(t, stubClient{resp: upResponse()}, ratelimit.New(0.001, 1))

	if rec := f.do(http.MethodPost, "/api/predict", `{}`); rec.Code != http.StatusAccepted {
		t.Fatalf("first: %d", rec.Code)
	}
	rec := f.do(http.MethodPost, "/api/predict", `{}`)
	if rec.Code != http.StatusTooManyRequests || !strings.Contains(rec.Body.String(), "ERR_TOO_MANY_REQUESTS") {
		t.Fatalf("second: %d %s", rec.Code, rec.Body.String())
	}
}

func TestLatestOutcome(t *testing.T) {
	f := newFixture(t, stubClient{resp: upResponse()}, nil)

	if rec := f.do(http.MethodGet, "/api/outcomes/latest?crypto=bitcoin", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("before submit: %d %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(http.MethodGet, "/api/outcomes/latest", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing crypto: %d", rec.Code)
	}

	f.do(http.MethodPost, "/api/predict", `{"crypto":"bitcoin","timeframe":"7d"}`)

	var rec *httptest.ResponseRecorder
	eventually(t, func() bool {
		rec = f.do(http.MethodGet, "/api/outcomes/latest?crypto=bitcoin&timeframe=7d", "")
		return rec.Code == http.StatusOK
	})
	var got struct {
		Data models.Outcome `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Data.Kind != models.StateSuccess || got.Data.TargetPrice != 105 {
		t.Fatalf("unexpected outcome: %+v", got.Data)
	}
}

type fakeHistory struct {
	gotLimit int
}

func (f *fakeHistory) Recent(ctx context.Context, assetID, timeframeID string, n int) ([]models.Outcome, error) {
	f.gotLimit = n
	return []models.Outcome{{AssetID: assetID, TimeframeID: timeframeID, Kind: models.StateSuccess}}, nil
}

func TestOutcomeHistory(t *testing.T) {
	f := newFixture(t, stubClient{resp: upResponse()}, nil)

	if rec := f.do(http.MethodGet, "/api/outcomes/history?crypto=bitcoin", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("disabled history: %d", rec.Code)
	}

	hist := &fakeHistory{}
	f.handler.SetHistory(hist)

	rec := f.do(http.MethodGet, "/api/outcomes/history?crypto=ethereum&timeframe=30d", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"asset_id":"ethereum"`) {
		t.Fatalf("history: %d %s", rec.Code, rec.Body.String())
	}
	if hist.gotLimit != 20 {
		t.Fatalf("default limit = %d, want 20", hist.gotLimit)
	}
	if rec := f.do(http.MethodGet, "/api/outcomes/history?crypto=bitcoin&limit=1000", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("limit=1000: %d", rec.Code)
	}
}

func TestStateFeedStreamsStates(t *testing.T) {
	f := newFixture(t, stubClient{resp: upResponse()}, nil)
	srv := httptest.NewServer(f.e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/state", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	read := func() models.StateView {
		t.Helper()
		var v models.StateView
		if err := conn.ReadJSON(&v); err != nil {
			t.Fatalf("read: %v", err)
		}
		return v
	}

	if v := read(); v.State.Kind != models.StateIdle {
		t.Fatalf("first frame = %s, want idle", v.State.Kind)
	}

	if _, err := f.controller.Submit(context.Background(), "bitcoin", "7d"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if v := read(); v.State.Kind != models.StatePending {
		t.Fatalf("second frame = %s, want pending", v.State.Kind)
	}
	v := read()
	if v.State.Kind != models.StateSuccess || v.View == nil {
		t.Fatalf("third frame = %+v, want success with view", v.State)
	}
}
