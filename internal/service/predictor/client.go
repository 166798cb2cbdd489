package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"CryptoCast/internal/domain/models"
	"CryptoCast/internal/domain/service"
	xhttp "CryptoCast/pkg/http"
	"CryptoCast/pkg/logger"
)

const (
	DefaultPath    = "/predict"
	DefaultTimeout = 60 * time.Second
)

var _ service.PredictionClient = (*Client)(nil)

// Option configures Client.
type Option func(*Client)

// Client posts prediction requests to the per-asset services. It never retries.
type Client struct {
	path    string
	timeout time.Duration
	hc      *http.Client
	http    *xhttp.Client
	logger  *logger.Logger
}

// New builds a client with the default path and timeout.
func New(opts ...Option) *Client {
	c := &Client{
		path:    DefaultPath,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	httpOpts := []xhttp.ClientOption{xhttp.WithTimeout(c.timeout)}
	if c.hc != nil {
		httpOpts = append(httpOpts, xhttp.WithHTTPClient(c.hc))
	}
	c.http = xhttp.NewClient(httpOpts...)
	return c
}

// wireResponse keeps "success" nullable so a body without it is rejected.
type wireResponse struct {
	Success   *bool                    `json:"success"`
	Crypto    string                   `json:"crypto"`
	Timeframe string                   `json:"timeframe"`
	Result    *models.PredictionResult `json:"result"`
	Error     string                   `json:"error"`
}

// Fetch sends one POST to the asset's endpoint and classifies the answer.
// A non-nil error is either *TransportError or *ApplicationError.
func (c *Client) Fetch(ctx context.Context, asset models.Asset, tf models.Timeframe) (models.PredictionResponse, error) {
	url := asset.Endpoint.BaseURL() + c.path
	start := time.Now()

	var body []byte
	status := http.StatusOK
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    url,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		Body: models.PredictionRequest{Crypto: asset.ID, Timeframe: tf.ID},
	}, &body)
	if err != nil {
		var se *xhttp.StatusError
		if !errors.As(err, &se) {
			te := &TransportError{URL: url, Err: err}
			c.debug("prediction request failed", asset, tf, start, err, logger.Bool("timeout", te.Timeout()))
			return models.PredictionResponse{}, te
		}
		body, status = se.Body, se.Code
	}

	resp, err := decodeResponse(body)
	if err != nil {
		c.debug("prediction response unreadable", asset, tf, start, err)
		return models.PredictionResponse{}, &TransportError{URL: url, Status: status, Err: err}
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = DefaultFailureMessage
		}
		return resp, &ApplicationError{Message: msg, Status: status}
	}

	if status < 200 || status >= 300 {
		return models.PredictionResponse{}, &TransportError{URL: url, Status: status, Err: fmt.Errorf("success envelope with status %d", status)}
	}
	if resp.Result == nil {
		return models.PredictionResponse{}, &TransportError{URL: url, Status: status, Err: errors.New("success envelope without result")}
	}

	if c.logger != nil {
		c.logger.Debug("prediction received",
			logger.String("asset", asset.ID),
			logger.String("timeframe", tf.ID),
			logger.Int("historical", len(resp.Result.ChartData.Historical.Prices)),
			logger.Int("predicted", len(resp.Result.ChartData.Predictions.Prices)),
			logger.Duration("latency_ms", time.Since(start)),
		)
	}
	return resp, nil
}

func decodeResponse(body []byte) (models.PredictionResponse, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return models.PredictionResponse{}, errors.New("empty response body")
	}
	var w wireResponse
	if err := json.Unmarshal(body, &w); err != nil {
		return models.PredictionResponse{}, fmt.Errorf("decode json: %w", err)
	}
	if w.Success == nil {
		return models.PredictionResponse{}, errors.New("response has no success field")
	}
	return models.PredictionResponse{
		Success:   *w.Success,
		Crypto:    w.Crypto,
		Timeframe: w.Timeframe,
		Result:    w.Result,
		Error:     w.Error,
	}, nil
}

func (c *Client) debug(msg string, asset models.Asset, tf models.Timeframe, start time.Time, err error, extra ...logger.Field) {
	if c.logger == nil {
		return
	}
	fields := []logger.Field{
		logger.String("asset", asset.ID),
		logger.String("timeframe", tf.ID),
		logger.Duration("latency_ms", time.Since(start)),
		logger.Error(err),
	}
	c.logger.Debug(msg, append(fields, extra...)...)
}

// WithPath overrides the request path appended to each endpoint.
func WithPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.path = path
		}
	}
}

// WithTimeout bounds one request, connection and body included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}
