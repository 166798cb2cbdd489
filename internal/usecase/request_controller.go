package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"CryptoCast/internal/domain/models"
	domrepo "CryptoCast/internal/domain/repository"
	domsvc "CryptoCast/internal/domain/service"
	"CryptoCast/internal/service/predictor"
	"CryptoCast/internal/services/chart"
	"CryptoCast/pkg/logger"

	"github.com/google/uuid"
)

// TransportFailureMessage is shown when the prediction service gave no usable answer.
const TransportFailureMessage = "Unable to reach the prediction service"

const (
	defaultArchiveTimeout = 5 * time.Second
	subscriberBuffer      = 64
)

// ErrControllerClosed is returned by Submit after Close.
var ErrControllerClosed = errors.New("request controller closed")

// Catalog resolves asset and timeframe ids. *registry.Registry implements it.
type Catalog interface {
	Asset(id string) (models.Asset, error)
	Timeframe(id string) (models.Timeframe, error)
}

// ControllerOption configures RequestController.
type ControllerOption func(*RequestController)

// RequestController owns the single prediction request state.
//
// Each Submit starts a new generation. A completion is applied only while
// its generation is still the newest one, so a slow superseded request can
// never overwrite the result of a later one.
type RequestController struct {
	catalog        Catalog
	client         domsvc.PredictionClient
	archive        domrepo.OutcomeArchive
	metrics        domrepo.Metrics
	logger         *logger.Logger
	archiveTimeout time.Duration
	now            func() time.Time

	mu      sync.Mutex
	gen     uint64
	state   models.RequestState
	subs    map[int]chan models.RequestState
	nextSub int
	closed  bool
	wg      sync.WaitGroup
}

// NewRequestController creates a controller in the Idle state.
func NewRequestController(catalog Catalog, client domsvc.PredictionClient, opts ...ControllerOption) *RequestController {
	c := &RequestController{
		catalog:        catalog,
		client:         client,
		metrics:        nopMetrics{},
		archiveTimeout: defaultArchiveTimeout,
		now:            time.Now,
		subs:           make(map[int]chan models.RequestState),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = models.IdleState(c.now())
	return c
}

// Submission tracks one accepted Submit call.
type Submission struct {
	ID          string
	Generation  uint64
	AssetID     string
	TimeframeID string

	done    chan struct{}
	applied bool
}

// Done is closed once the completion has been applied or discarded.
func (s *Submission) Done() <-chan struct{} { return s.done }

// Wait blocks until the submission completed or ctx ends.
func (s *Submission) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Applied reports whether the completion reached the state. Only
// meaningful after Done is closed; false means a newer submit superseded it.
func (s *Submission) Applied() bool {
	select {
	case <-s.done:
		return s.applied
	default:
		return false
	}
}

// Submit validates the ids, moves to Pending and fetches the prediction in
// the background. A Submit while Pending supersedes the running request
// without cancelling it.
func (c *RequestController) Submit(ctx context.Context, assetID, timeframeID string) (*Submission, error) {
	asset, verr := c.catalog.Asset(assetID)
	var tf models.Timeframe
	if verr == nil {
		tf, verr = c.catalog.Timeframe(timeframeID)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrControllerClosed
	}
	c.gen++
	ref := models.RequestRef{
		Generation:   c.gen,
		SubmissionID: uuid.NewString(),
		AssetID:      assetID,
		TimeframeID:  timeframeID,
	}

	if verr != nil {
		st := models.FailureState(ref, verr.Error(), c.now())
		c.apply(st)
		c.wg.Add(1)
		c.mu.Unlock()

		c.metrics.RecordError(models.FailureValidation)
		go func() {
			defer c.wg.Done()
			c.record(buildOutcome(st, models.FailureValidation, 0))
		}()
		return nil, verr
	}

	c.apply(models.PendingState(ref, c.now()))
	sub := &Submission{
		ID:          ref.SubmissionID,
		Generation:  ref.Generation,
		AssetID:     assetID,
		TimeframeID: timeframeID,
		done:        make(chan struct{}),
	}
	c.wg.Add(1)
	c.mu.Unlock()

	c.metrics.RecordSubmission(assetID, timeframeID)
	if c.logger != nil {
		c.logger.Info("prediction submitted",
			logger.String("submission_id", sub.ID),
			logger.Uint64("generation", sub.Generation),
			logger.String("asset", assetID),
			logger.String("timeframe", timeframeID),
		)
	}

	go c.run(context.WithoutCancel(ctx), ref, sub, asset, tf)
	return sub, nil
}

func (c *RequestController) run(ctx context.Context, ref models.RequestRef, sub *Submission, asset models.Asset, tf models.Timeframe) {
	defer c.wg.Done()
	defer close(sub.done)

	start := time.Now()
	resp, err := c.client.Fetch(ctx, asset, tf)
	latency := time.Since(start)
	c.metrics.RecordLatency("predict", latency.Seconds())

	st, failureKind := c.completion(ref, resp, err)

	c.mu.Lock()
	if ref.Generation != c.gen {
		c.mu.Unlock()
		c.metrics.RecordStale(asset.ID)
		if c.logger != nil {
			c.logger.Debug("stale prediction discarded",
				logger.String("submission_id", ref.SubmissionID),
				logger.Uint64("generation", ref.Generation),
				logger.String("asset", asset.ID),
			)
		}
		return
	}
	c.apply(st)
	sub.applied = true
	c.wg.Add(1)
	c.mu.Unlock()

	c.metrics.RecordOutcome(asset.ID, string(st.Kind))
	if failureKind != "" {
		c.metrics.RecordError(failureKind)
	} else if tgt, ok := resp.Target(); ok {
		c.metrics.RecordLastPrice(asset.ID, tgt.Price)
	}
	if c.logger != nil {
		fields := []logger.Field{
			logger.String("submission_id", ref.SubmissionID),
			logger.Uint64("generation", ref.Generation),
			logger.String("asset", asset.ID),
			logger.String("kind", string(st.Kind)),
			logger.Duration("latency_ms", latency),
		}
		if err != nil {
			c.logger.Warn("prediction failed", append(fields, logger.Error(err))...)
		} else {
			c.logger.Info("prediction applied", fields...)
		}
	}

	go func() {
		defer c.wg.Done()
		c.record(buildOutcome(st, failureKind, latency))
	}()
}

// completion maps a client result to the terminal state and failure kind.
func (c *RequestController) completion(ref models.RequestRef, resp models.PredictionResponse, err error) (models.RequestState, string) {
	now := c.now()
	var appErr *predictor.ApplicationError
	switch {
	case err == nil && resp.Success:
		return models.SuccessState(ref, resp, now), ""
	case err == nil:
		msg := resp.Error
		if msg == "" {
			msg = predictor.DefaultFailureMessage
		}
		return models.FailureState(ref, msg, now), models.FailureApplication
	case errors.As(err, &appErr):
		return models.FailureState(ref, appErr.Message, now), models.FailureApplication
	default:
		return models.FailureState(ref, TransportFailureMessage, now), models.FailureTransport
	}
}

// apply replaces the state and fans it out. Caller holds c.mu.
func (c *RequestController) apply(st models.RequestState) {
	c.state = st
	for _, ch := range c.subs {
		select {
		case ch <- st:
		default:
			// Drop the oldest pending state so the newest one always lands.
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}

func (c *RequestController) record(o models.Outcome) {
	if c.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.archiveTimeout)
	defer cancel()
	if err := c.archive.Record(ctx, o); err != nil {
		c.metrics.RecordError("archive")
		if c.logger != nil {
			c.logger.Warn("outcome archive failed",
				logger.String("submission_id", o.SubmissionID),
				logger.String("asset", o.AssetID),
				logger.Error(err),
			)
		}
	}
}

// State returns the current snapshot.
func (c *RequestController) State() models.RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe streams every applied state, starting with the current one.
// A subscriber that falls behind by more than the buffer loses the oldest
// queued states. The returned func unsubscribes and closes the channel.
func (c *RequestController) Subscribe() (<-chan models.RequestState, func()) {
	ch := make(chan models.RequestState, subscriberBuffer)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(ch)
			}
		})
	}
}

// Close stops accepting submissions and waits for in-flight fetches and
// archive writes, or for ctx to end. Subscriber channels are closed.
func (c *RequestController) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("close request controller: %w", ctx.Err())
	}

	c.mu.Lock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.mu.Unlock()
	return err
}

func buildOutcome(st models.RequestState, failureKind string, latency time.Duration) models.Outcome {
	o := models.Outcome{
		SubmissionID: st.SubmissionID,
		Generation:   st.Generation,
		AssetID:      st.AssetID,
		TimeframeID:  st.TimeframeID,
		Kind:         st.Kind,
		FailureKind:  failureKind,
		Message:      st.Message,
		LatencyMS:    latency.Milliseconds(),
		CompletedAt:  st.UpdatedAt,
	}
	if st.Response == nil {
		return o
	}
	if tgt, ok := st.Response.Target(); ok {
		o.TargetPrice = tgt.Price
		o.TargetDate = tgt.Date
	}
	if prices := st.Response.Historical().Prices; len(prices) > 0 {
		o.LastHistorical = prices[len(prices)-1]
	}
	if trend, ok := chart.Classify(*st.Response); ok {
		pct, up := trend.PercentChange, trend.IsUp
		o.PercentChange = &pct
		o.IsUp = &up
	}
	return o
}

func WithArchive(a domrepo.OutcomeArchive) ControllerOption {
	return func(c *RequestController) {
		c.archive = a
	}
}

func WithMetrics(m domrepo.Metrics) ControllerOption {
	return func(c *RequestController) {
		if m != nil {
			c.metrics = m
		}
	}
}

func WithLogger(l *logger.Logger) ControllerOption {
	return func(c *RequestController) {
		c.logger = l
	}
}

// WithArchiveTimeout bounds each archive write.
func WithArchiveTimeout(d time.Duration) ControllerOption {
	return func(c *RequestController) {
		if d > 0 {
			c.archiveTimeout = d
		}
	}
}

// WithClock overrides the timestamp source of state transitions.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *RequestController) {
		if now != nil {
			c.now = now
		}
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordSubmission(string, string) {}
func (nopMetrics) RecordOutcome(string, string)    {}
func (nopMetrics) RecordStale(string)              {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}
