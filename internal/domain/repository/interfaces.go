package repository

import (
	"context"
	"errors"

	"CryptoCast/internal/domain/models"
)

// ErrOutcomeNotFound is returned by OutcomeReader when nothing was recorded yet.
var ErrOutcomeNotFound = errors.New("outcome not found")

// OutcomeArchive records completed prediction requests.
type OutcomeArchive interface {
	Record(ctx context.Context, o models.Outcome) error
	Close() error
}

// OutcomeReader serves the latest recorded outcome per asset and timeframe.
type OutcomeReader interface {
	Latest(ctx context.Context, assetID, timeframeID string) (models.Outcome, error)
}

// OutcomeHistory serves the recorded outcomes of one asset and timeframe,
// oldest first.
type OutcomeHistory interface {
	Recent(ctx context.Context, assetID, timeframeID string, n int) ([]models.Outcome, error)
}

type Metrics interface {
	RecordSubmission(asset, timeframe string)
	RecordOutcome(asset, kind string)
	RecordStale(asset string)
	RecordError(kind string)
	RecordLastPrice(asset string, price float64)
	RecordLatency(op string, seconds float64)
}
