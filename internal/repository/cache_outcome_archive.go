package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CryptoCast/internal/domain/models"
	domrepo "CryptoCast/internal/domain/repository"
	"CryptoCast/pkg/cache"
)

const outcomeKeyPrefix = "outcome"

var (
	_ domrepo.OutcomeArchive = (*CacheOutcomeArchive)(nil)
	_ domrepo.OutcomeReader  = (*CacheOutcomeArchive)(nil)
)

// CacheOutcomeArchive keeps the latest outcome per asset and timeframe in a
// cache.Service (Redis or in-memory).
type CacheOutcomeArchive struct {
	cache cache.Service
	ttl   time.Duration
}

// NewCacheOutcomeArchive stores outcomes for ttl; zero keeps the cache default.
func NewCacheOutcomeArchive(c cache.Service, ttl time.Duration) *CacheOutcomeArchive {
	return &CacheOutcomeArchive{cache: c, ttl: ttl}
}

func outcomeKey(assetID, timeframeID string) string {
	return cache.GenerateKeyWithParams(outcomeKeyPrefix, assetID, timeframeID)
}

func (a *CacheOutcomeArchive) Record(ctx context.Context, o models.Outcome) error {
	if err := a.cache.Set(ctx, outcomeKey(o.AssetID, o.TimeframeID), o, a.ttl); err != nil {
		return fmt.Errorf("cache outcome: %w", err)
	}
	return nil
}

func (a *CacheOutcomeArchive) Latest(ctx context.Context, assetID, timeframeID string) (models.Outcome, error) {
	var o models.Outcome
	if err := a.cache.Get(ctx, outcomeKey(assetID, timeframeID), &o); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.Outcome{}, domrepo.ErrOutcomeNotFound
		}
		return models.Outcome{}, fmt.Errorf("read outcome: %w", err)
	}
	return o, nil
}

func (a *CacheOutcomeArchive) Close() error {
	return a.cache.Close()
}
