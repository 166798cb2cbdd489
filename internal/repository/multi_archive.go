package repository

import (
	"context"
	"errors"
	"sync"

	"CryptoCast/internal/domain/models"
	domrepo "CryptoCast/internal/domain/repository"
)

var _ domrepo.OutcomeArchive = (*MultiArchive)(nil)

// MultiArchive records each outcome into every sink concurrently.
// One failing sink does not stop the others.
type MultiArchive struct {
	sinks []domrepo.OutcomeArchive
}

func NewMultiArchive(sinks ...domrepo.OutcomeArchive) *MultiArchive {
	out := make([]domrepo.OutcomeArchive, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiArchive{sinks: out}
}

// Len returns the number of configured sinks.
func (m *MultiArchive) Len() int { return len(m.sinks) }

func (m *MultiArchive) Record(ctx context.Context, o models.Outcome) error {
	if len(m.sinks) == 1 {
		return m.sinks[0].Record(ctx, o)
	}
	errs := make([]error, len(m.sinks))
	var wg sync.WaitGroup
	for i, s := range m.sinks {
		wg.Add(1)
		go func(i int, s domrepo.OutcomeArchive) {
			defer wg.Done()
			errs[i] = s.Record(ctx, o)
		}(i, s)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (m *MultiArchive) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
