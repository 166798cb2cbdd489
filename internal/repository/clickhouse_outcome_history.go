package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"CryptoCast/internal/domain/models"
	domrepo "CryptoCast/internal/domain/repository"
	applogger "CryptoCast/pkg/logger"
)

var (
	_ domrepo.OutcomeReader  = (*ClickHouseOutcomeHistory)(nil)
	_ domrepo.OutcomeHistory = (*ClickHouseOutcomeHistory)(nil)
)

// Querier is satisfied by *sql.DB and pkg/clickhouse.Client.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ClickHouseOutcomeHistory reads archived outcomes back from
// <database>.prediction_outcomes.
type ClickHouseOutcomeHistory struct {
	db    Querier
	table string
	l     *applogger.Logger
}

func NewClickHouseOutcomeHistory(db Querier, database string) *ClickHouseOutcomeHistory {
	return &ClickHouseOutcomeHistory{db: db, table: database + "." + outcomeTable}
}

// SetLogger injects a structured logger.
func (s *ClickHouseOutcomeHistory) SetLogger(l *applogger.Logger) { s.l = l }

const outcomeColumns = `completed_at, submission_id, generation, asset_id, timeframe_id, kind,
        failure_kind, message, target_price, target_date, last_historical, percent_change, is_up, latency_ms`

// Latest returns the most recent outcome for the pair.
func (s *ClickHouseOutcomeHistory) Latest(ctx context.Context, assetID, timeframeID string) (models.Outcome, error) {
	out, err := s.Recent(ctx, assetID, timeframeID, 1)
	if err != nil {
		return models.Outcome{}, err
	}
	if len(out) == 0 {
		return models.Outcome{}, domrepo.ErrOutcomeNotFound
	}
	return out[len(out)-1], nil
}

// Recent returns up to n outcomes for the pair, oldest first.
func (s *ClickHouseOutcomeHistory) Recent(ctx context.Context, assetID, timeframeID string, n int) ([]models.Outcome, error) {
	if n <= 0 {
		return nil, errors.New("recent outcomes: limit must be positive")
	}
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s
        WHERE asset_id = ? AND timeframe_id = ?
        ORDER BY completed_at DESC
        LIMIT ?
    `, outcomeColumns, s.table)

	rows, err := s.db.QueryContext(ctx, q, assetID, timeframeID, n)
	if err != nil {
		s.logError("clickhouse recent_outcomes query error", assetID, timeframeID, err)
		return nil, fmt.Errorf("recent outcomes: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Outcome, 0, n)
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			s.logError("clickhouse recent_outcomes scan error", assetID, timeframeID, err)
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		tmp = append(tmp, o)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse recent_outcomes rows error", assetID, timeframeID, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Debug("clickhouse recent_outcomes ok",
			applogger.String("table", s.table),
			applogger.String("asset", assetID),
			applogger.String("timeframe", timeframeID),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func scanOutcome(rows *sql.Rows) (models.Outcome, error) {
	var (
		o    models.Outcome
		kind string
		pct  sql.NullFloat64
		isUp sql.NullInt16
	)
	if err := rows.Scan(
		&o.CompletedAt, &o.SubmissionID, &o.Generation, &o.AssetID, &o.TimeframeID, &kind,
		&o.FailureKind, &o.Message, &o.TargetPrice, &o.TargetDate, &o.LastHistorical, &pct, &isUp, &o.LatencyMS,
	); err != nil {
		return models.Outcome{}, err
	}
	o.Kind = models.StateKind(kind)
	if pct.Valid {
		v := pct.Float64
		o.PercentChange = &v
	}
	if isUp.Valid {
		v := isUp.Int16 == 1
		o.IsUp = &v
	}
	return o, nil
}

func (s *ClickHouseOutcomeHistory) logError(msg, assetID, timeframeID string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", s.table),
		applogger.String("asset", assetID),
		applogger.String("timeframe", timeframeID),
		applogger.Error(err),
	)
}
