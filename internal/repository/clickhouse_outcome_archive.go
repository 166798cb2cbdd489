package repository

import (
	"context"
	"database/sql"
	"fmt"

	"CryptoCast/internal/domain/models"
	domrepo "CryptoCast/internal/domain/repository"
	applogger "CryptoCast/pkg/logger"
)

const outcomeTable = "prediction_outcomes"

var _ domrepo.OutcomeArchive = (*ClickHouseOutcomeArchive)(nil)

// Execer is satisfied by *sql.DB and pkg/clickhouse.Client.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ClickHouseOutcomeArchive appends every outcome to <database>.prediction_outcomes.
type ClickHouseOutcomeArchive struct {
	db    Execer
	table string
	l     *applogger.Logger
}

func NewClickHouseOutcomeArchive(db Execer, database string) *ClickHouseOutcomeArchive {
	return &ClickHouseOutcomeArchive{db: db, table: database + "." + outcomeTable}
}

// SetLogger injects a structured logger.
func (a *ClickHouseOutcomeArchive) SetLogger(l *applogger.Logger) { a.l = l }

// OutcomeSchema returns the idempotent DDL for the outcome table.
func OutcomeSchema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            completed_at DateTime64(3, 'UTC'),
            submission_id String,
            generation UInt64,
            asset_id LowCardinality(String),
            timeframe_id LowCardinality(String),
            kind LowCardinality(String),
            failure_kind LowCardinality(String),
            message String,
            target_price Float64,
            target_date String,
            last_historical Float64,
            percent_change Nullable(Float64),
            is_up Nullable(UInt8),
            latency_ms Int64
        ) ENGINE = MergeTree
        ORDER BY (asset_id, timeframe_id, completed_at)`, database, outcomeTable),
	}
}

func (a *ClickHouseOutcomeArchive) Record(ctx context.Context, o models.Outcome) error {
	q := fmt.Sprintf(`INSERT INTO %s (completed_at, submission_id, generation, asset_id, timeframe_id, kind,
        failure_kind, message, target_price, target_date, last_historical, percent_change, is_up, latency_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, a.table)

	var isUp *uint8
	if o.IsUp != nil {
		v := uint8(0)
		if *o.IsUp {
			v = 1
		}
		isUp = &v
	}

	_, err := a.db.ExecContext(ctx, q,
		o.CompletedAt.UTC(),
		o.SubmissionID,
		o.Generation,
		o.AssetID,
		o.TimeframeID,
		string(o.Kind),
		o.FailureKind,
		o.Message,
		o.TargetPrice,
		o.TargetDate,
		o.LastHistorical,
		o.PercentChange,
		isUp,
		o.LatencyMS,
	)
	if err != nil {
		if a.l != nil {
			a.l.Error("clickhouse insert outcome error",
				applogger.String("table", a.table),
				applogger.String("asset", o.AssetID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// Close is a no-op; the connection pool belongs to pkg/clickhouse.Client.
func (a *ClickHouseOutcomeArchive) Close() error {
	return nil
}
