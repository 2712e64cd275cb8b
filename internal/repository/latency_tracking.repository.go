package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stockforecast/internal/domain"

	"github.com/google/uuid"
)

const latencyTrackingSchema = `CREATE TABLE IF NOT EXISTS latency_tracking (
	latency_tracking_id TEXT PRIMARY KEY,
	processing_times TEXT NOT NULL,
	request_id TEXT,
	session_id TEXT,
	total_ms BIGINT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

type LatencyTrackingRepository interface {
	Add(ctx context.Context, sessionID uuid.UUID, lt domain.PerformanceProfile, requestID *uuid.UUID) error
	CountForSession(ctx context.Context, sessionID uuid.UUID) (int, error)
}

type latencyTrackingRepositoryHandler struct {
	Db     *sql.DB
	Driver string
}

func NewLatencyTrackingRepository(ctx context.Context, db *sql.DB, driver string) (LatencyTrackingRepository, error) {
	if driver != DriverPostgres && driver != DriverSqlite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if _, err := db.ExecContext(ctx, latencyTrackingSchema); err != nil {
		return nil, fmt.Errorf("failed to create latency_tracking table: %w", err)
	}
	return latencyTrackingRepositoryHandler{
		Db:     db,
		Driver: driver,
	}, nil
}

func (h latencyTrackingRepositoryHandler) Add(ctx context.Context, sessionID uuid.UUID, lt domain.PerformanceProfile, requestID *uuid.UUID) error {
	bytes, err := lt.ToJsonBytes()
	if err != nil {
		return err
	}

	var reqID sql.NullString
	if requestID != nil {
		reqID = sql.NullString{String: requestID.String(), Valid: true}
	}

	query := rebindQuery(h.Driver, `INSERT INTO latency_tracking (latency_tracking_id, processing_times, request_id, session_id, total_ms, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err = h.Db.ExecContext(ctx, query,
		uuid.NewString(),
		string(bytes),
		reqID,
		sessionID.String(),
		lt.TotalMs,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert latency tracking: %w", err)
	}

	return nil
}

func (h latencyTrackingRepositoryHandler) CountForSession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	query := rebindQuery(h.Driver, `SELECT COUNT(*) FROM latency_tracking WHERE session_id = ?`)
	var n int
	if err := h.Db.QueryRowContext(ctx, query, sessionID.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count latency tracking rows: %w", err)
	}
	return n, nil
}
