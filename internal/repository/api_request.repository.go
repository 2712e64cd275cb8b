package repository

//go:generate mockgen -source=api_request.repository.go -destination=mocks/mock_api_request.repository.go

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stockforecast/internal/domain"

	"github.com/google/uuid"
)

type ApiRequestRepository interface {
	Add(ctx context.Context, ar domain.ApiRequest) (*domain.ApiRequest, error)
	Update(ctx context.Context, ar domain.ApiRequest) error
	List(ctx context.Context, limit int) ([]domain.ApiRequest, error)
}

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

const apiRequestSchema = `CREATE TABLE IF NOT EXISTS api_request (
	request_id TEXT PRIMARY KEY,
	method TEXT NOT NULL,
	route TEXT NOT NULL,
	ip_address TEXT,
	session_id TEXT,
	status_code INTEGER,
	duration_ms BIGINT,
	start_ts TIMESTAMP NOT NULL
)`

// NewApiRequestRepository creates the api_request table when missing.
// driver is the database/sql driver name db was opened with.
func NewApiRequestRepository(ctx context.Context, db *sql.DB, driver string) (ApiRequestRepository, error) {
	if driver != DriverPostgres && driver != DriverSqlite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if _, err := db.ExecContext(ctx, apiRequestSchema); err != nil {
		return nil, fmt.Errorf("failed to create api_request table: %w", err)
	}
	return apiRequestRepositoryHandler{
		Db:     db,
		Driver: driver,
	}, nil
}

type apiRequestRepositoryHandler struct {
	Db     *sql.DB
	Driver string
}

func (h apiRequestRepositoryHandler) rebind(query string) string {
	return rebindQuery(h.Driver, query)
}

// rebindQuery rewrites ? placeholders for drivers that want $n.
func rebindQuery(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	sb := strings.Builder{}
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (h apiRequestRepositoryHandler) Add(ctx context.Context, ar domain.ApiRequest) (*domain.ApiRequest, error) {
	if ar.RequestID == uuid.Nil {
		ar.RequestID = uuid.New()
	}
	if ar.StartTs.IsZero() {
		ar.StartTs = time.Now().UTC()
	}

	var sessionID sql.NullString
	if ar.SessionID != nil {
		sessionID = sql.NullString{String: ar.SessionID.String(), Valid: true}
	}

	query := h.rebind(`INSERT INTO api_request (request_id, method, route, ip_address, session_id, start_ts) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := h.Db.ExecContext(ctx, query,
		ar.RequestID.String(),
		ar.Method,
		ar.Route,
		ar.IpAddress,
		sessionID,
		ar.StartTs.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert API request: %w", err)
	}

	return &ar, nil
}

func (h apiRequestRepositoryHandler) Update(ctx context.Context, ar domain.ApiRequest) error {
	query := h.rebind(`UPDATE api_request SET status_code = ?, duration_ms = ? WHERE request_id = ?`)
	result, err := h.Db.ExecContext(ctx, query, ar.StatusCode, ar.DurationMs, ar.RequestID.String())
	if err != nil {
		return fmt.Errorf("failed to update API request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update API request: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to update API request: no request with id %s", ar.RequestID)
	}

	return nil
}

func (h apiRequestRepositoryHandler) List(ctx context.Context, limit int) ([]domain.ApiRequest, error) {
	query := h.rebind(`SELECT request_id, method, route, ip_address, session_id, status_code, duration_ms, start_ts
		FROM api_request ORDER BY start_ts DESC LIMIT ?`)
	rows, err := h.Db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list API requests: %w", err)
	}
	defer rows.Close()

	out := []domain.ApiRequest{}
	for rows.Next() {
		var (
			requestID  string
			ipAddress  sql.NullString
			sessionID  sql.NullString
			statusCode sql.NullInt64
			durationMs sql.NullInt64
			ar         domain.ApiRequest
		)
		if err := rows.Scan(&requestID, &ar.Method, &ar.Route, &ipAddress, &sessionID, &statusCode, &durationMs, &ar.StartTs); err != nil {
			return nil, fmt.Errorf("failed to scan API request: %w", err)
		}
		ar.RequestID, err = uuid.Parse(requestID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse request id %s: %w", requestID, err)
		}
		if sessionID.Valid {
			id, err := uuid.Parse(sessionID.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse session id %s: %w", sessionID.String, err)
			}
			ar.SessionID = &id
		}
		ar.IpAddress = ipAddress.String
		ar.StatusCode = int(statusCode.Int64)
		ar.DurationMs = durationMs.Int64
		out = append(out, ar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list API requests: %w", err)
	}

	return out, nil
}

// NewNoopApiRequestRepository is used when no database is configured.
func NewNoopApiRequestRepository() ApiRequestRepository {
	return noopApiRequestRepository{}
}

type noopApiRequestRepository struct{}

func (noopApiRequestRepository) Add(ctx context.Context, ar domain.ApiRequest) (*domain.ApiRequest, error) {
	if ar.RequestID == uuid.Nil {
		ar.RequestID = uuid.New()
	}
	return &ar, nil
}

func (noopApiRequestRepository) Update(ctx context.Context, ar domain.ApiRequest) error {
	return nil
}

func (noopApiRequestRepository) List(ctx context.Context, limit int) ([]domain.ApiRequest, error) {
	return []domain.ApiRequest{}, nil
}
