package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"networth/internal/domain/brokerlink"
)

// BrokerConnectionRepository implements the brokerlink.Repository interface
// for PostgreSQL. Connection rows are append-only: linking produces a pending
// row and, later, a separate active row.
type BrokerConnectionRepository struct {
	db *DB
}

// NewBrokerConnectionRepository creates a new PostgreSQL broker connection repository
func NewBrokerConnectionRepository(db *DB) *BrokerConnectionRepository {
	return &BrokerConnectionRepository{db: db}
}

// Create inserts a new connection row
func (r *BrokerConnectionRepository) Create(ctx context.Context, params brokerlink.CreateParams) (*brokerlink.Connection, error) {
	query := `
		INSERT INTO broker_connections (user_id, broker, account_id, access_token, refresh_token, is_active, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, broker, account_id, access_token, refresh_token, is_active, metadata, created_at, updated_at
	`

	metadata, err := marshalMetadata(params.Metadata)
	if err != nil {
		return nil, err
	}

	conn, err := r.scanConnection(r.db.QueryRowContext(
		ctx, query,
		params.UserID, params.Broker, nullString(params.AccountID),
		params.AccessToken, params.RefreshToken, params.IsActive, metadata,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create broker connection: %w", err)
	}

	return conn, nil
}

// ListByUserID retrieves all connection rows for a specific user
func (r *BrokerConnectionRepository) ListByUserID(ctx context.Context, userID string) ([]*brokerlink.Connection, error) {
	query := `
		SELECT id, user_id, broker, account_id, access_token, refresh_token, is_active, metadata, created_at, updated_at
		FROM broker_connections
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list broker connections: %w", err)
	}
	defer rows.Close()

	var connections []*brokerlink.Connection
	for rows.Next() {
		conn, err := r.scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan broker connection: %w", err)
		}
		connections = append(connections, conn)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating broker connections: %w", err)
	}

	return connections, nil
}

// ListUserIDsWithActiveConnections retrieves the distinct user ids that have
// at least one active connection
func (r *BrokerConnectionRepository) ListUserIDsWithActiveConnections(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT user_id
		FROM broker_connections
		WHERE is_active = TRUE
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with active connections: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}

	return userIDs, nil
}

func (r *BrokerConnectionRepository) scanConnection(row rowScanner) (*brokerlink.Connection, error) {
	var conn brokerlink.Connection
	var accountID sql.NullString
	var metadata []byte

	err := row.Scan(
		&conn.ID, &conn.UserID, &conn.Broker, &accountID,
		&conn.AccessToken, &conn.RefreshToken, &conn.IsActive,
		&metadata, &conn.CreatedAt, &conn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		conn.AccountID = accountID.String
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &conn.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode connection metadata: %w", err)
		}
	}

	return &conn, nil
}

func marshalMetadata(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return data, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
