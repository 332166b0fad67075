package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"networth/internal/domain/asset"
)

// AssetRepository implements the asset.Repository interface for PostgreSQL
type AssetRepository struct {
	db *DB
}

// NewAssetRepository creates a new PostgreSQL asset repository
func NewAssetRepository(db *DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Create creates a new asset
func (r *AssetRepository) Create(ctx context.Context, params asset.CreateParams) (*asset.Asset, error) {
	query := `
		INSERT INTO assets (user_id, name, value, description, location, acquired_at, acquisition_value, category_id, is_liability, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, user_id, name, value, description, location, acquired_at, acquisition_value, category_id, is_liability, metadata, created_at, updated_at
	`

	metadata, err := marshalMetadata(params.Metadata)
	if err != nil {
		return nil, err
	}

	a, err := r.scanAsset(r.db.QueryRowContext(
		ctx, query,
		params.UserID, params.Name, params.Value,
		nullString(params.Description), nullString(params.Location),
		params.AcquiredAt, params.AcquisitionValue,
		params.CategoryID, params.IsLiability, metadata,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	return a, nil
}

// GetByID retrieves an asset by its ID
func (r *AssetRepository) GetByID(ctx context.Context, id int64) (*asset.Asset, error) {
	query := `
		SELECT id, user_id, name, value, description, location, acquired_at, acquisition_value, category_id, is_liability, metadata, created_at, updated_at
		FROM assets
		WHERE id = $1
	`

	a, err := r.scanAsset(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, asset.ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return a, nil
}

// ListByUserID retrieves all assets for a specific user
func (r *AssetRepository) ListByUserID(ctx context.Context, userID string) ([]*asset.Asset, error) {
	query := `
		SELECT id, user_id, name, value, description, location, acquired_at, acquisition_value, category_id, is_liability, metadata, created_at, updated_at
		FROM assets
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*asset.Asset
	for rows.Next() {
		a, err := r.scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return assets, nil
}

// Delete removes an asset
func (r *AssetRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM assets WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return asset.ErrAssetNotFound
	}

	return nil
}

func (r *AssetRepository) scanAsset(row rowScanner) (*asset.Asset, error) {
	var a asset.Asset
	var description, location sql.NullString
	var acquiredAt sql.NullTime
	var acquisitionValue sql.NullFloat64
	var metadata []byte

	err := row.Scan(
		&a.ID, &a.UserID, &a.Name, &a.Value,
		&description, &location, &acquiredAt, &acquisitionValue,
		&a.CategoryID, &a.IsLiability, &metadata,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		a.Description = description.String
	}
	if location.Valid {
		a.Location = location.String
	}
	if acquiredAt.Valid {
		t := acquiredAt.Time
		a.AcquiredAt = &t
	}
	if acquisitionValue.Valid {
		v := acquisitionValue.Float64
		a.AcquisitionValue = &v
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode asset metadata: %w", err)
		}
	}

	return &a, nil
}
