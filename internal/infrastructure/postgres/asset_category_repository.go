package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"networth/internal/domain/asset"
)

// AssetCategoryRepository implements the asset.CategoryRepository interface for PostgreSQL
type AssetCategoryRepository struct {
	db *DB
}

// NewAssetCategoryRepository creates a new PostgreSQL asset category repository
func NewAssetCategoryRepository(db *DB) *AssetCategoryRepository {
	return &AssetCategoryRepository{db: db}
}

// GetBySlug retrieves a category by its stable slug
func (r *AssetCategoryRepository) GetBySlug(ctx context.Context, slug string) (*asset.Category, error) {
	query := `SELECT id, slug, name FROM asset_categories WHERE slug = $1`

	var c asset.Category
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&c.ID, &c.Slug, &c.Name)
	if err == sql.ErrNoRows {
		return nil, asset.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset category: %w", err)
	}

	return &c, nil
}

// List retrieves all categories
func (r *AssetCategoryRepository) List(ctx context.Context) ([]*asset.Category, error) {
	query := `SELECT id, slug, name FROM asset_categories ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset categories: %w", err)
	}
	defer rows.Close()

	var categories []*asset.Category
	for rows.Next() {
		var c asset.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan asset category: %w", err)
		}
		categories = append(categories, &c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset categories: %w", err)
	}

	return categories, nil
}

// Upsert inserts a category or updates its display name by slug
func (r *AssetCategoryRepository) Upsert(ctx context.Context, slug, name string) (*asset.Category, error) {
	query := `
		INSERT INTO asset_categories (slug, name)
		VALUES ($1, $2)
		ON CONFLICT (slug)
		DO UPDATE SET name = EXCLUDED.name
		RETURNING id, slug, name
	`

	var c asset.Category
	err := r.db.QueryRowContext(ctx, query, slug, name).Scan(&c.ID, &c.Slug, &c.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert asset category: %w", err)
	}

	return &c, nil
}
