package asset

import "context"

// Repository defines the interface for asset data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create creates a new asset
	Create(ctx context.Context, params CreateParams) (*Asset, error)

	// GetByID retrieves an asset by its ID
	GetByID(ctx context.Context, id int64) (*Asset, error)

	// ListByUserID retrieves all assets for a specific user
	ListByUserID(ctx context.Context, userID string) ([]*Asset, error)

	// Delete removes an asset
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository defines the interface for asset category lookups
type CategoryRepository interface {
	// GetBySlug retrieves a category by its stable slug
	GetBySlug(ctx context.Context, slug string) (*Category, error)

	// List retrieves all categories
	List(ctx context.Context) ([]*Category, error)

	// Upsert inserts a category or updates its display name by slug
	Upsert(ctx context.Context, slug, name string) (*Category, error)
}
