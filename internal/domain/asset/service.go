package asset

import (
	"context"
	"errors"
)

// Service contains the business logic for asset operations
type Service struct {
	repo       Repository
	categories CategoryRepository
}

// NewService creates a new asset service
func NewService(repo Repository, categories CategoryRepository) *Service {
	return &Service{repo: repo, categories: categories}
}

// CreateAsset creates a new asset with business validation
func (s *Service) CreateAsset(ctx context.Context, params CreateParams) (*Asset, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, params)
}

// GetAsset retrieves an asset by ID and verifies user ownership
func (s *Service) GetAsset(ctx context.Context, assetID int64, userID string) (*Asset, error) {
	a, err := s.repo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	// Business rule: verify ownership
	if a.UserID != userID {
		return nil, ErrForbidden
	}

	return a, nil
}

// ListAssetsByUserID retrieves all assets for a specific user
func (s *Service) ListAssetsByUserID(ctx context.Context, userID string) ([]*Asset, error) {
	if userID == "" {
		return nil, errors.New("valid user ID is required")
	}

	return s.repo.ListByUserID(ctx, userID)
}

// DeleteAsset deletes an asset after verifying ownership
func (s *Service) DeleteAsset(ctx context.Context, assetID int64, userID string) error {
	if _, err := s.GetAsset(ctx, assetID, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, assetID)
}

// ListCategories retrieves all asset categories
func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.categories.List(ctx)
}

// GetCategoryBySlug retrieves a category by its stable slug
func (s *Service) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	if slug == "" {
		return nil, ErrCategoryNotFound
	}
	return s.categories.GetBySlug(ctx, slug)
}
