package asset

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrAssetNotFound    = errors.New("asset not found")
	ErrCategoryNotFound = errors.New("asset category not found")
	ErrForbidden        = errors.New("access forbidden")
	ErrInvalidInput     = errors.New("invalid input")
)

// Asset is one tracked item of the user's net worth: a manually entered
// possession or a holding imported from a linked brokerage account.
type Asset struct {
	ID               int64             `json:"id"`
	UserID           string            `json:"userId"`
	Name             string            `json:"name"`
	Value            float64           `json:"value"`
	Description      string            `json:"description,omitempty"`
	Location         string            `json:"location,omitempty"`
	AcquiredAt       *time.Time        `json:"acquiredAt,omitempty"`
	AcquisitionValue *float64          `json:"acquisitionValue,omitempty"`
	CategoryID       int64             `json:"categoryId"`
	IsLiability      bool              `json:"isLiability"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// Category groups assets on the dashboard (real estate, vehicles,
// investments, ...). Slugs are stable; display names are not.
type Category struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type CreateParams struct {
	UserID           string
	Name             string
	Value            float64
	Description      string
	Location         string
	AcquiredAt       *time.Time
	AcquisitionValue *float64
	CategoryID       int64
	IsLiability      bool
	Metadata         map[string]string
}

// Validate checks the parameters for a new asset.
func (p CreateParams) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("asset name is required")
	}
	if p.UserID == "" {
		return errors.New("user id is required")
	}
	if p.CategoryID == 0 {
		return errors.New("category is required")
	}
	return nil
}
