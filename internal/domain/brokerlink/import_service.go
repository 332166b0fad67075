package brokerlink

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"networth/internal/domain/asset"
	"networth/internal/domain/notification"
	"networth/internal/infrastructure/snaptrade"
)

// InvestmentsCategorySlug is the category imported holdings are filed under.
// The category is seeded at deploy time; a missing row is a server
// misconfiguration, not a user error.
const InvestmentsCategorySlug = "investments"

// ImportResult summarizes one holdings import run.
type ImportResult struct {
	AccountID string `json:"accountId,omitempty"`
	Imported  int    `json:"imported"`
	Skipped   int    `json:"skipped"`
}

// ImportService finalizes broker links and imports holdings as asset rows.
type ImportService struct {
	api           snaptrade.API
	connections   Repository
	assets        asset.Repository
	categories    asset.CategoryRepository
	notifications *notification.Service
}

func NewImportService(
	api snaptrade.API,
	connections Repository,
	assets asset.Repository,
	categories asset.CategoryRepository,
	notifications *notification.Service,
) *ImportService {
	return &ImportService{
		api:           api,
		connections:   connections,
		assets:        assets,
		categories:    categories,
		notifications: notifications,
	}
}

// HandleCallback finalizes the link attempt the portal redirected back from:
// it confirms the attempt with the aggregator, files the active connection
// row, and imports the linked holdings. A new row is inserted rather than
// promoting the pending one; the pending row stays behind as an audit trail.
func (s *ImportService) HandleCallback(ctx context.Context, userID, code string) (*ImportResult, error) {
	result, err := s.api.HandleCallback(ctx, userID, code)
	if err != nil {
		s.notifications.NotifyLinkFailed(ctx, userID)
		return nil, err
	}
	if !result.Success {
		s.notifications.NotifyLinkFailed(ctx, userID)
		return nil, fmt.Errorf("broker link was not confirmed by the aggregator")
	}

	_, err = s.connections.Create(ctx, CreateParams{
		UserID:       userID,
		Broker:       DefaultBroker,
		AccountID:    result.AccountID,
		AccessToken:  CredentialManaged,
		RefreshToken: CredentialManaged,
		IsActive:     true,
	})
	if err != nil {
		s.notifications.NotifyLinkFailed(ctx, userID)
		return nil, fmt.Errorf("failed to record broker connection: %w", err)
	}

	imported, err := s.ImportHoldings(ctx, userID)
	if err != nil {
		s.notifications.NotifyLinkFailed(ctx, userID)
		return nil, err
	}

	imported.AccountID = result.AccountID
	s.notifications.NotifySyncComplete(ctx, userID)
	return imported, nil
}

// ImportHoldings fetches the user's current holdings from the aggregator and
// inserts one asset row per holding. Each run appends a fresh snapshot; rows
// from earlier runs are not reconciled. Per-holding insert failures are
// logged and skipped so one bad position cannot sink the rest.
func (s *ImportService) ImportHoldings(ctx context.Context, userID string) (*ImportResult, error) {
	holdings, err := s.api.FetchHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.GetBySlug(ctx, InvestmentsCategorySlug)
	if err != nil {
		return nil, fmt.Errorf("investments category is not seeded: %w", err)
	}

	result := &ImportResult{}
	for _, h := range holdings {
		params := holdingToAssetParams(userID, category.ID, h)
		if _, err := s.assets.Create(ctx, params); err != nil {
			log.Printf("Holdings import: failed to store %s for user %s, skipping: %v", h.Symbol, userID, err)
			result.Skipped++
			continue
		}
		result.Imported++
	}

	return result, nil
}

func holdingToAssetParams(userID string, categoryID int64, h snaptrade.Holding) asset.CreateParams {
	name := h.Name
	if name == "" {
		name = h.Symbol
	}

	description := h.Symbol
	if h.AccountName != "" {
		description = fmt.Sprintf("%s via %s", h.Symbol, h.AccountName)
	}

	metadata := map[string]string{
		"symbol":   h.Symbol,
		"quantity": strconv.FormatFloat(h.Quantity, 'f', -1, 64),
		"price":    strconv.FormatFloat(h.PricePerShare, 'f', -1, 64),
		"source":   "snaptrade",
	}
	if h.AccountID != "" {
		metadata["accountId"] = h.AccountID
	}
	if h.BrokerName != "" {
		metadata["broker"] = h.BrokerName
	}
	if h.Currency != "" {
		metadata["currency"] = h.Currency
	}

	params := asset.CreateParams{
		UserID:      userID,
		Name:        name,
		Value:       h.TotalValue,
		Description: description,
		CategoryID:  categoryID,
		Metadata:    metadata,
	}
	if h.PurchasePrice > 0 && h.Quantity > 0 {
		acquisition := h.PurchasePrice * h.Quantity
		params.AcquisitionValue = &acquisition
	}
	return params
}
