package brokerlink

import (
	"context"
	"errors"
	"log"

	"networth/internal/infrastructure/snaptrade"
)

// LinkService starts broker link attempts: it asks the aggregator for a
// hosted portal URL and files a pending connection row for the attempt.
type LinkService struct {
	api         snaptrade.API
	connections Repository
}

func NewLinkService(api snaptrade.API, connections Repository) *LinkService {
	return &LinkService{api: api, connections: connections}
}

// CreateConnectionLink registers the user with the aggregator and returns the
// hosted portal URL the browser should be sent to. The pending connection row
// is best-effort: losing it costs nothing but a dangling audit record, so a
// failed insert is logged and the portal URL is returned anyway.
func (s *LinkService) CreateConnectionLink(ctx context.Context, userID, brokerID, callbackURL string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	if callbackURL == "" {
		return "", errors.New("callback url is required")
	}

	portalURL, err := s.api.RegisterAndLinkUser(ctx, userID, callbackURL, brokerID)
	if err != nil {
		return "", err
	}

	broker := brokerID
	if broker == "" {
		broker = DefaultBroker
	}

	_, err = s.connections.Create(ctx, CreateParams{
		UserID:       userID,
		Broker:       broker,
		AccessToken:  CredentialPending,
		RefreshToken: CredentialPending,
		IsActive:     false,
	})
	if err != nil {
		log.Printf("Broker link: failed to record pending connection for user %s: %v", userID, err)
	}

	return portalURL, nil
}
