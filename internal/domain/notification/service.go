package notification

import (
	"context"
	"log"

	"networth/internal/domain/user"
	"networth/internal/shared/messages"
)

// Service pushes sync lifecycle notifications to the user's device. All
// methods are best-effort and nil-safe: a nil *Service, a missing messenger,
// or a user without a registered device token are all silent no-ops, so
// callers never branch on whether push is configured.
type Service struct {
	messenger Messenger
	users     user.Repository
	texts     *messages.Messages
}

func NewService(messenger Messenger, users user.Repository, texts *messages.Messages) *Service {
	if texts == nil {
		texts = messages.Default()
	}
	return &Service{messenger: messenger, users: users, texts: texts}
}

// NotifySyncComplete tells the user their holdings import finished.
func (s *Service) NotifySyncComplete(ctx context.Context, userID string) {
	if s == nil {
		return
	}
	s.push(ctx, userID, s.texts.SyncComplete)
}

// NotifyLinkFailed tells the user their broker link attempt failed.
func (s *Service) NotifyLinkFailed(ctx context.Context, userID string) {
	if s == nil {
		return
	}
	s.push(ctx, userID, s.texts.LinkFailed)
}

func (s *Service) push(ctx context.Context, userID string, text messages.MessageText) {
	if s.messenger == nil || s.users == nil {
		return
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("Notification: failed to load user %s: %v", userID, err)
		return
	}
	if u.DeviceToken == nil || *u.DeviceToken == "" {
		return
	}

	if err := s.messenger.Send(ctx, *u.DeviceToken, text.Title, text.Body); err != nil {
		log.Printf("Notification: failed to push to user %s: %v", userID, err)
	}
}
