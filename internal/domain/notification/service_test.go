package notification

import (
	"context"
	"errors"
	"testing"

	"networth/internal/domain/user"
)

type MockMessenger struct {
	SendFunc func(ctx context.Context, deviceToken, title, body string) error
}

func (m *MockMessenger) Send(ctx context.Context, deviceToken, title, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, deviceToken, title, body)
	}
	return nil
}

type MockUserRepository struct {
	GetByIDFunc func(ctx context.Context, id string) (*user.User, error)
}

func (m *MockUserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	return nil, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (m *MockUserRepository) UpdateDeviceToken(ctx context.Context, userID string, token *string) error {
	return nil
}

func (m *MockUserRepository) ClearDeviceToken(ctx context.Context, token string) error {
	return nil
}

func TestNotifySyncComplete(t *testing.T) {
	token := "fcm-token"

	t.Run("pushes to the registered device", func(t *testing.T) {
		var gotToken, gotTitle string
		messenger := &MockMessenger{
			SendFunc: func(ctx context.Context, deviceToken, title, body string) error {
				gotToken = deviceToken
				gotTitle = title
				return nil
			},
		}
		users := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*user.User, error) {
				return &user.User{ID: id, DeviceToken: &token}, nil
			},
		}

		s := NewService(messenger, users, nil)
		s.NotifySyncComplete(context.Background(), "user-1")

		if gotToken != token {
			t.Errorf("device token = %q, want %q", gotToken, token)
		}
		if gotTitle == "" {
			t.Error("notification title must not be empty")
		}
	})

	t.Run("no device token is a silent no-op", func(t *testing.T) {
		sent := 0
		messenger := &MockMessenger{
			SendFunc: func(ctx context.Context, deviceToken, title, body string) error {
				sent++
				return nil
			},
		}
		users := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*user.User, error) {
				return &user.User{ID: id}, nil
			},
		}

		s := NewService(messenger, users, nil)
		s.NotifySyncComplete(context.Background(), "user-1")

		if sent != 0 {
			t.Errorf("sends = %d, want 0 without a registered device", sent)
		}
	})

	t.Run("nil service is safe", func(t *testing.T) {
		var s *Service
		s.NotifySyncComplete(context.Background(), "user-1")
		s.NotifyLinkFailed(context.Background(), "user-1")
	})

	t.Run("messenger failure does not propagate", func(t *testing.T) {
		messenger := &MockMessenger{
			SendFunc: func(ctx context.Context, deviceToken, title, body string) error {
				return errors.New("fcm unavailable")
			},
		}
		users := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*user.User, error) {
				return &user.User{ID: id, DeviceToken: &token}, nil
			},
		}

		s := NewService(messenger, users, nil)
		s.NotifyLinkFailed(context.Background(), "user-1")
	})
}
