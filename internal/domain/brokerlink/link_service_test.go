package brokerlink

import (
	"context"
	"errors"
	"testing"

	"networth/internal/infrastructure/snaptrade"
)

// MockAPI is a mock implementation of the snaptrade.API interface
type MockAPI struct {
	RegisterAndLinkUserFunc func(ctx context.Context, userID, redirectURI, brokerID string) (string, error)
	FetchHoldingsFunc       func(ctx context.Context, userID string) ([]snaptrade.Holding, error)
	HandleCallbackFunc      func(ctx context.Context, userID, code string) (*snaptrade.CallbackResult, error)
}

func (m *MockAPI) RegisterAndLinkUser(ctx context.Context, userID, redirectURI, brokerID string) (string, error) {
	if m.RegisterAndLinkUserFunc != nil {
		return m.RegisterAndLinkUserFunc(ctx, userID, redirectURI, brokerID)
	}
	return "", nil
}

func (m *MockAPI) FetchHoldings(ctx context.Context, userID string) ([]snaptrade.Holding, error) {
	if m.FetchHoldingsFunc != nil {
		return m.FetchHoldingsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockAPI) HandleCallback(ctx context.Context, userID, code string) (*snaptrade.CallbackResult, error) {
	if m.HandleCallbackFunc != nil {
		return m.HandleCallbackFunc(ctx, userID, code)
	}
	return nil, nil
}

// MockConnectionRepository is a mock implementation of Repository interface
type MockConnectionRepository struct {
	CreateFunc                           func(ctx context.Context, params CreateParams) (*Connection, error)
	ListByUserIDFunc                     func(ctx context.Context, userID string) ([]*Connection, error)
	ListUserIDsWithActiveConnectionsFunc func(ctx context.Context) ([]string, error)
}

func (m *MockConnectionRepository) Create(ctx context.Context, params CreateParams) (*Connection, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &Connection{ID: 1}, nil
}

func (m *MockConnectionRepository) ListByUserID(ctx context.Context, userID string) ([]*Connection, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockConnectionRepository) ListUserIDsWithActiveConnections(ctx context.Context) ([]string, error) {
	if m.ListUserIDsWithActiveConnectionsFunc != nil {
		return m.ListUserIDsWithActiveConnectionsFunc(ctx)
	}
	return nil, nil
}

func TestCreateConnectionLink(t *testing.T) {
	ctx := context.Background()

	t.Run("returns portal url and records pending connection", func(t *testing.T) {
		var recorded *CreateParams
		api := &MockAPI{
			RegisterAndLinkUserFunc: func(ctx context.Context, userID, redirectURI, brokerID string) (string, error) {
				if redirectURI != "https://networth.test/api/broker/callback" {
					t.Errorf("redirectURI = %q, want the callback url", redirectURI)
				}
				return "https://app.snaptrade.test/portal/abc", nil
			},
		}
		repo := &MockConnectionRepository{
			CreateFunc: func(ctx context.Context, params CreateParams) (*Connection, error) {
				recorded = &params
				return &Connection{ID: 1}, nil
			},
		}

		svc := NewLinkService(api, repo)
		got, err := svc.CreateConnectionLink(ctx, "user-1", "", "https://networth.test/api/broker/callback")
		if err != nil {
			t.Fatalf("CreateConnectionLink() unexpected error: %v", err)
		}
		if got != "https://app.snaptrade.test/portal/abc" {
			t.Errorf("CreateConnectionLink() = %q, want portal url", got)
		}

		if recorded == nil {
			t.Fatal("pending connection was not recorded")
		}
		if recorded.IsActive {
			t.Error("pending connection recorded as active")
		}
		if recorded.Broker != DefaultBroker {
			t.Errorf("pending connection broker = %q, want %q", recorded.Broker, DefaultBroker)
		}
		if recorded.AccessToken != CredentialPending || recorded.RefreshToken != CredentialPending {
			t.Error("pending connection must carry the pending credential sentinel")
		}
	})

	t.Run("records the selected broker", func(t *testing.T) {
		var recorded *CreateParams
		api := &MockAPI{
			RegisterAndLinkUserFunc: func(ctx context.Context, userID, redirectURI, brokerID string) (string, error) {
				if brokerID != "ALPACA" {
					t.Errorf("brokerID = %q, want ALPACA", brokerID)
				}
				return "https://portal", nil
			},
		}
		repo := &MockConnectionRepository{
			CreateFunc: func(ctx context.Context, params CreateParams) (*Connection, error) {
				recorded = &params
				return &Connection{ID: 1}, nil
			},
		}

		svc := NewLinkService(api, repo)
		if _, err := svc.CreateConnectionLink(ctx, "user-1", "ALPACA", "https://cb"); err != nil {
			t.Fatalf("CreateConnectionLink() unexpected error: %v", err)
		}
		if recorded == nil || recorded.Broker != "ALPACA" {
			t.Errorf("recorded broker = %v, want ALPACA", recorded)
		}
	})

	t.Run("pending insert failure does not block the link", func(t *testing.T) {
		api := &MockAPI{
			RegisterAndLinkUserFunc: func(ctx context.Context, userID, redirectURI, brokerID string) (string, error) {
				return "https://portal", nil
			},
		}
		repo := &MockConnectionRepository{
			CreateFunc: func(ctx context.Context, params CreateParams) (*Connection, error) {
				return nil, errors.New("connection refused")
			},
		}

		svc := NewLinkService(api, repo)
		got, err := svc.CreateConnectionLink(ctx, "user-1", "", "https://cb")
		if err != nil {
			t.Fatalf("CreateConnectionLink() unexpected error: %v", err)
		}
		if got != "https://portal" {
			t.Errorf("CreateConnectionLink() = %q, want portal url despite insert failure", got)
		}
	})

	t.Run("aggregator failure propagates and nothing is recorded", func(t *testing.T) {
		api := &MockAPI{
			RegisterAndLinkUserFunc: func(ctx context.Context, userID, redirectURI, brokerID string) (string, error) {
				return "", snaptrade.ErrMissingCredentials
			},
		}
		repo := &MockConnectionRepository{
			CreateFunc: func(ctx context.Context, params CreateParams) (*Connection, error) {
				t.Error("no connection row must be recorded when the aggregator call fails")
				return nil, nil
			},
		}

		svc := NewLinkService(api, repo)
		if _, err := svc.CreateConnectionLink(ctx, "user-1", "", "https://cb"); !errors.Is(err, snaptrade.ErrMissingCredentials) {
			t.Errorf("CreateConnectionLink() error = %v, want ErrMissingCredentials", err)
		}
	})

	t.Run("rejects empty user id", func(t *testing.T) {
		svc := NewLinkService(&MockAPI{}, &MockConnectionRepository{})
		if _, err := svc.CreateConnectionLink(ctx, "", "", "https://cb"); err == nil {
			t.Error("CreateConnectionLink() with empty user id expected error")
		}
	})
}
