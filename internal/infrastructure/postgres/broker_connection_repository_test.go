package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"networth/internal/domain/brokerlink"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &DB{db}, mock
}

func TestBrokerConnectionRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBrokerConnectionRepository(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO broker_connections").
		WithArgs("user-1", "snaptrade", nil, brokerlink.CredentialPending, brokerlink.CredentialPending, false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "broker", "account_id", "access_token", "refresh_token", "is_active", "metadata", "created_at", "updated_at",
		}).AddRow(1, "user-1", "snaptrade", nil, "pending", "pending", false, nil, now, now))

	conn, err := repo.Create(context.Background(), brokerlink.CreateParams{
		UserID:       "user-1",
		Broker:       "snaptrade",
		AccessToken:  brokerlink.CredentialPending,
		RefreshToken: brokerlink.CredentialPending,
		IsActive:     false,
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if conn.ID != 1 || conn.UserID != "user-1" || conn.IsActive {
		t.Errorf("Create() = %+v, want pending row for user-1", conn)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBrokerConnectionRepository_CreateActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBrokerConnectionRepository(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO broker_connections").
		WithArgs("user-1", "snaptrade", "acc-9", brokerlink.CredentialManaged, brokerlink.CredentialManaged, true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "broker", "account_id", "access_token", "refresh_token", "is_active", "metadata", "created_at", "updated_at",
		}).AddRow(2, "user-1", "snaptrade", "acc-9", "managed", "managed", true, nil, now, now))

	conn, err := repo.Create(context.Background(), brokerlink.CreateParams{
		UserID:       "user-1",
		Broker:       "snaptrade",
		AccountID:    "acc-9",
		AccessToken:  brokerlink.CredentialManaged,
		RefreshToken: brokerlink.CredentialManaged,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if !conn.IsActive || conn.AccountID != "acc-9" {
		t.Errorf("Create() = %+v, want active row for acc-9", conn)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBrokerConnectionRepository_ListByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBrokerConnectionRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM broker_connections").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "broker", "account_id", "access_token", "refresh_token", "is_active", "metadata", "created_at", "updated_at",
		}).
			AddRow(2, "user-1", "snaptrade", "acc-9", "managed", "managed", true, []byte(`{"source":"callback"}`), now, now).
			AddRow(1, "user-1", "snaptrade", nil, "pending", "pending", false, nil, now, now))

	connections, err := repo.ListByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUserID() unexpected error: %v", err)
	}

	// Both lifecycle rows of one link attempt come back
	if len(connections) != 2 {
		t.Fatalf("len(connections) = %d, want 2", len(connections))
	}
	if !connections[0].IsActive || connections[1].IsActive {
		t.Error("expected the active row first and the pending row second")
	}
	if connections[0].Metadata["source"] != "callback" {
		t.Errorf("metadata = %v, want decoded JSONB", connections[0].Metadata)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBrokerConnectionRepository_ListUserIDsWithActiveConnections(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBrokerConnectionRepository(db)

	mock.ExpectQuery("SELECT DISTINCT user_id").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-1").AddRow("user-2"))

	ids, err := repo.ListUserIDsWithActiveConnections(context.Background())
	if err != nil {
		t.Fatalf("ListUserIDsWithActiveConnections() unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "user-1" || ids[1] != "user-2" {
		t.Errorf("ids = %v, want [user-1 user-2]", ids)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
