package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"networth/internal/domain/user"
	"networth/internal/shared/auth"
)

type MockUserRepository struct {
	CreateFunc            func(ctx context.Context, params user.CreateUserParams) (*user.User, error)
	GetByIDFunc           func(ctx context.Context, id string) (*user.User, error)
	GetByEmailFunc        func(ctx context.Context, email string) (*user.User, error)
	UpdateDeviceTokenFunc func(ctx context.Context, userID string, token *string) error
	ClearDeviceTokenFunc  func(ctx context.Context, token string) error
}

func (m *MockUserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, user.ErrUserNotFound
}

func (m *MockUserRepository) UpdateDeviceToken(ctx context.Context, userID string, token *string) error {
	if m.UpdateDeviceTokenFunc != nil {
		return m.UpdateDeviceTokenFunc(ctx, userID, token)
	}
	return nil
}

func (m *MockUserRepository) ClearDeviceToken(ctx context.Context, token string) error {
	if m.ClearDeviceTokenFunc != nil {
		return m.ClearDeviceTokenFunc(ctx, token)
	}
	return nil
}

func TestHandleRegister(t *testing.T) {
	jwt := auth.NewJWT("test-secret")

	t.Run("successful registration issues a session", func(t *testing.T) {
		var created user.CreateUserParams
		repo := &MockUserRepository{
			CreateFunc: func(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
				created = params
				return &user.User{ID: params.ID, Email: params.Email, Name: params.Name}, nil
			},
		}
		h := NewAuthHandler(repo, jwt)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"email":"  Alice@Example.COM ","name":"Alice","password":"s3cret-pass"}`))
		rec := httptest.NewRecorder()
		h.HandleRegister(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if created.Email != "alice@example.com" {
			t.Errorf("stored email = %q, want normalized lowercase", created.Email)
		}
		if created.PasswordHash == nil || *created.PasswordHash == "s3cret-pass" {
			t.Error("password must be stored hashed, never verbatim")
		}
		if created.ID == "" {
			t.Error("a user id must be minted at registration")
		}

		cookie := rec.Header().Get("Set-Cookie")
		if !strings.Contains(cookie, "access_token=") {
			t.Errorf("Set-Cookie = %q, want a session cookie", cookie)
		}
		if !strings.Contains(rec.Body.String(), `"token"`) {
			t.Errorf("body = %s, want a token field", rec.Body.String())
		}
	})

	t.Run("duplicate email is a 409", func(t *testing.T) {
		repo := &MockUserRepository{
			CreateFunc: func(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
				return nil, user.ErrEmailTaken
			},
		}
		h := NewAuthHandler(repo, jwt)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"email":"alice@example.com","password":"s3cret-pass"}`))
		rec := httptest.NewRecorder()
		h.HandleRegister(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})

	t.Run("invalid email is a 400", func(t *testing.T) {
		h := NewAuthHandler(&MockUserRepository{}, jwt)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"email":"not-an-email","password":"s3cret-pass"}`))
		rec := httptest.NewRecorder()
		h.HandleRegister(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("short password is a 400", func(t *testing.T) {
		calls := 0
		repo := &MockUserRepository{
			CreateFunc: func(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
				calls++
				return nil, nil
			},
		}
		h := NewAuthHandler(repo, jwt)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"email":"alice@example.com","password":"short"}`))
		rec := httptest.NewRecorder()
		h.HandleRegister(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		if calls != 0 {
			t.Error("user must not be created with a rejected password")
		}
	})
}

func TestHandleLogin(t *testing.T) {
	jwt := auth.NewJWT("test-secret")

	hash, err := auth.HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	stored := &user.User{ID: "user-1", Email: "alice@example.com", PasswordHash: &hash}

	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			if email == stored.Email {
				return stored, nil
			}
			return nil, user.ErrUserNotFound
		},
	}
	h := NewAuthHandler(repo, jwt)

	t.Run("valid credentials issue a session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"Alice@Example.com","password":"correct-password"}`))
		rec := httptest.NewRecorder()
		h.HandleLogin(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if !strings.Contains(rec.Header().Get("Set-Cookie"), "access_token=") {
			t.Error("login must set the session cookie")
		}
	})

	t.Run("wrong password is a 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`))
		rec := httptest.NewRecorder()
		h.HandleLogin(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("unknown email gets the same response as a wrong password", func(t *testing.T) {
		wrongPassword := httptest.NewRecorder()
		h.HandleLogin(wrongPassword, httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`)))

		unknownEmail := httptest.NewRecorder()
		h.HandleLogin(unknownEmail, httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"nobody@example.com","password":"correct-password"}`)))

		if wrongPassword.Code != unknownEmail.Code {
			t.Errorf("status codes differ: %d vs %d", wrongPassword.Code, unknownEmail.Code)
		}
		if wrongPassword.Body.String() != unknownEmail.Body.String() {
			t.Error("responses must not reveal whether the email exists")
		}
	})
}

func TestHandleDeviceToken(t *testing.T) {
	jwt := auth.NewJWT("test-secret")

	t.Run("stores the token for the session user", func(t *testing.T) {
		var gotUserID string
		var gotToken *string
		repo := &MockUserRepository{
			UpdateDeviceTokenFunc: func(ctx context.Context, userID string, token *string) error {
				gotUserID = userID
				gotToken = token
				return nil
			},
		}
		h := NewAuthHandler(repo, jwt)

		req := authedRequest(http.MethodPut, "/api/users/device-token", `{"token":"fcm-abc"}`, "user-1")
		rec := httptest.NewRecorder()
		h.HandleDeviceToken(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}
		if gotUserID != "user-1" {
			t.Errorf("user id = %q, want the session user", gotUserID)
		}
		if gotToken == nil || *gotToken != "fcm-abc" {
			t.Errorf("token = %v, want fcm-abc", gotToken)
		}
	})

	t.Run("null token clears the registration", func(t *testing.T) {
		var gotToken *string
		cleared := false
		repo := &MockUserRepository{
			UpdateDeviceTokenFunc: func(ctx context.Context, userID string, token *string) error {
				gotToken = token
				cleared = true
				return nil
			},
		}
		h := NewAuthHandler(repo, jwt)

		req := authedRequest(http.MethodPut, "/api/users/device-token", `{"token":null}`, "user-1")
		rec := httptest.NewRecorder()
		h.HandleDeviceToken(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}
		if !cleared || gotToken != nil {
			t.Errorf("token = %v, want nil to clear the registration", gotToken)
		}
	})
}
