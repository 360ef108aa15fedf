package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"isl-backend/internal/middleware"
	"isl-backend/internal/models"
	"isl-backend/internal/services"
)

type stubAuthService struct {
	user        *models.User
	registerErr error
	updated     bool
	loggedOut   string
}

func (s *stubAuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, *models.AuthTokens, error) {
	if s.registerErr != nil {
		return nil, nil, s.registerErr
	}
	return &models.User{ID: uuid.New(), Email: req.Email, FullName: req.FullName}, &models.AuthTokens{AccessToken: "a", RefreshToken: "r"}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	if req.Password != "StrongPass123" {
		return nil, &services.UnauthorizedError{Message: "Invalid email or password"}
	}
	return &models.AuthTokens{AccessToken: "a", RefreshToken: "r"}, nil
}

func (s *stubAuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	return &models.AuthTokens{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, refreshToken string) error {
	s.loggedOut = refreshToken
	return nil
}

func (s *stubAuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != userID {
		return nil, &services.NotFoundError{Message: "User not found"}
	}
	return s.user, nil
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateUserRequest) (*models.User, error) {
	s.updated = true
	if req.Handedness != nil {
		s.user.Handedness = *req.Handedness
	}
	return s.user, nil
}

// ─── Auth Handler Tests ───

func TestRegisterHandler_ValidInput(t *testing.T) {
	body, _ := json.Marshal(map[string]string{
		"full_name": "Test User",
		"email":     "test@example.com",
		"password":  "StrongPass123",
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	NewAuthHandler(&stubAuthService{}).Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	var resp struct {
		User   models.User       `json:"user"`
		Tokens models.AuthTokens `json:"tokens"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.User.Email != "test@example.com" || resp.Tokens.AccessToken == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestRegisterHandler_ValidationFields(t *testing.T) {
	svc := &stubAuthService{registerErr: &services.ValidationError{Fields: map[string]string{"email": "Invalid email format"}}}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"email":"nope"}`))
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	middleware.RequestID(http.HandlerFunc(NewAuthHandler(svc).Register)).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	e := decodeError(t, rr)
	if e.Fields["email"] == "" || e.RequestID != "req-1" {
		t.Fatalf("unexpected error body %+v", e)
	}
}

func TestRegisterHandler_MalformedBody(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{`))
	NewAuthHandler(&stubAuthService{}).Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name     string
		password string
		status   int
	}{
		{"valid", "StrongPass123", http.StatusOK},
		{"wrong password", "nope", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{"email": "test@example.com", "password": tc.password})
			rr := httptest.NewRecorder()
			NewAuthHandler(&stubAuthService{}).Login(rr, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body)))
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	svc := &stubAuthService{}
	rr := httptest.NewRecorder()
	NewAuthHandler(svc).Logout(rr, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", strings.NewReader(`{"refresh_token":"tok"}`)))

	if rr.Code != http.StatusOK || svc.loggedOut != "tok" {
		t.Fatalf("expected logout of tok, got %d %q", rr.Code, svc.loggedOut)
	}
}

// ─── User Handler Tests ───

func TestGetMe(t *testing.T) {
	userID := uuid.New()
	svc := &stubAuthService{user: &models.User{ID: userID, Email: "alice@example.com"}}

	rr := httptest.NewRecorder()
	NewAuthHandler(svc).GetMe(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil), userID))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "password") {
		t.Fatalf("password hash must never be serialized")
	}

	rr = httptest.NewRecorder()
	NewAuthHandler(svc).GetMe(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil), uuid.New()))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestUpdateMe_UnknownField(t *testing.T) {
	userID := uuid.New()
	svc := &stubAuthService{user: &models.User{ID: userID}}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/user/me", strings.NewReader(`{"full_name":"Updated","unknown_field":true}`))
	NewAuthHandler(svc).UpdateMe(rr, withUser(req, userID))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if svc.updated {
		t.Fatalf("expected update not to be called")
	}
}

func TestUpdateMe_Handedness(t *testing.T) {
	userID := uuid.New()
	svc := &stubAuthService{user: &models.User{ID: userID, Handedness: models.HandednessRight}}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/user/me", strings.NewReader(`{"handedness":"LEFT"}`))
	NewAuthHandler(svc).UpdateMe(rr, withUser(req, userID))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"handedness":"LEFT"`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}
