package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront/internal/auth"
	"github.com/angelmondragon/storefront/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type stubAuthService struct {
	lastSession string
	lastLogin   auth.LoginRequest
	loggedOut   string
	err         error
}

func (s *stubAuthService) Login(ctx context.Context, sessionID string, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.lastSession = sessionID
	s.lastLogin = req
	if s.err != nil {
		return nil, s.err
	}
	return &auth.LoginResponse{Message: "Login successful", Customer: auth.CustomerDTO{ID: 9, Email: req.Email}}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, sessionID string) error {
	s.loggedOut = sessionID
	return s.err
}

func (s *stubAuthService) Me(ctx context.Context) (*auth.CustomerDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &auth.CustomerDTO{ID: 9}, nil
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.MessageResponse, error) {
	return &auth.MessageResponse{Message: "Registered"}, s.err
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, req auth.PasswordResetRequest) (*auth.MessageResponse, error) {
	return &auth.MessageResponse{Message: "sent"}, s.err
}

func (s *stubAuthService) ResetPassword(ctx context.Context, req auth.PasswordResetConfirm) (*auth.MessageResponse, error) {
	return &auth.MessageResponse{Message: "reset"}, s.err
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, code string) (*auth.MessageResponse, error) {
	return &auth.MessageResponse{Message: "verified " + code}, s.err
}

func withSession(req *http.Request, sid string) *http.Request {
	return req.WithContext(session.WithID(req.Context(), sid))
}

func TestAuthLoginUsesSession(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.co","password":"secret"}`))
	req = withSession(req, "sid-1")
	resp := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastSession != "sid-1" || svc.lastLogin.Email != "a@b.co" {
		t.Fatalf("unexpected login call %q %+v", svc.lastSession, svc.lastLogin)
	}
	if strings.Contains(resp.Body.String(), "token") {
		t.Fatalf("login response must not carry a token: %s", resp.Body.String())
	}
}

func TestAuthLoginValidatesBody(t *testing.T) {
	svc := &stubAuthService{}
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"nope","password":"x"}`)), "sid-1")
	resp := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
	if _, ok := envelope.Error.Details["email"]; !ok {
		t.Fatalf("expected email detail, got %+v", envelope.Error.Details)
	}
}

func TestAuthLoginRequiresSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.co","password":"secret"}`))
	resp := httptest.NewRecorder()

	AuthLogin(&stubAuthService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestAuthLogout(t *testing.T) {
	svc := &stubAuthService{}
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil), "sid-2")
	resp := httptest.NewRecorder()

	AuthLogout(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || svc.loggedOut != "sid-2" {
		t.Fatalf("expected logout of sid-2, got %d %q", resp.Code, svc.loggedOut)
	}
}

func TestAuthMeUnauthorized(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")}
	resp := httptest.NewRecorder()

	AuthMe(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRegisterCreated(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"full_name":"Rahim","email":"r@b.co","password":"secret12"}`))
	resp := httptest.NewRecorder()

	AuthRegister(&stubAuthService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAuthRegisterRejectsPasswordWithoutDigit(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"full_name":"Rahim","email":"r@b.co","password":"secretpass"}`))
	resp := httptest.NewRecorder()

	AuthRegister(&stubAuthService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthVerifyEmailRequiresCode(t *testing.T) {
	resp := httptest.NewRecorder()
	AuthVerifyEmail(&stubAuthService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	AuthVerifyEmail(&stubAuthService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify?code=abc", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "verified abc") {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Body.String())
	}
}
