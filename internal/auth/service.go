package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/storefront"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, sessionID string, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context) (*CustomerDTO, error)
	Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error)
	RequestPasswordReset(ctx context.Context, req PasswordResetRequest) (*MessageResponse, error)
	ResetPassword(ctx context.Context, req PasswordResetConfirm) (*MessageResponse, error)
	VerifyEmail(ctx context.Context, code string) (*MessageResponse, error)
}

type accountClient interface {
	Login(ctx context.Context, req storefront.LoginRequest) (*storefront.LoginResult, error)
	Register(ctx context.Context, req storefront.RegisterRequest) (string, error)
	RequestPasswordReset(ctx context.Context, email, turnstileResponse string) (string, error)
	ResetPassword(ctx context.Context, code, password, turnstileResponse string) (string, error)
	VerifyEmail(ctx context.Context, code string) (string, error)
}

type sessionManager interface {
	Attach(ctx context.Context, sessionID string, creds session.Credentials) error
	Detach(ctx context.Context, sessionID string) error
}

type service struct {
	accounts accountClient
	sessions sessionManager
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Accounts       accountClient
	SessionManager sessionManager
	Logger         *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("account client is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		accounts: params.Accounts,
		sessions: params.SessionManager,
		logg:     params.Logger,
	}, nil
}

// Login exchanges credentials upstream and attaches the resulting token to
// the visitor session. The cart is left untouched.
func (s *service) Login(ctx context.Context, sessionID string, req LoginRequest) (*LoginResponse, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	result, err := s.accounts.Login(ctx, storefront.LoginRequest{
		Email:             strings.TrimSpace(req.Email),
		Password:          req.Password,
		TurnstileResponse: strings.TrimSpace(req.TurnstileToken),
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Attach(ctx, sessionID, session.Credentials{
		AccessToken: result.Token,
		Customer:    result.Customer,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach session credentials")
	}
	s.logg.Info(s.logg.WithField(ctx, "customer_id", result.Customer.ID), "auth.login")

	return &LoginResponse{Message: result.Message, Customer: toCustomerDTO(result.Customer)}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.sessions.Detach(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach session credentials")
	}
	return nil
}

// Me returns the customer attached to the request's session.
func (s *service) Me(ctx context.Context) (*CustomerDTO, error) {
	creds := session.CredentialsFromContext(ctx)
	if creds == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not logged in")
	}
	dto := toCustomerDTO(creds.Customer)
	return &dto, nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "visitor session required")
	}
	return nil
}
