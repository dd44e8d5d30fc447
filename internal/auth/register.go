package auth

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront/pkg/storefront"
)

// Register creates a customer account. Verification happens by email.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	message, err := s.accounts.Register(ctx, storefront.RegisterRequest{
		FullName:          strings.TrimSpace(req.FullName),
		Email:             strings.TrimSpace(req.Email),
		Password:          req.Password,
		TurnstileResponse: strings.TrimSpace(req.TurnstileToken),
	})
	if err != nil {
		return nil, err
	}
	return &MessageResponse{Message: message}, nil
}

func (s *service) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) (*MessageResponse, error) {
	message, err := s.accounts.RequestPasswordReset(ctx, strings.TrimSpace(req.Email), strings.TrimSpace(req.TurnstileToken))
	if err != nil {
		return nil, err
	}
	return &MessageResponse{Message: message}, nil
}

func (s *service) ResetPassword(ctx context.Context, req PasswordResetConfirm) (*MessageResponse, error) {
	message, err := s.accounts.ResetPassword(ctx, strings.TrimSpace(req.Code), req.Password, strings.TrimSpace(req.TurnstileToken))
	if err != nil {
		return nil, err
	}
	return &MessageResponse{Message: message}, nil
}

func (s *service) VerifyEmail(ctx context.Context, code string) (*MessageResponse, error) {
	message, err := s.accounts.VerifyEmail(ctx, code)
	if err != nil {
		return nil, err
	}
	return &MessageResponse{Message: message}, nil
}
