package storefront

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// Login exchanges credentials for a backend access token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	resp, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/storefront-auth/login",
		endpoint: "auth.login",
		body:     req,
	})
	if err != nil {
		return nil, err
	}
	result := &LoginResult{Token: strings.TrimSpace(resp.env.Token), Message: resp.env.message()}
	if _, err := resp.decode(&result.Customer); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login did not return a token")
	}
	return result, nil
}

// Register creates an account and returns the backend's message.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	resp, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/storefront-auth/register",
		endpoint: "auth.register",
		body:     req,
	})
	if err != nil {
		return "", err
	}
	return resp.env.message(), nil
}

// RequestPasswordReset asks the backend to email a reset code.
func (c *Client) RequestPasswordReset(ctx context.Context, email, turnstileResponse string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	resp, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/storefront-auth/passwordreset/" + url.PathEscape(trimmed),
		endpoint: "auth.password_reset_request",
		body: map[string]string{
			"cf-turnstile-response": turnstileResponse,
		},
	})
	if err != nil {
		return "", err
	}
	return resp.env.message(), nil
}

// ResetPassword sets a new password using the emailed code.
func (c *Client) ResetPassword(ctx context.Context, code, password, turnstileResponse string) (string, error) {
	resp, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/storefront-auth/passwordreset",
		endpoint: "auth.password_reset",
		body: map[string]string{
			"Code":                  code,
			"Password":              password,
			"cf-turnstile-response": turnstileResponse,
		},
	})
	if err != nil {
		return "", err
	}
	return resp.env.message(), nil
}

// VerifyEmail confirms an account using the code from the verification email.
func (c *Client) VerifyEmail(ctx context.Context, code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "verification code is required")
	}
	resp, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/storefront-auth/verify/" + url.PathEscape(trimmed),
		endpoint: "auth.verify",
	})
	if err != nil {
		return "", err
	}
	message := resp.env.message()
	if message == "" {
		var data string
		if _, err := resp.decode(&data); err == nil {
			message = data
		}
	}
	return message, nil
}
