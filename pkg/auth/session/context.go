package session

import "context"

type ctxKey string

const (
	ctxSessionID   ctxKey = "session_id"
	ctxCredentials ctxKey = "session_credentials"
)

// WithID injects the visitor session id into the context.
func WithID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// IDFromContext returns the visitor session id, or "" outside a session.
func IDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithCredentials injects the logged-in customer's credentials into the context.
func WithCredentials(ctx context.Context, creds *Credentials) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCredentials, creds)
}

// CredentialsFromContext returns the credentials for a logged-in visitor, or nil.
func CredentialsFromContext(ctx context.Context) *Credentials {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxCredentials).(*Credentials); ok {
		return v
	}
	return nil
}
