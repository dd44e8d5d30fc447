package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/api/responses"
	pkgAuth "github.com/angelmondragon/storefront/pkg/auth"
	"github.com/angelmondragon/storefront/pkg/auth/session"
	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/storefront"
)

// SessionTokenHeader lets non-browser clients carry the visitor token without cookies.
const SessionTokenHeader = "X-Session-Token"

type credentialLoader interface {
	Credentials(ctx context.Context, sessionID string) (*session.Credentials, error)
}

// Session resolves the visitor session from the signed cookie, minting a new
// one when it is missing or invalid, and loads any attached credentials.
func Session(cfg config.SessionConfig, loader credentialLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID := ""
			if raw := sessionToken(r, cfg.CookieName); raw != "" {
				claims, err := pkgAuth.ParseSessionToken(cfg, raw)
				if err == nil {
					sessionID = claims.ID
				} else if logg != nil {
					logg.Debug(logg.WithField(ctx, "error", err.Error()), "session.token_rejected")
				}
			}

			if sessionID == "" {
				sessionID = session.NewSessionID()
				token, err := pkgAuth.MintSessionToken(cfg, time.Now(), pkgAuth.SessionTokenPayload{SessionID: sessionID})
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
					return
				}
				writeSessionToken(w, cfg, token)
			}

			ctx = session.WithID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			if loader != nil {
				creds, err := loader.Credentials(ctx, sessionID)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session credentials"))
					return
				}
				if creds != nil {
					ctx = session.WithCredentials(ctx, creds)
					ctx = storefront.WithAccessToken(ctx, creds.AccessToken)
					if logg != nil {
						ctx = logg.WithField(ctx, "customer_id", creds.Customer.ID)
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin rejects visitors without attached credentials.
func RequireLogin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session.CredentialsFromContext(r.Context()) == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionToken(r *http.Request, cookieName string) string {
	if header := strings.TrimSpace(r.Header.Get(SessionTokenHeader)); header != "" {
		return header
	}
	if cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func writeSessionToken(w http.ResponseWriter, cfg config.SessionConfig, token string) {
	w.Header().Set(SessionTokenHeader, token)
	if cfg.CookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionIDFromContext returns the visitor session id resolved by Session.
func SessionIDFromContext(ctx context.Context) (string, error) {
	sid := session.IDFromContext(ctx)
	if sid == "" {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "session context missing")
	}
	return sid, nil
}
