package auth

import "github.com/golang-jwt/jwt/v5"

// SessionTokenPayload captures the data available when minting a visitor cookie.
type SessionTokenPayload struct {
	SessionID string
}

// SessionClaims is the typed JWT stored in the visitor cookie. ID carries the session id.
type SessionClaims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

const sessionKind = "visitor"
