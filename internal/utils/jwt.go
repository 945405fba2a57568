package utils // package utils provides helper functions for session token creation

import (
	"errors" // sentinel errors for token validation failures
	"time"   // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionToken represents a signed HS256 JWT stored in the admin_token
// cookie along with its expiry. The back-office uses a single long-lived
// session token rather than an access/refresh pair: there is exactly one
// browser client and the cookie is httpOnly.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionClaims is what a verified session token carries: the admin user's
// id and email.
type SessionClaims struct {
	UserID uint64
	Email  string
}

// ErrInvalidToken is returned when a session token fails parsing,
// signature verification or claim extraction.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionToken builds and signs an HS256 JWT for an admin user. The JWT
// includes the subject (sub) set to the user id, the email, expiration
// (exp) and issued at (iat) claims.
func NewSessionToken(secret string, userID uint64, email string, ttlDays int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of a session token
// and extracts its claims. Tokens signed with a different method are
// rejected before the key is applied.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	out := SessionClaims{}
	// JWT numbers decode as float64.
	sub, ok := claims["sub"].(float64)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	out.UserID = uint64(sub)
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	return out, nil
}
