// Package auth issues and verifies session tokens for Daybook users.
//
// Sessions are stateless HS256 JWTs carrying the user ID as subject. Tokens
// arrive either as a bearer Authorization header or as the session cookie set
// at login.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie name browser clients use.
const SessionCookie = "daybook_session"

// DefaultTokenTTL is the session lifetime when the config leaves TTL zero.
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrNoToken reports a request that carried no credential at all.
var ErrNoToken = errors.New("auth: no token presented")

// ErrInvalidToken reports a credential that failed verification.
var ErrInvalidToken = errors.New("auth: invalid token")

// Authenticator verifies request credentials and resolves them to a user ID.
type Authenticator interface {
	// Authenticate extracts and verifies the request's credential, returning
	// the user ID it identifies. ErrNoToken and ErrInvalidToken distinguish
	// absent from bad credentials.
	Authenticate(r *http.Request) (string, error)
}

// Config configures the token authenticator.
type Config struct {
	// Secret is the HS256 signing key. Required.
	Secret string `yaml:"secret"`

	// Issuer is stamped into and required of every token.
	Issuer string `yaml:"issuer"`

	// TTL bounds session lifetime.
	TTL time.Duration `yaml:"ttl"`
}

// TokenAuthenticator issues and verifies HS256 session tokens.
type TokenAuthenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewTokenAuthenticator creates an authenticator from the config.
func NewTokenAuthenticator(cfg Config) (*TokenAuthenticator, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("auth: signing secret is required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "daybook"
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTokenTTL
	}
	return &TokenAuthenticator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue creates a signed session token for the user.
func (a *TokenAuthenticator) Issue(userID string) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Authenticate verifies the request's token and returns its subject.
func (a *TokenAuthenticator) Authenticate(r *http.Request) (string, error) {
	raw := extractToken(r)
	if raw == "" {
		return "", ErrNoToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// extractToken prefers the Authorization header over the session cookie.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if raw, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(raw)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
