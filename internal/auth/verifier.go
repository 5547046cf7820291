// Package auth validates the bearer tokens minted by the external identity
// provider. The provider signs access tokens with a shared HS256 secret and
// places the account email in the claims; this service only needs that email.
package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken indicates the bearer token failed verification.
	ErrInvalidToken = errors.New("invalid bearer token")
)

const defaultLeeway = 30 * time.Second

// Identity is the verified caller of a request.
type Identity struct {
	Email string
	// Anonymous is set when the identity was synthesized in degraded mode
	// rather than verified against a token.
	Anonymous bool
	// AnonymousAdmin grants the synthesized identity the admin role.
	AnonymousAdmin bool
}

// Config configures token verification.
type Config struct {
	// Secret is the identity provider's HS256 signing secret.
	Secret string
	Leeway time.Duration
}

// Verifier validates identity-provider access tokens.
type Verifier struct {
	secret []byte
	leeway time.Duration
}

// NewVerifier creates a token verifier for the provider's signing secret.
func NewVerifier(cfg Config) (*Verifier, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("token verifier requires a signing secret")
	}
	leeway := cfg.Leeway
	if leeway <= 0 {
		leeway = defaultLeeway
	}
	return &Verifier{secret: []byte(secret), leeway: leeway}, nil
}

type providerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify parses the token and returns the identity it carries.
func (v *Verifier) Verify(token string) (Identity, error) {
	claims := providerClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	email := strings.TrimSpace(strings.ToLower(claims.Email))
	if email == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{Email: email}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
