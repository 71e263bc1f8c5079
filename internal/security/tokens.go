package security

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token validation errors, in the order Validate checks them. Callers doing
// access control should treat all three as "access denied"; they are
// distinguished so operators can tell expiry storms from forgery attempts.
var (
	// ErrTokenMalformed is returned for tokens that cannot be parsed or whose
	// signature does not verify. Signature failures are deliberately not
	// distinguished from parse failures.
	ErrTokenMalformed = errors.New("token malformed or signature invalid")
	// ErrTokenExpired is returned when the token parsed and verified but its
	// expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenTenantMismatch is returned when a valid, unexpired token carries
	// a tenant key other than the one the caller expected.
	ErrTokenTenantMismatch = errors.New("token tenant mismatch")
)

// Claims is the claim set carried by issued tokens: subject (user id),
// tenant id, and the tenant client key used for cross-checking at validation.
//
// Tokens deliberately carry no iss or aud claims: this is a single-issuer
// system and the shared secret already scopes who can mint and accept tokens.
type Claims struct {
	jwt.RegisteredClaims
	TenantID  string `json:"tenant"`
	TenantKey string `json:"tenant_key"`
}

// TokenCodec issues and validates tenant-scoped access tokens signed with a
// single shared HS256 secret. Issue and Validate are pure functions of their
// inputs; the codec holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenCodec returns a TokenCodec signing with secret. Issued tokens expire
// lifetime after their issue time.
func NewTokenCodec(secret []byte, lifetime time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, lifetime: lifetime}
}

// Lifetime returns the configured token lifetime.
func (c *TokenCodec) Lifetime() time.Duration {
	return c.lifetime
}

// Issue signs a token for userID scoped to tenantID, carrying tenantKey as the
// cross-check claim. Expiry is now plus the configured lifetime. Returns the
// compact token string and its expiry.
func (c *TokenCodec) Issue(userID, tenantID, tenantKey string, now time.Time) (string, time.Time, error) {
	now = now.UTC()
	expiresAt := now.Add(c.lifetime)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TenantID:  tenantID,
		TenantKey: tenantKey,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Validate checks tokenString and returns its claims. Checks run in a fixed
// order: signature first (a forged token is rejected before any claim is
// trusted), then expiry against now, then the embedded tenant key against
// expectedTenantKey. An expired token is therefore never reported as a tenant
// mismatch.
func (c *TokenCodec) Validate(tokenString, expectedTenantKey string, now time.Time) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenMalformed
	}
	if claims.ExpiresAt == nil || !now.UTC().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	if subtle.ConstantTimeCompare([]byte(claims.TenantKey), []byte(expectedTenantKey)) != 1 {
		return nil, ErrTokenTenantMismatch
	}
	return claims, nil
}
