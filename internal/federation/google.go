package federation

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	googleIssuer        = "https://accounts.google.com"
	googleIssuerNoHTTPS = "accounts.google.com" // legacy iss form still issued by some Google flows
	googleJWKSURL       = "https://www.googleapis.com/oauth2/v3/certs"
)

// GoogleConfig configures the Google ID-token validator.
type GoogleConfig struct {
	// ClientID is the expected aud claim (required).
	ClientID string
	// Issuer overrides the expected iss claim. Default: accounts.google.com.
	Issuer string
	// JWKSURL overrides the signing-key endpoint. Default: Google's published
	// JWKS. Overridable for tests.
	JWKSURL string
	// HTTPClient is used for JWKS fetches. Default: 10s-timeout client.
	HTTPClient *http.Client
	// JWKSCacheTTL controls how long fetched keys are cached (default 1h).
	JWKSCacheTTL time.Duration
}

func (c *GoogleConfig) applyDefaults() {
	if c.Issuer == "" {
		c.Issuer = googleIssuer
	}
	if c.JWKSURL == "" {
		c.JWKSURL = googleJWKSURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if c.JWKSCacheTTL == 0 {
		c.JWKSCacheTTL = time.Hour
	}
}

type googleClaims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// GoogleValidator validates Google-issued ID tokens: RS256 signature against
// Google's JWKS, then issuer, audience, and expiry.
type GoogleValidator struct {
	cfg  GoogleConfig
	keys *jwksCache
}

// NewGoogleValidator returns a validator for Google ID tokens with the given
// config. ClientID must be set.
func NewGoogleValidator(cfg GoogleConfig) *GoogleValidator {
	cfg.applyDefaults()
	return &GoogleValidator{
		cfg:  cfg,
		keys: newJWKSCache(cfg.JWKSURL, cfg.HTTPClient, cfg.JWKSCacheTTL),
	}
}

// Validate checks the raw ID token and extracts the subject and profile
// claims. Every failure, including an unreachable key endpoint, is reported
// as ErrInvalidAssertion.
func (v *GoogleValidator) Validate(ctx context.Context, assertion string) (*Identity, error) {
	claims := &googleClaims{}
	token, err := jwt.ParseWithClaims(assertion, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		return v.keys.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.cfg.ClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidAssertion
	}
	if claims.Issuer != v.cfg.Issuer && claims.Issuer != googleIssuerNoHTTPS {
		return nil, ErrInvalidAssertion
	}
	if claims.Subject == "" {
		return nil, ErrInvalidAssertion
	}
	return &Identity{
		Subject:    claims.Subject,
		Email:      claims.Email,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
	}, nil
}
