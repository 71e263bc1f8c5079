package domain

import (
	"errors"

	userdomain "github.com/techdevs/gibson-accounts/internal/user/domain"
)

// Provider is the closed set of authentication providers. New federated
// issuers are added by declaring a constant and registering a validator for
// it; the login flow itself stays provider-agnostic.
type Provider string

const (
	// ProviderLocal is username/password authentication against the directory.
	ProviderLocal Provider = "local"
	// ProviderGoogle is federated login with a Google-issued ID token.
	ProviderGoogle Provider = "google"
)

// LoginRequest is the input to a login attempt, already tenant-resolved.
// Provider, TenantID, TenantKey, and UserType must all be set before dispatch,
// and the payload fields must match the provider: Email+Password for local,
// Assertion for federated.
type LoginRequest struct {
	Provider  Provider
	TenantID  string
	TenantKey string
	UserType  userdomain.UserType

	// Local payload.
	Email    string
	Password string

	// Federated payload: the raw identity assertion issued by the provider.
	Assertion string
}

// Validate checks that the request is fully populated and that the payload
// shape matches the provider tag. It does not check whether the provider is
// supported; the orchestrator owns that decision.
func (r *LoginRequest) Validate() error {
	if r.Provider == "" {
		return errors.New("provider is required")
	}
	if r.TenantID == "" || r.TenantKey == "" {
		return errors.New("tenant is required")
	}
	if r.UserType == "" {
		return errors.New("user type is required")
	}
	if r.Provider == ProviderLocal {
		if r.Email == "" || r.Password == "" {
			return errors.New("email and password are required for local login")
		}
		return nil
	}
	if r.Assertion == "" {
		return errors.New("identity assertion is required for federated login")
	}
	return nil
}
