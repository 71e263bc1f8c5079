package domain

import (
	"errors"
	"time"
)

// UserType discriminates classes of account within one tenant. Uniqueness of
// usernames and federated subjects is scoped per (tenant, user type), so a
// customer and an employee of the same tenant may share an email address.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeEmployee UserType = "employee"
)

// ParseUserType maps the wire value to a UserType. Returns an error for
// unknown values so handlers reject them before any lookup.
func ParseUserType(s string) (UserType, error) {
	switch UserType(s) {
	case UserTypeCustomer, UserTypeEmployee:
		return UserType(s), nil
	default:
		return "", errors.New("unknown user type")
	}
}

// User is the core identity record, scoped to exactly one tenant. A user has a
// local profile (PasswordHash), a federated profile (Provider +
// ProviderSubject), or both; never neither.
type User struct {
	ID       string
	TenantID string
	UserType UserType
	// Username is the sign-in email address.
	Username string
	// PasswordHash is the bcrypt digest of the local password; empty for
	// federated-only users.
	PasswordHash string
	// Provider is the federated issuer name (e.g. "google"); empty for
	// local-only users.
	Provider string
	// ProviderSubject is the issuer's stable subject id; set iff Provider is.
	ProviderSubject string
	GivenName       string
	FamilyName      string
	// TermsAccepted records sign-up consent. Auto-provisioned federated users
	// get true: federated sign-up implies provider-level consent.
	TermsAccepted bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate validates the user for persistence. Returns an error describing the
// first validation failure.
func (u *User) Validate() error {
	if u.TenantID == "" {
		return errors.New("tenant id is required")
	}
	if u.UserType == "" {
		return errors.New("user type is required")
	}
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.PasswordHash == "" && u.Provider == "" {
		return errors.New("user needs a local or federated profile")
	}
	if u.Provider != "" && u.ProviderSubject == "" {
		return errors.New("provider subject is required for federated users")
	}
	return nil
}
