package repository

import (
	"context"
	"errors"

	"github.com/techdevs/gibson-accounts/internal/user/domain"
)

// ErrDuplicateUser is returned by Create methods when the storage uniqueness
// constraint rejects the row. Under a concurrent first-login race exactly one
// creation succeeds; losers see this error and should look the user up again.
var ErrDuplicateUser = errors.New("user already exists")

// Directory defines persistence for users. Lookups return (nil, nil) when no
// row matches; errors are reserved for storage failures.
type Directory interface {
	FindLocal(ctx context.Context, tenantID string, userType domain.UserType, username string) (*domain.User, error)
	FindFederated(ctx context.Context, tenantID string, userType domain.UserType, provider, subjectID string) (*domain.User, error)
	// CreateLocal persists a user with a password hash set. The user must have
	// ID set; it is not assigned here. Returns ErrDuplicateUser when
	// (tenant, user type, username) is taken.
	CreateLocal(ctx context.Context, u *domain.User) error
	// CreateFederated persists a user with a federated profile set. Returns
	// ErrDuplicateUser when (tenant, user type, provider, subject) is taken,
	// which callers must treat as "created concurrently elsewhere".
	CreateFederated(ctx context.Context, u *domain.User) error
}
