package repository

import (
	"context"

	"github.com/techdevs/gibson-accounts/internal/tenant/domain"
)

// Resolver maps an opaque client key to a tenant. Returns (nil, nil) when the
// key is unknown; errors are reserved for storage failures.
type Resolver interface {
	ResolveByKey(ctx context.Context, clientKey string) (*domain.Tenant, error)
}
