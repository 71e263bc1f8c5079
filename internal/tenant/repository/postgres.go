package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/techdevs/gibson-accounts/internal/tenant/domain"
)

type PostgresResolver struct {
	db *sql.DB
}

// NewPostgresResolver returns a tenant resolver backed by the given db.
func NewPostgresResolver(db *sql.DB) *PostgresResolver {
	return &PostgresResolver{db: db}
}

// ResolveByKey returns the tenant registered under clientKey, or nil if the
// key is unknown. It returns an error only for database failures.
func (r *PostgresResolver) ResolveByKey(ctx context.Context, clientKey string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_key, name, created_at FROM tenants WHERE client_key = $1`,
		clientKey).Scan(&t.ID, &t.ClientKey, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
