package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/techdevs/gibson-accounts/internal/user/domain"
)

const uniqueViolation = "23505"

const userColumns = `id, tenant_id, user_type, username, password_hash, provider, provider_subject, given_name, family_name, terms_accepted, created_at, updated_at`

type PostgresDirectory struct {
	db *sql.DB
}

// NewPostgresDirectory returns a user directory that uses the given db for
// persistence.
func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// FindLocal returns the user with the given username within (tenant, user
// type), or nil if not found. It returns an error only for database failures,
// not for missing rows.
func (d *PostgresDirectory) FindLocal(ctx context.Context, tenantID string, userType domain.UserType, username string) (*domain.User, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND user_type = $2 AND username = $3`,
		tenantID, string(userType), username)
	return scanUser(row)
}

// FindFederated returns the user with the given provider subject within
// (tenant, user type), or nil if not found. It returns an error only for
// database failures, not for missing rows.
func (d *PostgresDirectory) FindFederated(ctx context.Context, tenantID string, userType domain.UserType, provider, subjectID string) (*domain.User, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND user_type = $2 AND provider = $3 AND provider_subject = $4`,
		tenantID, string(userType), provider, subjectID)
	return scanUser(row)
}

// CreateLocal persists a local user. The user must have ID set. Returns
// ErrDuplicateUser when the username uniqueness index rejects the row.
func (d *PostgresDirectory) CreateLocal(ctx context.Context, u *domain.User) error {
	return d.insert(ctx, u)
}

// CreateFederated persists a federated user. The user must have ID set. The
// partial unique index on (tenant_id, user_type, provider, provider_subject)
// resolves concurrent first-login races: the loser gets ErrDuplicateUser.
func (d *PostgresDirectory) CreateFederated(ctx context.Context, u *domain.User) error {
	return d.insert(ctx, u)
}

func (d *PostgresDirectory) insert(ctx context.Context, u *domain.User) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.TenantID, string(u.UserType), u.Username,
		nullString(u.PasswordHash), nullString(u.Provider), nullString(u.ProviderSubject),
		nullString(u.GivenName), nullString(u.FamilyName),
		u.TermsAccepted, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateUser
		}
		return err
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var passwordHash, provider, providerSubject, givenName, familyName sql.NullString
	err := row.Scan(&u.ID, &u.TenantID, (*string)(&u.UserType), &u.Username,
		&passwordHash, &provider, &providerSubject, &givenName, &familyName,
		&u.TermsAccepted, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.PasswordHash = passwordHash.String
	u.Provider = provider.String
	u.ProviderSubject = providerSubject.String
	u.GivenName = givenName.String
	u.FamilyName = familyName.String
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
