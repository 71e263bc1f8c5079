// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev tenant (client key "dev") already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/techdevs/gibson-accounts/internal/config"
	"github.com/techdevs/gibson-accounts/internal/db"
	"github.com/techdevs/gibson-accounts/internal/security"
	tenantrepo "github.com/techdevs/gibson-accounts/internal/tenant/repository"
	userdomain "github.com/techdevs/gibson-accounts/internal/user/domain"
	userrepo "github.com/techdevs/gibson-accounts/internal/user/repository"
)

const (
	devClientKey  = "dev"
	devTenantName = "Dev Tenant"
	devUserEmail  = "dev@example.com"
	devPassword   = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resolver := tenantrepo.NewPostgresResolver(conn)
	tenant, err := resolver.ResolveByKey(ctx, devClientKey)
	if err != nil {
		log.Fatalf("resolve tenant: %v", err)
	}
	if tenant != nil {
		log.Printf("dev tenant already seeded (id %s)", tenant.ID)
		return
	}

	tenantID := uuid.New().String()
	if _, err := conn.ExecContext(ctx,
		`INSERT INTO tenants (id, client_key, name) VALUES ($1, $2, $3)`,
		tenantID, devClientKey, devTenantName); err != nil {
		log.Fatalf("insert tenant: %v", err)
	}

	hash, err := security.NewHasher(cfg.BcryptCost).Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		UserType:      userdomain.UserTypeCustomer,
		Username:      devUserEmail,
		PasswordHash:  hash,
		GivenName:     "Dev",
		FamilyName:    "User",
		TermsAccepted: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := userrepo.NewPostgresDirectory(conn).CreateLocal(ctx, user); err != nil {
		log.Fatalf("insert user: %v", err)
	}

	log.Printf("seeded tenant %s (key %q) with user %s / %s", tenantID, devClientKey, devUserEmail, devPassword)
}
