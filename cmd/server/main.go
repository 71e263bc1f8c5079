package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/techdevs/gibson-accounts/internal/config"
	"github.com/techdevs/gibson-accounts/internal/db"
	"github.com/techdevs/gibson-accounts/internal/federation"
	identitydomain "github.com/techdevs/gibson-accounts/internal/identity/domain"
	identityservice "github.com/techdevs/gibson-accounts/internal/identity/service"
	"github.com/techdevs/gibson-accounts/internal/security"
	"github.com/techdevs/gibson-accounts/internal/server"
	tenantrepo "github.com/techdevs/gibson-accounts/internal/tenant/repository"
	userrepo "github.com/techdevs/gibson-accounts/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	hasher := security.NewHasher(cfg.BcryptCost)
	codec := security.NewTokenCodec([]byte(cfg.JWTSigningSecret), cfg.TokenTTL())

	validators := map[identitydomain.Provider]federation.Validator{}
	if cfg.GoogleClientID != "" {
		validators[identitydomain.ProviderGoogle] = federation.NewGoogleValidator(federation.GoogleConfig{
			ClientID: cfg.GoogleClientID,
			Issuer:   cfg.GoogleIssuer,
			JWKSURL:  cfg.GoogleJWKSURL,
		})
	}

	authSvc := identityservice.NewAuthService(
		userrepo.NewPostgresDirectory(database),
		hasher,
		codec,
		validators,
	)

	srv := server.New(authSvc, tenantrepo.NewPostgresResolver(database), database, logger)
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("http server stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
