// Package server exposes the authentication service over HTTP: login,
// registration, token validation, and health.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	identitydomain "github.com/techdevs/gibson-accounts/internal/identity/domain"
	identityservice "github.com/techdevs/gibson-accounts/internal/identity/service"
	"github.com/techdevs/gibson-accounts/internal/security"
	tenantdomain "github.com/techdevs/gibson-accounts/internal/tenant/domain"
	userdomain "github.com/techdevs/gibson-accounts/internal/user/domain"
)

// clientKeyHeader carries the tenant's opaque client key on every request.
const clientKeyHeader = "X-Client-Key"

// storeTimeout bounds tenant resolution and directory calls per request;
// loginTimeout additionally covers the federated provider's key endpoint.
const (
	storeTimeout = 5 * time.Second
	loginTimeout = 15 * time.Second
)

// AuthService is the authentication orchestrator consumed by the handlers.
type AuthService interface {
	Login(ctx context.Context, req *identitydomain.LoginRequest) (*identityservice.AuthResult, error)
	Register(ctx context.Context, tenantID string, userType userdomain.UserType, email, password, givenName, familyName string) (*userdomain.User, error)
	ValidateToken(token, tenantKey string) (*security.Claims, error)
}

// TenantResolver maps a client key to a tenant.
type TenantResolver interface {
	ResolveByKey(ctx context.Context, clientKey string) (*tenantdomain.Tenant, error)
}

// Pinger reports storage reachability for the health endpoint (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server holds handler dependencies.
type Server struct {
	auth    AuthService
	tenants TenantResolver
	pinger  Pinger
	log     *zap.Logger
}

// New returns a Server. pinger may be nil; the health endpoint then skips the
// storage check.
func New(auth AuthService, tenants TenantResolver, pinger Pinger, log *zap.Logger) *Server {
	return &Server{auth: auth, tenants: tenants, pinger: pinger, log: log}
}

// Handler builds the HTTP handler with routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID(), Recover(s.log), RequestLogger(s.log))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/auth", func(ar chi.Router) {
		ar.Post("/login", s.handleLogin)
		ar.Post("/register", s.handleRegister)
		ar.Post("/validate", s.handleValidate)
		ar.With(s.Auth()).Get("/me", s.handleMe)
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// resolveTenant resolves the caller's client key header. On failure it writes
// the response and returns ok=false. An unknown key reads as unauthorized, not
// not-found, so client keys cannot be probed.
func (s *Server) resolveTenant(w http.ResponseWriter, r *http.Request) (*tenantdomain.Tenant, bool) {
	key := r.Header.Get(clientKeyHeader)
	if key == "" {
		s.writeError(w, http.StatusBadRequest, "missing client key")
		return nil, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	tenant, err := s.tenants.ResolveByKey(ctx, key)
	if err != nil {
		s.log.Error("resolve tenant", zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
		s.writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return nil, false
	}
	if tenant == nil {
		s.writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return tenant, true
}
