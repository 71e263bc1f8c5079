package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	identitydomain "github.com/techdevs/gibson-accounts/internal/identity/domain"
	identityservice "github.com/techdevs/gibson-accounts/internal/identity/service"
	userdomain "github.com/techdevs/gibson-accounts/internal/user/domain"
)

type loginRequest struct {
	Provider string `json:"provider"`
	UserType string `json:"userType"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	// Assertion is the raw federated identity token.
	Assertion string `json:"identityAssertion,omitempty"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	TenantID  string    `json:"tenantId"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tenant, ok := s.resolveTenant(w, r)
	if !ok {
		return
	}
	userType, err := userdomain.ParseUserType(body.UserType)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Bounds both directory calls and the provider key fetch.
	ctx, cancel := context.WithTimeout(r.Context(), loginTimeout)
	defer cancel()
	res, err := s.auth.Login(ctx, &identitydomain.LoginRequest{
		Provider:  identitydomain.Provider(body.Provider),
		TenantID:  tenant.ID,
		TenantKey: tenant.ClientKey,
		UserType:  userType,
		Email:     body.Email,
		Password:  body.Password,
		Assertion: body.Assertion,
	})
	if err != nil {
		s.writeLoginError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		UserID:    res.UserID,
		TenantID:  res.TenantID,
	})
}

// writeLoginError maps orchestrator errors to HTTP status: unsupported
// provider and malformed requests are client errors, every authentication
// failure is a uniform 401, and infrastructure failures are 503.
func (s *Server) writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identityservice.ErrUnsupportedProvider):
		s.writeError(w, http.StatusBadRequest, "unsupported auth provider")
	case errors.Is(err, identityservice.ErrInvalidRequest):
		s.writeError(w, http.StatusBadRequest, "invalid login request")
	case errors.Is(err, identityservice.ErrInvalidCredentials):
		s.writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, identityservice.ErrDirectoryUnavailable):
		s.log.Error("directory unavailable", zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
		s.writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		s.log.Error("login failed", zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type registerRequest struct {
	UserType   string `json:"userType"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
}

type registerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	UserType string `json:"userType"`
	TenantID string `json:"tenantId"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tenant, ok := s.resolveTenant(w, r)
	if !ok {
		return
	}
	userType, err := userdomain.ParseUserType(body.UserType)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	user, err := s.auth.Register(ctx, tenant.ID, userType, body.Email, body.Password, body.GivenName, body.FamilyName)
	if err != nil {
		switch {
		case errors.Is(err, identityservice.ErrUserAlreadyExists):
			s.writeError(w, http.StatusConflict, "username already registered")
		case errors.Is(err, identityservice.ErrInvalidRequest):
			s.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, identityservice.ErrDirectoryUnavailable):
			s.log.Error("directory unavailable", zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
			s.writeError(w, http.StatusServiceUnavailable, "service unavailable")
		default:
			s.log.Error("register failed", zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
			s.writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	s.writeJSON(w, http.StatusCreated, registerResponse{
		ID:       user.ID,
		Username: user.Username,
		UserType: string(user.UserType),
		TenantID: user.TenantID,
	})
}

type validateResponse struct {
	UserID    string    `json:"userId"`
	TenantID  string    `json:"tenantId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleValidate checks the Bearer token against the caller's tenant key.
// Expired, mismatched, and malformed tokens are logged distinctly but all
// answer with the same 401.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	token := extractBearer(r)
	if token == "" {
		s.writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
		return
	}
	tenant, ok := s.resolveTenant(w, r)
	if !ok {
		return
	}
	claims, err := s.auth.ValidateToken(token, tenant.ClientKey)
	if err != nil {
		s.log.Info("token rejected",
			zap.String("reason", err.Error()),
			zap.String("request_id", GetRequestID(r.Context())))
		s.writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
		return
	}
	s.writeJSON(w, http.StatusOK, validateResponse{
		UserID:    claims.Subject,
		TenantID:  claims.TenantID,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

type meResponse struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := GetIdentity(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
		return
	}
	s.writeJSON(w, http.StatusOK, meResponse{UserID: id.UserID, TenantID: id.TenantID})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
		defer cancel()
		if err := s.pinger.PingContext(ctx); err != nil {
			s.writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
