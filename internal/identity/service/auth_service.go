package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/techdevs/gibson-accounts/internal/federation"
	identitydomain "github.com/techdevs/gibson-accounts/internal/identity/domain"
	"github.com/techdevs/gibson-accounts/internal/security"
	userdomain "github.com/techdevs/gibson-accounts/internal/user/domain"
	userrepo "github.com/techdevs/gibson-accounts/internal/user/repository"
)

// Sentinel errors for the auth service; the handler maps them to HTTP status.
var (
	// ErrInvalidRequest marks a login request with missing or mismatched
	// fields; details are wrapped alongside.
	ErrInvalidRequest = errors.New("invalid login request")
	// ErrInvalidCredentials covers absent users, wrong passwords, and every
	// federated validation failure, so responses cannot be used to enumerate
	// accounts or probe the federated flow.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnsupportedProvider = errors.New("unsupported auth provider")
	ErrUserAlreadyExists   = errors.New("username already registered")
	// ErrDirectoryUnavailable marks storage failures, kept distinct from
	// authentication failures so infrastructure problems alert separately.
	ErrDirectoryUnavailable = errors.New("user directory unavailable")
)

// AuthResult holds the outcome of a successful login: a signed, tenant-scoped
// bearer token and the identity it was issued for.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    string
	TenantID  string
}

// Directory is the minimal user directory needed by the auth service.
type Directory interface {
	FindLocal(ctx context.Context, tenantID string, userType userdomain.UserType, username string) (*userdomain.User, error)
	FindFederated(ctx context.Context, tenantID string, userType userdomain.UserType, provider, subjectID string) (*userdomain.User, error)
	CreateLocal(ctx context.Context, u *userdomain.User) error
	CreateFederated(ctx context.Context, u *userdomain.User) error
}

// AuthService authenticates login requests and issues tenant-scoped tokens.
// It holds no mutable state across requests; any number of logins may run
// concurrently. The single mutation point is directory creation, whose
// uniqueness constraint resolves auto-provision races (see loginFederated).
type AuthService struct {
	directory  Directory
	hasher     *security.Hasher
	tokens     *security.TokenCodec
	validators map[identitydomain.Provider]federation.Validator
	now        func() time.Time
}

// NewAuthService returns an AuthService with the given dependencies.
// validators maps each supported federated provider to its assertion
// validator; providers absent from the map are rejected as unsupported.
func NewAuthService(
	directory Directory,
	hasher *security.Hasher,
	tokens *security.TokenCodec,
	validators map[identitydomain.Provider]federation.Validator,
) *AuthService {
	return &AuthService{
		directory:  directory,
		hasher:     hasher,
		tokens:     tokens,
		validators: validators,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Login dispatches the request to the local or federated path and returns a
// token or exactly one typed error. An unsupported provider is rejected
// before any lookup.
func (s *AuthService) Login(ctx context.Context, req *identitydomain.LoginRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if req.Provider == identitydomain.ProviderLocal {
		return s.loginLocal(ctx, req)
	}
	validator, ok := s.validators[req.Provider]
	if !ok {
		return nil, ErrUnsupportedProvider
	}
	return s.loginFederated(ctx, validator, req)
}

func (s *AuthService) loginLocal(ctx context.Context, req *identitydomain.LoginRequest) (*AuthResult, error) {
	username := normalizeEmail(req.Email)
	user, err := s.directory.FindLocal(ctx, req.TenantID, req.UserType, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	// A missing user and a wrong password are indistinguishable in the result.
	if user == nil || !s.hasher.Verify(user.PasswordHash, []byte(req.Password)) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user, req.TenantKey)
}

func (s *AuthService) loginFederated(ctx context.Context, validator federation.Validator, req *identitydomain.LoginRequest) (*AuthResult, error) {
	ident, err := validator.Validate(ctx, req.Assertion)
	if err != nil {
		// All federated validation failures look the same to the caller.
		return nil, ErrInvalidCredentials
	}
	user, err := s.directory.FindFederated(ctx, req.TenantID, req.UserType, string(req.Provider), ident.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	if user == nil {
		user, err = s.provisionFederated(ctx, req, ident)
		if err != nil {
			return nil, err
		}
	}
	return s.issue(user, req.TenantKey)
}

// provisionFederated creates a user from validated provider claims on first
// federated login. Losing a concurrent creation race is not an error: the
// storage uniqueness constraint rejects the duplicate and the winner's row is
// looked up once instead.
func (s *AuthService) provisionFederated(ctx context.Context, req *identitydomain.LoginRequest, ident *federation.Identity) (*userdomain.User, error) {
	now := s.now()
	user := &userdomain.User{
		ID:              uuid.New().String(),
		TenantID:        req.TenantID,
		UserType:        req.UserType,
		Username:        normalizeEmail(ident.Email),
		Provider:        string(req.Provider),
		ProviderSubject: ident.Subject,
		GivenName:       ident.GivenName,
		FamilyName:      ident.FamilyName,
		// Federated sign-up implies provider-level consent.
		TermsAccepted: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := user.Validate(); err != nil {
		return nil, ErrInvalidCredentials
	}
	err := s.directory.CreateFederated(ctx, user)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, userrepo.ErrDuplicateUser) {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	existing, err := s.directory.FindFederated(ctx, req.TenantID, req.UserType, string(req.Provider), ident.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: user vanished after duplicate create", ErrDirectoryUnavailable)
	}
	return existing, nil
}

func (s *AuthService) issue(user *userdomain.User, tenantKey string) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.TenantID, tenantKey, s.now())
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		TenantID:  user.TenantID,
	}, nil
}

// Register creates a local user with the given credentials. Returns
// ErrUserAlreadyExists when the username is taken within (tenant, user type).
func (s *AuthService) Register(ctx context.Context, tenantID string, userType userdomain.UserType, email, password, givenName, familyName string) (*userdomain.User, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	existing, err := s.directory.FindLocal(ctx, tenantID, userType, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &userdomain.User{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		UserType:      userType,
		Username:      email,
		PasswordHash:  hash,
		GivenName:     strings.TrimSpace(givenName),
		FamilyName:    strings.TrimSpace(familyName),
		TermsAccepted: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := s.directory.CreateLocal(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrDuplicateUser) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	return user, nil
}

// ValidateToken checks a bearer token against the caller's tenant key and
// returns its claims. Errors are the security package's token errors.
func (s *AuthService) ValidateToken(token, tenantKey string) (*security.Claims, error) {
	return s.tokens.Validate(token, tenantKey, s.now())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
