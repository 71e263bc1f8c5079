package federation

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type testIssuer struct {
	key    *rsa.PrivateKey
	kid    string
	server *httptest.Server
}

func newTestIssuer(t *testing.T) *testIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	iss := &testIssuer{key: key, kid: "test-kid-1"}
	iss.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc := jwksDoc{Keys: []jwk{{
			Kty: "RSA",
			Kid: iss.kid,
			Use: "sig",
			N:   base64.RawURLEncoding.EncodeToString(iss.key.PublicKey.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(iss.key.PublicKey.E)).Bytes()),
		}}}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(iss.server.Close)
	return iss
}

func (iss *testIssuer) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = iss.kid
	s, err := token.SignedString(iss.key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func (iss *testIssuer) validator() *GoogleValidator {
	return NewGoogleValidator(GoogleConfig{
		ClientID: "client-1",
		Issuer:   "https://accounts.google.com",
		JWKSURL:  iss.server.URL,
	})
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":         "https://accounts.google.com",
		"aud":         "client-1",
		"sub":         "subject-42",
		"email":       "user@example.com",
		"given_name":  "Ada",
		"family_name": "Lovelace",
		"iat":         time.Now().Add(-time.Minute).Unix(),
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
}

func TestGoogleValidator_Valid(t *testing.T) {
	iss := newTestIssuer(t)
	v := iss.validator()

	ident, err := v.Validate(context.Background(), iss.sign(t, baseClaims()))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ident.Subject != "subject-42" || ident.Email != "user@example.com" {
		t.Errorf("identity: got subject=%q email=%q", ident.Subject, ident.Email)
	}
	if ident.GivenName != "Ada" || ident.FamilyName != "Lovelace" {
		t.Errorf("profile claims: got %q %q", ident.GivenName, ident.FamilyName)
	}
}

func TestGoogleValidator_Failures(t *testing.T) {
	iss := newTestIssuer(t)
	v := iss.validator()

	expired := baseClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	wrongAud := baseClaims()
	wrongAud["aud"] = "someone-else"

	wrongIss := baseClaims()
	wrongIss["iss"] = "https://evil.example.com"

	noSub := baseClaims()
	delete(noSub, "sub")

	tests := []struct {
		name      string
		assertion string
	}{
		{"expired", iss.sign(t, expired)},
		{"wrong audience", iss.sign(t, wrongAud)},
		{"wrong issuer", iss.sign(t, wrongIss)},
		{"missing subject", iss.sign(t, noSub)},
		{"malformed", "not-a-jwt"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(context.Background(), tt.assertion)
			if !errors.Is(err, ErrInvalidAssertion) {
				t.Errorf("want ErrInvalidAssertion, got %v", err)
			}
		})
	}
}

// A token signed with a key the issuer never published must be rejected even
// though it is otherwise well formed.
func TestGoogleValidator_UnknownKey(t *testing.T) {
	iss := newTestIssuer(t)
	v := iss.validator()

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, baseClaims())
	token.Header["kid"] = "unknown-kid"
	s, err := token.SignedString(other)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := v.Validate(context.Background(), s); !errors.Is(err, ErrInvalidAssertion) {
		t.Errorf("want ErrInvalidAssertion, got %v", err)
	}
}

func TestGoogleValidator_KeyEndpointUnreachable(t *testing.T) {
	iss := newTestIssuer(t)
	assertion := iss.sign(t, baseClaims())
	iss.server.Close()

	v := iss.validator()
	if _, err := v.Validate(context.Background(), assertion); !errors.Is(err, ErrInvalidAssertion) {
		t.Errorf("want ErrInvalidAssertion, got %v", err)
	}
}

// After rotation the cache refreshes on an unknown kid instead of failing.
func TestGoogleValidator_KeyRotation(t *testing.T) {
	iss := newTestIssuer(t)
	v := iss.validator()

	if _, err := v.Validate(context.Background(), iss.sign(t, baseClaims())); err != nil {
		t.Fatalf("pre-rotation: %v", err)
	}

	rotated, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	iss.key = rotated
	iss.kid = "test-kid-2"

	if _, err := v.Validate(context.Background(), iss.sign(t, baseClaims())); err != nil {
		t.Fatalf("post-rotation: %v", err)
	}
}
