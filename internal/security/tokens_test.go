package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTestTokenCodec(time.Hour)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, expiresAt, err := codec.Issue("u1", "tenant-a", "key-a", t0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}
	if want := t0.Add(time.Hour); !expiresAt.Equal(want) {
		t.Errorf("expiresAt want %v, got %v", want, expiresAt)
	}

	claims, err := codec.Validate(token, "key-a", t0)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "u1" || claims.TenantID != "tenant-a" || claims.TenantKey != "key-a" {
		t.Errorf("claims round trip: got sub=%q tenant=%q tenant_key=%q", claims.Subject, claims.TenantID, claims.TenantKey)
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	codec := NewTestTokenCodec(time.Hour)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, _, err := codec.Issue("u1", "tenant-a", "key-a", t0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = codec.Validate(token, "key-a", t0.Add(time.Hour+time.Second))
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("want ErrTokenExpired, got %v", err)
	}

	// Exactly at expiry counts as expired.
	_, err = codec.Validate(token, "key-a", t0.Add(time.Hour))
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("at expiry instant: want ErrTokenExpired, got %v", err)
	}
}

func TestTokenCodec_TenantMismatch(t *testing.T) {
	codec := NewTestTokenCodec(time.Hour)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, _, err := codec.Issue("u1", "tenant-a", "key-a", t0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = codec.Validate(token, "key-b", t0)
	if !errors.Is(err, ErrTokenTenantMismatch) {
		t.Errorf("want ErrTokenTenantMismatch, got %v", err)
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := NewTestTokenCodec(time.Hour)
	now := time.Now().UTC()

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := codec.Validate(tok, "key-a", now); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Validate(%q): want ErrTokenMalformed, got %v", tok, err)
		}
	}
}

func TestTokenCodec_TamperedSignature(t *testing.T) {
	codec := NewTestTokenCodec(time.Hour)
	other := NewTokenCodec([]byte("a-different-signing-secret-with-length"), time.Hour)
	t0 := time.Now().UTC()

	token, _, err := other.Issue("u1", "tenant-a", "key-a", t0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Validate(token, "key-a", t0); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("token signed with wrong secret: want ErrTokenMalformed, got %v", err)
	}

	// Flipping payload bytes must also fail signature verification.
	own, _, err := codec.Issue("u1", "tenant-a", "key-a", t0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(own, ".")
	tampered := parts[0] + "." + strings.Repeat("A", len(parts[1])) + "." + parts[2]
	if _, err := codec.Validate(tampered, "key-a", t0); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("tampered payload: want ErrTokenMalformed, got %v", err)
	}
}

// An expired token presented with the wrong tenant key must report expiry, not
// tenant mismatch: expiry is checked before the tenant claim is trusted.
func TestTokenCodec_ValidationOrder(t *testing.T) {
	codec := NewTestTokenCodec(time.Hour)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, _, err := codec.Issue("u1", "tenant-a", "key-a", t0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err = codec.Validate(token, "key-b", t0.Add(2*time.Hour))
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired token with wrong tenant key: want ErrTokenExpired, got %v", err)
	}
}
