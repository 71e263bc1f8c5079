package security

import (
	"testing"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcryptTestCost)
	hash, err := h.Hash([]byte("secret"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash returned empty")
	}
	if !h.Verify(hash, []byte("secret")) {
		t.Fatal("Verify with correct password should succeed")
	}
	if h.Verify(hash, []byte("wrong")) {
		t.Fatal("Verify with wrong password should fail")
	}
}

func TestHasher_HashIsSalted(t *testing.T) {
	h := NewHasher(bcryptTestCost)
	h1, err := h.Hash([]byte("secret"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := h.Hash([]byte("secret"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password should differ")
	}
	if !h.Verify(h1, []byte("secret")) || !h.Verify(h2, []byte("secret")) {
		t.Fatal("both salted hashes should verify against the original password")
	}
}

func TestHasher_VerifyFailsClosed(t *testing.T) {
	h := NewHasher(bcryptTestCost)
	if h.Verify("", []byte("secret")) {
		t.Fatal("empty hash should verify false")
	}
	if h.Verify("not-a-bcrypt-digest", []byte("secret")) {
		t.Fatal("malformed hash should verify false, not panic or error")
	}
}

func TestHasher_CostClamped(t *testing.T) {
	h := NewHasher(12)
	if h.Cost != 12 {
		t.Errorf("Cost want 12, got %d", h.Cost)
	}
	h0 := NewHasher(0)
	if h0.Cost < 4 {
		t.Errorf("zero cost should be clamped to at least MinCost, got %d", h0.Cost)
	}
	h99 := NewHasher(99)
	if h99.Cost > 31 {
		t.Errorf("oversized cost should be clamped to MaxCost, got %d", h99.Cost)
	}
}
