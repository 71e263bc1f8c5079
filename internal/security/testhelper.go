package security

import "time"

// Test parameters for unit tests only. Do not use in production.
const (
	bcryptTestCost = 4
	testSecret     = "unit-test-signing-secret-0123456789abcdef"
)

// NewTestTokenCodec returns a TokenCodec with a fixed test secret and the
// given lifetime. For unit tests only.
func NewTestTokenCodec(lifetime time.Duration) *TokenCodec {
	return NewTokenCodec([]byte(testSecret), lifetime)
}
