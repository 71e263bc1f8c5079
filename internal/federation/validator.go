// Package federation validates third-party identity assertions (signed ID
// tokens) against the issuing provider's published keys.
package federation

import (
	"context"
	"errors"
)

// ErrInvalidAssertion is returned for every validation failure: malformed
// token, bad signature, expired token, wrong issuer or audience, unreachable
// key endpoint. Collapsing them is deliberate so callers cannot leak which
// part of federated validation failed.
var ErrInvalidAssertion = errors.New("invalid identity assertion")

// Identity is the validated result of a federated assertion: the provider's
// stable subject id plus profile claims used for auto-provisioning.
type Identity struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
}

// Validator validates a raw identity assertion. Implementations must honor
// ctx and bound any network calls with a timeout.
type Validator interface {
	Validate(ctx context.Context, assertion string) (*Identity, error)
}
