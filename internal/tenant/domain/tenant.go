package domain

import "time"

// Tenant is a resolved tenant identity: the internal id plus the opaque client
// key it was resolved from. The authentication core treats it as trusted
// input.
type Tenant struct {
	ID        string
	ClientKey string
	Name      string
	CreatedAt time.Time
}
