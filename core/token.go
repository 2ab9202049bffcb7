package core

import "time"

// Token is an opaque identity handle issued per caller or session. It is
// immutable once issued: the Value string is the handle callers pass around,
// while Role and Label describe the identity it was bound to at issue time.
type Token struct {
	Value   string    `json:"value"`
	Role    string    `json:"role"`
	Label   string    `json:"label"`
	Created time.Time `json:"created"`
}

// RoleInfo is the authorization-relevant view of a token returned by
// validation. It deliberately omits the token value so it can be logged
// and passed to authorization checks without leaking the handle.
type RoleInfo struct {
	Role  string `json:"role"`
	Label string `json:"label"`
}

// TokenValidator resolves a token value to its bound role. Implementations
// must fail for tokens that were never issued or have been revoked.
type TokenValidator interface {
	Validate(tokenValue string) (RoleInfo, error)
}
