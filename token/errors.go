package token

import "fmt"

var (
	// ErrUnknownToken is returned when a token value was never issued by the
	// manager or has since been revoked.
	ErrUnknownToken = fmt.Errorf("unknown token")
)
