package auth

import "fmt"

// Kind classifies why a request failed authentication.
type Kind int

const (
	// Missing means no token was presented.
	Missing Kind = iota + 1
	// Invalid covers malformed tokens, bad signatures and unknown keys.
	Invalid
	// Expired means the token was well formed but past its expiry.
	Expired
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing token"
	case Invalid:
		return "invalid token"
	case Expired:
		return "expired token"
	default:
		return "unknown"
	}
}

// AuthorizationError is returned for every token failure.
type AuthorizationError struct {
	Kind Kind
	Err  error
}

func (e *AuthorizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authorization failed: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("authorization failed: %s", e.Kind)
}

func (e *AuthorizationError) Unwrap() error {
	return e.Err
}
