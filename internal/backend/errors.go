package backend

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks a request rejected before reaching the provider
var ErrInvalidRequest = errors.New("invalid chat request")

// Kind is the closed set of failure categories a backend reports
type Kind int

const (
	// KindUnknown covers transport failures, malformed responses and
	// anything not reported by the provider itself.
	KindUnknown Kind = iota
	// KindModelNotFound means the requested model id is invalid or retired.
	KindModelNotFound
	// KindProvider is any other API-level failure (auth, rate limit, quota, server).
	KindProvider
)

func (k Kind) String() string {
	switch k {
	case KindModelNotFound:
		return "model_not_found"
	case KindProvider:
		return "provider_error"
	default:
		return "unknown_error"
	}
}

// Error is returned by every Client on failure
type Error struct {
	Kind        Kind
	Description string
	StatusCode  int
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Description == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify returns err as an *Error, treating uncategorized errors as unknown
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var berr *Error
	if errors.As(err, &berr) {
		return berr
	}
	return &Error{Kind: KindUnknown, Description: err.Error(), Err: err}
}

func invalidRequest(reason string) *Error {
	return &Error{
		Kind:        KindUnknown,
		Description: reason,
		Err:         fmt.Errorf("%w: %s", ErrInvalidRequest, reason),
	}
}
