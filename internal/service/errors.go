package service

import (
	"errors"
	"fmt"
)

// Kind classifies a failed remote operation.
type Kind int

const (
	// KindOperation is any non-2xx result of a data operation other than 401.
	KindOperation Kind = iota

	// KindConnectivity means the server could not be reached at all.
	KindConnectivity

	// KindAuth means register or login was rejected.
	KindAuth

	// KindUnauthorized means the credential was missing, expired or invalid
	// during a data operation.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindAuth:
		return "auth"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "operation"
	}
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrOperation    = &Error{Kind: KindOperation}
	ErrConnectivity = &Error{Kind: KindConnectivity}
	ErrAuth         = &Error{Kind: KindAuth}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

// Error is a failed remote operation. Kind is set by the layer that saw the
// HTTP status or transport failure; callers never derive it from Message.
type Error struct {
	Kind    Kind
	Op      string // e.g. "list tasks"
	Status  int    // HTTP status, 0 for transport failures
	Message string // server detail or a fallback
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Status != 0 && e.Kind == KindOperation {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil && e.Kind == KindConnectivity {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Status == 0 && t.Message == "" && t.Err == nil
}

// KindOf returns the Kind of the first *Error in err's chain.
// The second result is false if err carries no *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsUnauthorized reports whether err is an Unauthorized outcome.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Unauthorized returns the error used when op is refused locally because no
// credential is stored.
func Unauthorized(op string) *Error {
	return &Error{
		Kind:    KindUnauthorized,
		Op:      op,
		Message: "not logged in",
	}
}
