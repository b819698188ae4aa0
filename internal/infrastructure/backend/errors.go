package backend

import (
	"errors"
	"fmt"
)

// ================================================
// ERROR TAXONOMY
// ================================================

var (
	// ErrUnavailable: transport failure or the backend could not be reached.
	ErrUnavailable = errors.New("service unavailable")
	// ErrRejected: backend answered with success=false.
	ErrRejected = errors.New("rejected by backend")
)

type Kind int

const (
	KindUnavailable Kind = iota + 1
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call.
type Error struct {
	Method  string
	Kind    Kind
	Message string // backend-supplied message for KindRejected
	Err     error  // transport error for KindUnavailable
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Method, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Method, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	case ErrRejected:
		return e.Kind == KindRejected
	}
	return false
}

func unavailable(method string, err error) *Error {
	return &Error{Method: method, Kind: KindUnavailable, Err: err}
}

func rejected(method, message string) *Error {
	return &Error{Method: method, Kind: KindRejected, Message: message}
}

// RejectionMessage returns the backend message carried by a rejected call.
func RejectionMessage(err error) (string, bool) {
	var be *Error
	if errors.As(err, &be) && be.Kind == KindRejected {
		return be.Message, true
	}
	return "", false
}
