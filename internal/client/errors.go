package client

import (
	"errors"
	"fmt"
)

// Kind classifies why a request to the scanning service failed.
type Kind int

const (
	// KindUnknown covers any response whose shape could not be understood.
	KindUnknown Kind = iota
	// KindServerRejected means the service answered with a structured failure.
	KindServerRejected
	// KindUnreachable means no response was received at all.
	KindUnreachable
)

func (k Kind) String() string {
	switch k {
	case KindServerRejected:
		return "server-rejected"
	case KindUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is against *Error.
var (
	ErrServerRejected = errors.New("server rejected request")
	ErrUnreachable    = errors.New("server unreachable")
	ErrUnknown        = errors.New("unexpected response")
)

const unreachableMessage = "No response from server. Please check your connection."

// Error is a classified request failure. Message is meant for humans.
type Error struct {
	Kind    Kind
	Message string
	Status  int // HTTP status, 0 when no response arrived
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrServerRejected:
		return e.Kind == KindServerRejected
	case ErrUnreachable:
		return e.Kind == KindUnreachable
	case ErrUnknown:
		return e.Kind == KindUnknown
	}
	return false
}

// KindOf returns the classification of err, KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

func rejected(status int, msg, fallback string) *Error {
	if msg == "" {
		msg = fallback
	}
	return &Error{Kind: KindServerRejected, Message: msg, Status: status}
}

func unreachable(err error) *Error {
	return &Error{Kind: KindUnreachable, Message: unreachableMessage, Err: err}
}

func unknown(status int, format string, args ...any) *Error {
	return &Error{Kind: KindUnknown, Message: "Request failed: " + fmt.Sprintf(format, args...), Status: status}
}
