package service

import (
	"context"
	"errors"
	"fmt"

	"pensario-server/internal/repository"
	"pensario-server/internal/storage"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthorized
	KindNotFound
	KindConflict
	KindPayloadTooLarge
	KindUnsupportedMediaType
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindUnsupportedMediaType:
		return "unsupported_media_type"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error carries a Kind and a caller-safe Message. Err holds the cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns KindInternal for errors that carry no Kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ErrInvalidCredentials is shared by unknown-user and wrong-password logins.
var ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Message: "invalid credentials"}

func invalidInput(message string) error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

func notFound(resource Resource) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// classify turns a collaborator failure into Unavailable or Internal. Errors
// that already carry a Kind pass through.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnavailable, Message: "service temporarily unavailable, retry later", Err: fmt.Errorf("%s: %w", op, err)}
	}
	return &Error{Kind: KindInternal, Message: "internal server error", Err: fmt.Errorf("%s: %w", op, err)}
}

// lookup maps a missing record to NotFound for resource and classifies everything else.
func lookup(err error, resource Resource, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(resource)
	}
	return classify(err, op)
}

func isMissingBlob(err error) bool {
	return errors.Is(err, storage.ErrNotExist)
}
