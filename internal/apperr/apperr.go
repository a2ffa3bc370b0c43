// Package apperr carries the error taxonomy shared by every write-boundary
// operation: callers can tell a missing tenant from a disabled one, and a
// validation failure from a referential-integrity rejection.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind int

const (
	// NotFound means an identifier resolved to no row.
	NotFound Kind = iota + 1
	// Inactive means the tenant exists but is disabled.
	Inactive
	// Expired means the tenant exists but its subscription lapsed.
	Expired
	// ValidationFailed means a required-field, length or format violation.
	ValidationFailed
	// IntegrityViolation means a restrict-cascade rule, a uniqueness
	// constraint or a cross-tenant consistency invariant would be broken.
	IntegrityViolation
	// IllegalTransition means an order status change the lifecycle forbids.
	IllegalTransition
	// Internal means an infrastructure failure not attributable to input.
	Internal
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Inactive:
		return "inactive"
	case Expired:
		return "expired"
	case ValidationFailed:
		return "validation_failed"
	case IntegrityViolation:
		return "integrity_violation"
	case IllegalTransition:
		return "illegal_transition"
	case Internal:
		return "internal"
	}
	return "unknown"
}

// Error is a structured domain error. Entity names the offending entity,
// Field the offending field where one applies.
type Error struct {
	Kind   Kind
	Entity string
	Field  string
	msg    string
	err    error
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Entity != "" {
		s += " " + e.Entity
	}
	if e.Field != "" {
		s += "." + e.Field
	}
	if e.msg != "" {
		s += ": " + e.msg
	}
	if e.err != nil {
		s += ": " + e.err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.err }

// Is lets errors.Is match on kind via the sentinel helpers below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Entity != "" && t.Entity != e.Entity {
		return false
	}
	return true
}

// New builds an error of the given kind for an entity.
func New(kind Kind, entity, format string, args ...any) *Error {
	return &Error{Kind: kind, Entity: entity, msg: fmt.Sprintf(format, args...)}
}

// Field builds a validation error pinned to a single field.
func Field(entity, field, format string, args ...any) *Error {
	return &Error{Kind: ValidationFailed, Entity: entity, Field: field, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying infrastructure error.
func Wrap(kind Kind, entity string, err error) *Error {
	return &Error{Kind: kind, Entity: entity, err: err}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns err's kind, or Internal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
