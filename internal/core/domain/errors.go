package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the small enumerated set of semantic results the core
// branches on. The protocol adapter maps whatever its wire format reports
// into one of these; the core never sees transport detail.
type ErrorCode int

const (
	// CodeUnknown covers any remote failure the adapter could not classify.
	CodeUnknown ErrorCode = iota
	// CodeObjectDoesNotExist: info/update/delete targeted a missing object.
	CodeObjectDoesNotExist
	// CodeObjectExists: a create collided with an existing object. Creates
	// are idempotent, so callers generally treat this as success.
	CodeObjectExists
	// CodeAssociationProhibitsOperation: the object is in use elsewhere and
	// the registry refuses the operation.
	CodeAssociationProhibitsOperation
	// CodeCommandFailed: the registry rejected the command outright.
	CodeCommandFailed
	// CodeConnectionFailure: the command never completed; transport-level
	// trouble rather than a protocol verdict.
	CodeConnectionFailure
)

func (c ErrorCode) String() string {
	switch c {
	case CodeObjectDoesNotExist:
		return "object does not exist"
	case CodeObjectExists:
		return "object exists"
	case CodeAssociationProhibitsOperation:
		return "association prohibits operation"
	case CodeCommandFailed:
		return "command failed"
	case CodeConnectionFailure:
		return "connection failure"
	default:
		return "unknown"
	}
}

// RegistryError is the typed error returned by every RegistryClient method
// that fails. It carries the machine-readable code the reconcilers branch on.
type RegistryError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *RegistryError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("registry error (%s): %s", e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("registry error (%s): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("registry error (%s)", e.Code)
}

func (e *RegistryError) Unwrap() error { return e.Err }

// IsConnectionError reports whether the command failed before the registry
// could give a verdict. Callers can show a generic "try again" message for
// these instead of a protocol-specific one.
func (e *RegistryError) IsConnectionError() bool {
	return e.Code == CodeConnectionFailure
}

// CodeOf extracts the semantic code from an error chain. Errors that are not
// registry errors report CodeUnknown.
func CodeOf(err error) ErrorCode {
	var re *RegistryError
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeUnknown
}

// IsCode reports whether err is a registry error carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var re *RegistryError
	return errors.As(err, &re) && re.Code == code
}

// Sentinel errors raised by the core before any remote call is made.
var (
	// ErrDomainNotFound is returned by the record store for unknown names.
	ErrDomainNotFound = errors.New("domain not found")
	// ErrContactNotFound is returned by the contact store for unknown IDs.
	ErrContactNotFound = errors.New("contact not found")
	// ErrPropertyNotFound means a property was requested that neither the
	// cache nor a fresh registry fetch could provide.
	ErrPropertyNotFound = errors.New("property not found in registry cache")
	// ErrTooManyNameservers rejects desired host sets larger than 13.
	ErrTooManyNameservers = errors.New("too many hosts provided, you may not have more than 13 nameservers")
	// ErrWrongContactRole rejects a contact whose role does not match the
	// slot it is being bound to.
	ErrWrongContactRole = errors.New("contact role does not match the expected role")
)

// IllegalTransitionError is returned when a lifecycle transition is invoked
// from a state it is not declared for. It is always fatal to that call;
// state is never silently coerced.
type IllegalTransitionError struct {
	Transition string
	From       State
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot %s from state %q", e.Transition, e.From)
}
