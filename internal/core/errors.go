// ABOUTME: Error taxonomy for the Ask, Smartify, and embedding operations
// ABOUTME: Transports map Kind to a status code; Stage records where Ask failed
package core

import (
	"errors"
	"fmt"

	"github.com/harper/voicenotes/internal/storage"
)

// ErrIndexNotProvisioned is returned by a VectorIndex that is not set up yet
var ErrIndexNotProvisioned = storage.ErrIndexNotProvisioned

// Kind classifies a failure for the caller
type Kind int

const (
	KindInvalid Kind = iota + 1
	KindUnauthorized
	KindNotFound
	KindConflict
	KindRateLimited
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstream:
		return "upstream"
	}
	return "unknown"
}

// Stage is the step an operation was in when it failed
type Stage string

const (
	StageValidating      Stage = "validating"
	StageEmbedding       Stage = "embedding"
	StageRetrieving      Stage = "retrieving"
	StageContextBuilding Stage = "context_building"
	StageGenerating      Stage = "generating"
	StageExtracting      Stage = "extracting"
	StagePersisting      Stage = "persisting"
)

// Error is the boundary error every operation returns. Message is safe to
// show a user; Err carries the detail for operators.
type Error struct {
	Kind    Kind
	Stage   Stage
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Details returns the wrapped error text, or ""
func (e *Error) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func newError(kind Kind, stage Stage, message string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message, Err: err}
}

// KindOf returns the Kind of a core error, or KindUpstream for anything else
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUpstream
}

// IsKind reports whether err is a core error of the given kind
func IsKind(err error, kind Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}

// errUnauthorized is returned when no caller identity was supplied
func errUnauthorized(stage Stage) *Error {
	return newError(KindUnauthorized, stage, "Unauthorized", nil)
}
