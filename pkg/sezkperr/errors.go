// Package sezkperr defines the error taxonomy shared by every SEZKP
// component and the exit codes the CLI derives from it.
package sezkperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure, independent of the Go type carrying it.
type Kind string

const (
	KindIO               Kind = "Io"
	KindDecodeFormat     Kind = "DecodeFormat"
	KindSchemaVersion     Kind = "SchemaVersion"
	KindBoundaryMismatch Kind = "BoundaryMismatch"
	KindLeafCountMismatch Kind = "LeafCountMismatch"
	KindManifestMismatch Kind = "ManifestMismatch"
	KindRootMismatch     Kind = "RootMismatch"
	KindMacMismatch      Kind = "MacMismatch"
	KindSidecarMissing   Kind = "SidecarMissing"
	KindInternal         Kind = "Internal"
)

// Error wraps an underlying cause with a Kind and an offending identifier
// (a block_id or a "level/index" pair), per spec section 7's requirement
// that every failure print "a one-line reason plus the offending identifier".
type Error struct {
	Kind    Kind
	Ident   string // e.g. "block_id=7" or "level=2 index=1"
	Cause   error
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Ident != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Message, e.Ident, e.Cause)
	case e.Ident != "":
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Ident)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with no offending identifier.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithIdent attaches the offending identifier, e.g. "block_id=3".
func (e *Error) WithIdent(ident string) *Error {
	e2 := *e
	e2.Ident = ident
	return &e2
}

// KindOf extracts the Kind of err, or KindInternal if err is not (or does
// not wrap) a *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// ExitCode maps a Kind to the CLI exit code from spec section 6.
func ExitCode(kind Kind) int {
	switch kind {
	case KindIO, KindDecodeFormat:
		return 2
	case KindSchemaVersion, KindManifestMismatch:
		return 3
	case KindBoundaryMismatch, KindLeafCountMismatch, KindRootMismatch, KindMacMismatch, KindSidecarMissing:
		return 4
	default:
		return 1
	}
}

// ExitCodeFor returns the CLI exit code for err: 0 when err is nil.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return ExitCode(KindOf(err))
}

// Sentinel causes, wrapped by the above constructors where useful.
var (
	ErrManifestMismatch = errors.New("recomputed root does not match manifest")
	ErrRootMismatch     = errors.New("folded root does not match manifest")
	ErrMacMismatch      = errors.New("transcript MAC did not verify")
	ErrBoundaryMismatch = errors.New("adjacent boundary digests differ")
	ErrSidecarMissing   = errors.New("sidecar record missing or truncated")
)
