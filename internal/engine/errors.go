package engine

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/bamsammich/fileops/internal/platform"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrTypeConflict   = errors.New("type conflict")
	ErrReadOnlyTarget = errors.New("read-only target")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrIO             = errors.New("i/o failure")
	ErrVerifyMismatch = errors.New("verification mismatch")
)

// InvalidRequestError is returned before any native call when a Request
// breaks one of its invariants.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string { return "invalid request: " + e.Reason }
func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }

// NotFoundError names the path that is missing: the source, or the parent
// directory of the destination.
type NotFoundError struct {
	Err  error
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s: %v", e.Path, e.Err)
}
func (e *NotFoundError) Unwrap() []error      { return []error{ErrNotFound, e.Err} }
func (e *NotFoundError) Is(target error) bool { return target == fs.ErrNotExist }

// AlreadyExistsError is returned when the destination exists and the
// operation does not overwrite.
type AlreadyExistsError struct {
	Err  error
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("already exists: %s", e.Path)
}
func (e *AlreadyExistsError) Unwrap() []error      { return []error{ErrAlreadyExists, e.Err} }
func (e *AlreadyExistsError) Is(target error) bool { return target == fs.ErrExist }

// TypeConflictError is returned when the destination exists as the wrong
// kind of entry.
type TypeConflictError struct {
	Err   error
	Path  string
	IsDir bool // what the destination actually is
}

func (e *TypeConflictError) Error() string {
	if e.IsDir {
		return fmt.Sprintf("type conflict: %s is a directory", e.Path)
	}
	return fmt.Sprintf("type conflict: %s is not a directory", e.Path)
}
func (e *TypeConflictError) Unwrap() []error { return []error{ErrTypeConflict, e.Err} }

// ReadOnlyTargetError is returned when a read-only or hidden destination
// blocks the operation and the options do not permit clearing it.
type ReadOnlyTargetError struct {
	Err        error
	Path       string
	Attributes platform.Attributes
}

func (e *ReadOnlyTargetError) Error() string {
	return fmt.Sprintf("read-only target: %s (%s)", e.Path, e.Attributes)
}
func (e *ReadOnlyTargetError) Unwrap() []error      { return []error{ErrReadOnlyTarget, e.Err} }
func (e *ReadOnlyTargetError) Is(target error) bool { return target == fs.ErrPermission }

// UnauthorizedError is a permission failure not explained by attributes.
type UnauthorizedError struct {
	Err  error
	Path string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Path)
}
func (e *UnauthorizedError) Unwrap() []error      { return []error{ErrUnauthorized, e.Err} }
func (e *UnauthorizedError) Is(target error) bool { return target == fs.ErrPermission }

// IOError is the catch-all for native failures. Path is the side found to
// be unreadable, or empty when neither could be singled out.
type IOError struct {
	Err         error
	Source      string
	Destination string
	Path        string
	Code        platform.ErrorCode
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("i/o failure on %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("i/o failure %s -> %s: %v", e.Source, e.Destination, e.Err)
}
func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// VerifyMismatchError is returned when source and destination digests differ.
type VerifyMismatchError struct {
	Source            string
	Destination       string
	Algorithm         Algorithm
	SourceDigest      string
	DestinationDigest string
}

func (e *VerifyMismatchError) Error() string {
	return fmt.Sprintf("%s mismatch: %s (%s) != %s (%s)",
		e.Algorithm, e.Source, e.SourceDigest, e.Destination, e.DestinationDigest)
}
func (e *VerifyMismatchError) Unwrap() error { return ErrVerifyMismatch }
