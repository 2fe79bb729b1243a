// Package errors provides consistent error types for tasklog.
// It defines user-fixable errors (bad input, dates outside a task window),
// system errors (a data or blob store call failed), and drift errors
// (metadata and stored content disagree).
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manav03panchal/tasklog/internal/calendar"
)

// Standard sentinel errors for common conditions. Typed errors below match
// them with errors.Is.
var (
	ErrValidation         = errors.New("invalid input")
	ErrOutOfRange         = errors.New("date outside task window")
	ErrStore              = errors.New("store operation failed")
	ErrNotFound           = errors.New("not found")
	ErrBlobMissing        = errors.New("document content missing from blob store")
	ErrAttachmentConflict = errors.New("range change would remove days with attachments")
	ErrLockHeld           = errors.New("data directory locked by another process")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrDiskFull           = errors.New("disk full")
)

// UserError represents an error that the user can fix.
type UserError struct {
	Message    string // What happened
	Suggestion string // How to fix it
	Field      string // The field/input that caused the error (optional)
	Value      string // The invalid value (optional)
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Field != "" && e.Value != "" {
		msg = fmt.Sprintf("%s: '%s'", e.Message, e.Value)
	}
	return msg
}

// NewUserError creates a new UserError.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewUserErrorWithField creates a new UserError with field context.
func NewUserErrorWithField(field, value, message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Field:      field,
		Value:      value,
		Suggestion: suggestion,
	}
}

// SystemError represents a system-level error that the user cannot directly fix.
type SystemError struct {
	Message string // What happened
	Cause   error  // The underlying error
	Op      string // The operation that failed (optional)
}

func (e *SystemError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s during %s", e.Message, e.Op)
	}
	return e.Message
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// NewSystemError creates a new SystemError.
func NewSystemError(message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
	}
}

// NewSystemErrorWithOp creates a new SystemError with operation context.
func NewSystemErrorWithOp(op, message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
		Op:      op,
	}
}

// ValidationError reports bad user input. Nothing has been written when it is returned.
type ValidationError struct {
	Field   string
	Message string
	Err     error // optional underlying cause
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// OutOfRangeError reports a date outside a task's [Start, End] window.
type OutOfRangeError struct {
	Date  calendar.Date
	Start calendar.Date
	End   calendar.Date
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s is outside the task window %s..%s", e.Date, e.Start, e.End)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// StoreError reports a failed data store or blob store call. It is never retried.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Is(target error) bool { return target == ErrStore }

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err with the failing operation. A nil err stays nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Kind string // task, log, document
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// BlobMissingError reports document metadata whose content is absent from the
// blob store. It matches both ErrNotFound and ErrBlobMissing.
type BlobMissingError struct {
	DocumentID string
	Path       string
	Err        error
}

func (e *BlobMissingError) Error() string {
	return fmt.Sprintf("document %s: content missing at %s", e.DocumentID, e.Path)
}

func (e *BlobMissingError) Is(target error) bool {
	return target == ErrBlobMissing || target == ErrNotFound
}

func (e *BlobMissingError) Unwrap() error { return e.Err }

// AttachmentConflictError reports days that would lose their log while still
// holding documents.
type AttachmentConflictError struct {
	Dates     []calendar.Date
	Documents int
}

func (e *AttachmentConflictError) Error() string {
	days := make([]string, len(e.Dates))
	for i, d := range e.Dates {
		days[i] = d.String()
	}
	return fmt.Sprintf("%d document(s) attached to days leaving the range: %s",
		e.Documents, strings.Join(days, ", "))
}

func (e *AttachmentConflictError) Is(target error) bool { return target == ErrAttachmentConflict }

// IsUserError checks if an error is a UserError.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}

// IsSystemError checks if an error is a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// AsUserError extracts a UserError from an error chain.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	ok := errors.As(err, &ue)
	return ue, ok
}

// AsSystemError extracts a SystemError from an error chain.
func AsSystemError(err error) (*SystemError, bool) {
	var se *SystemError
	ok := errors.As(err, &se)
	return se, ok
}

// Is and As re-export the standard library helpers so callers need one import.
var (
	Is = errors.Is
	As = errors.As
)

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
