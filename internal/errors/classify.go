package errors

import (
	"errors"
	"syscall"
)

// Category represents the type of error for display and handling purposes.
type Category int

const (
	// CategoryUnknown is the default for unclassified errors.
	CategoryUnknown Category = iota
	// CategoryUser indicates an error the user can fix (bad input, dates outside a task).
	CategoryUser
	// CategorySystem indicates a failed store call or a filesystem problem.
	CategorySystem
	// CategoryDrift indicates metadata and blob content that disagree.
	CategoryDrift
	// CategoryInternal indicates an internal bug or unexpected state.
	CategoryInternal
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryUser:
		return "user"
	case CategorySystem:
		return "system"
	case CategoryDrift:
		return "drift"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Classify determines the category of an error.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	// Drift is checked before NotFound since BlobMissingError matches both.
	if errors.Is(err, ErrBlobMissing) {
		return CategoryDrift
	}

	if IsUserError(err) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrAttachmentConflict) ||
		errors.Is(err, ErrNotFound) {
		return CategoryUser
	}

	if IsSystemError(err) || errors.Is(err, ErrStore) || isSystemLevel(err) {
		return CategorySystem
	}

	return CategoryUnknown
}

// isSystemLevel checks if an error is a system-level error.
func isSystemLevel(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ENOSPC: // No space left on device
			return true
		case syscall.EACCES, syscall.EPERM: // Permission denied
			return true
		case syscall.EIO: // I/O error
			return true
		case syscall.EROFS: // Read-only filesystem
			return true
		}
	}

	return errors.Is(err, ErrDiskFull) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrLockHeld)
}

// ClassifiedError wraps an error with its classification.
type ClassifiedError struct {
	Err      error
	Category Category
}

func (e *ClassifiedError) Error() string {
	return e.Err.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// WithCategory wraps an error with an explicit category.
func WithCategory(err error, category Category) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{
		Err:      err,
		Category: category,
	}
}

// GetCategory returns the category of an error.
// If the error was wrapped with WithCategory, returns that category.
// Otherwise, uses Classify to determine the category.
func GetCategory(err error) Category {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category
	}
	return Classify(err)
}

// IsUserCategory returns true if the error is a user-fixable error.
func IsUserCategory(err error) bool {
	return GetCategory(err) == CategoryUser
}

// IsSystemCategory returns true if the error is a system-level error.
func IsSystemCategory(err error) bool {
	return GetCategory(err) == CategorySystem
}

// IsDriftCategory returns true if the error reports metadata/blob drift.
func IsDriftCategory(err error) bool {
	return GetCategory(err) == CategoryDrift
}

// FormatByCategory returns a user-appropriate error message based on category.
func FormatByCategory(err error) string {
	if err == nil {
		return ""
	}

	category := GetCategory(err)
	msg := err.Error()

	switch category {
	case CategoryUser:
		if suggestion := GetSuggestion(err); suggestion != "" {
			return msg + "\n\nTry: " + suggestion
		}
		return msg

	case CategorySystem:
		if suggestion := GetSuggestion(err); suggestion != "" {
			return "System error: " + msg + "\n\n" + suggestion
		}
		return "System error: " + msg

	case CategoryDrift:
		if suggestion := GetSuggestion(err); suggestion != "" {
			return "Out of sync: " + msg + "\n\n" + suggestion
		}
		return "Out of sync: " + msg

	default:
		return msg
	}
}
