package runtime

import (
	"errors"
	"strings"
	"syscall"

	tlerrors "github.com/manav03panchal/tasklog/internal/errors"
	"github.com/manav03panchal/tasklog/internal/syncer"
)

// Exit codes by error category.
const (
	ExitOK     = 0
	ExitUser   = 1
	ExitSystem = 2
	ExitDrift  = 3
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch tlerrors.GetCategory(err) {
	case tlerrors.CategorySystem:
		return ExitSystem
	case tlerrors.CategoryDrift:
		return ExitDrift
	default:
		return ExitUser
	}
}

// FormatError formats an error for the terminal. A partially applied
// command also names the steps that were kept.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	msg := tlerrors.FormatByCategory(err)

	var se *syncer.StepError
	if errors.As(err, &se) && se.Partial() {
		msg += "\n\nAlready applied: " + strings.Join(se.Completed, ", ")
	}
	return msg
}

// IsDiskFullError checks if an error indicates a disk full condition.
// It checks for ENOSPC (Linux/macOS) and common disk full error patterns.
func IsDiskFullError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, tlerrors.ErrDiskFull) {
		return true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && errno == syscall.ENOSPC {
		return true
	}

	errStr := strings.ToLower(err.Error())
	diskFullPatterns := []string{
		"no space left on device",
		"disk full",
		"database or disk is full",
		"enospc",
		"not enough space",
		"insufficient disk space",
	}
	for _, pattern := range diskFullPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// WrapDiskFullError marks err as a disk full error when it looks like one,
// so it is classified and explained as such. Other errors pass through.
func WrapDiskFullError(err error) error {
	if err == nil || errors.Is(err, tlerrors.ErrDiskFull) || !IsDiskFullError(err) {
		return err
	}
	return &diskFullError{err: err}
}

type diskFullError struct {
	err error
}

func (e *diskFullError) Error() string { return e.err.Error() }

func (e *diskFullError) Is(target error) bool { return target == tlerrors.ErrDiskFull }

func (e *diskFullError) Unwrap() error { return e.err }
