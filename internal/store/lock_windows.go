//go:build windows

package store

import (
	"os"
)

// Windows has no flock; the PID file alone guards the directory.
func flockAcquire(file *os.File) error { return nil }

func flockRelease(file *os.File) error { return nil }

// isProcessRunning assumes a live process whenever the PID can be opened.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = process.Release()
	return true
}
