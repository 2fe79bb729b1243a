// Package model defines the domain models for tasklog.
package model

import (
	"github.com/google/uuid"
)

// NewID returns a new time-sortable identifier (UUID v7).
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
