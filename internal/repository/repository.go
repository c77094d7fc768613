package repository

import (
	"errors"

	"github.com/spec-kit/complaint-service/internal/domain"
)

var (
	// ErrNotFound is returned when a record does not exist or the id cannot
	// address one in the backend.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEmail is returned when a user with the same email exists.
	ErrDuplicateEmail = errors.New("repository: email already registered")
)

// ComplaintFilter is an exact-match conjunction; nil fields are unconstrained.
type ComplaintFilter struct {
	Status   *domain.ComplaintStatus
	Priority *domain.ComplaintPriority
}

// Matches reports whether complaint satisfies the filter.
func (f ComplaintFilter) Matches(c *domain.Complaint) bool {
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.Priority != nil && c.Priority != *f.Priority {
		return false
	}
	return true
}
