package service

import (
	"errors"

	"github.com/meera-jewels/retail-api/internal/repository"
)

// Common service errors
var (
	// ErrNotFound is returned when a referenced lead, report or other resource is unknown
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidTransition is returned when a stage move is requested out of a
	// terminal stage or to an undefined stage name
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrInvalidAssignee is returned when the salesperson id is unknown,
	// inactive or not sales-eligible
	ErrInvalidAssignee = errors.New("invalid assignee")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrTransient is carried by errors from the repository layer when the
	// store stayed unreachable through all read retries. Callers should
	// retry the request later.
	ErrTransient = repository.ErrUnavailable
)
