package service

import (
	"errors"

	"github.com/okian/kickoff/internal/adapters/repository"
)

// Sentinel errors returned by the service.
var (
	// ErrNotFound is the storage not-found kind; errors.Is matches both.
	ErrNotFound       = repository.ErrNotFound
	// ErrConflict is a write that collided with existing rows, such as two
	// seasons started for one league at once.
	ErrConflict       = repository.ErrDuplicateID
	ErrInvalidRound   = errors.New("invalid round")
	ErrNotStarted     = errors.New("service not started")
	ErrQueueFull      = errors.New("job queue is full")
	ErrSeasonComplete = errors.New("no scheduled fixtures left in season")
)
