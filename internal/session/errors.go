package session

import (
	"errors"
	"fmt"

	"github.com/mauv0809/padel-rotation/internal/rating"
)

var (
	// ErrNotFound is returned for unknown sessions, matches or attendees.
	ErrNotFound = errors.New("not found")
	// ErrMatchResolved is returned when a result is submitted for a match that already has one.
	ErrMatchResolved = fmt.Errorf("match already resolved: %w", rating.ErrInvalidResult)
	// ErrConcurrentUpdate is returned when the state a write was computed from
	// changed before it was committed: a participant's rating for a result, or
	// the last resolved round for a schedule replacement.
	ErrConcurrentUpdate = errors.New("session changed concurrently")
)
