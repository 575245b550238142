package roster

import "errors"

var (
	// ErrInsufficientPlayers is returned when fewer than four players are eligible.
	ErrInsufficientPlayers = errors.New("insufficient players")
	// ErrUnknownPlayerReference marks a history record naming a player outside
	// the current roster. It is reported, never returned as a failure.
	ErrUnknownPlayerReference = errors.New("unknown player reference")
)
