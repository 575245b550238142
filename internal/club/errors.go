package club

import "errors"

// ErrNotFound is returned when a player lookup matches nothing.
var ErrNotFound = errors.New("player not found")
