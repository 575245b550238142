package scheduler

import "errors"

// ErrInvalidConfiguration is returned when courts or rounds are below one.
var ErrInvalidConfiguration = errors.New("invalid configuration")
