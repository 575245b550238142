package config

import "errors"

// ErrInvalidConfig marks tuning values outside their allowed range.
var ErrInvalidConfig = errors.New("invalid config")
