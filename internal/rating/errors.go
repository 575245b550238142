package rating

import "errors"

// ErrInvalidResult is returned for a result that cannot be recorded: a tied or
// negative score, or a match that already carries a result.
var ErrInvalidResult = errors.New("invalid result")
