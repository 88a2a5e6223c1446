package domain

import "errors"

// ErrValidation is wrapped by every field rule in this package, so
// errors.Is(err, ErrValidation) identifies any rejected input.
var ErrValidation = errors.New("validation failed")
