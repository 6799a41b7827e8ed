package services

import "errors"

// ErrUnauthenticated is returned when an approval action arrives without a
// resolvable actor identity.
var ErrUnauthenticated = errors.New("no authenticated actor for this action")

// ErrValidation is returned for malformed or inconsistent input.
var ErrValidation = errors.New("validation failed")
