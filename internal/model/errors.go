package model

import "errors"

// ErrUnknownEnum is returned when a value is not a member of its enumeration.
var ErrUnknownEnum = errors.New("unknown enumeration value")
