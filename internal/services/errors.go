package services

import "errors"

// ErrInsufficientData marks the routine business case of an item with too
// little consumption history to forecast. It is surfaced to callers as a
// structured success=false response, never as a transport error.
var ErrInsufficientData = errors.New("insufficient historical data")

// ErrInvalidRange marks a malformed or reversed date range. This is a
// caller bug and fails fast.
var ErrInvalidRange = errors.New("invalid date range")
