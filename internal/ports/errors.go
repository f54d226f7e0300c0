// internal/ports/errors.go
package ports

import "errors"

// ErrNotFound is returned by repositories when a record does not exist.
// Services translate it into the entity-specific not-found error.
var ErrNotFound = errors.New("record not found")

// ErrPositioningConflict is returned when saving a contract request would
// violate the one-active-request-per-positioning rule.
var ErrPositioningConflict = errors.New("an active contract request already exists for this positioning")
