package persistence

import "errors"

// ErrOptimisticLocking is returned when a save races with a concurrent
// update of the same aggregate version.
var ErrOptimisticLocking = errors.New("aggregate was modified concurrently")
