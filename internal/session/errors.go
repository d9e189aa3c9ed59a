// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package session

import (
	"errors"
	"fmt"
)

// ErrNoVideosAvailable indicates the eligible catalog is empty regardless of
// limit state. The parent needs to approve channels (or unban videos) before
// the grid can be served. Distinct from the intentionally empty grid returned
// while Locked.
var ErrNoVideosAvailable = errors.New("no eligible videos available")

// ValidationError rejects malformed input: negative durations, unknown watch
// kinds, out-of-range grid counts. Not retryable.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageUnavailableError indicates the watch log or catalog could not be
// reached. Transient; the caller may retry. It must never be interpreted as
// "no usage today" - treating a read failure as zero minutes watched would
// wrongly unlock extra viewing time.
type StorageUnavailableError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying storage error for errors.Is/As.
func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// storageErr wraps a store failure with its operation name.
func storageErr(op string, err error) error {
	return &StorageUnavailableError{Op: op, Err: err}
}
