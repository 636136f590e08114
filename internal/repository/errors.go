// Package repository implements SQL persistence for the lifecycle
// engine's entities.  Sentinel errors defined here let handlers and
// services distinguish failure scenarios without string matching:
// ErrNotFound maps to 404, ErrForbidden to 403, and ErrConflict to a
// lost compare-and-swap race (the caller may retry or report 409).
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a guarded update matched no row: the
// entity changed underneath the caller between read and write.  The
// redemption and refund flows rely on this to serialise concurrent
// attempts against the same unit.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by user creation on a duplicate email.
var ErrEmailExists = errors.New("email already exists")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
