// Package repository contains the data access layer. This file defines
// error values and helpers shared across repositories so handlers can
// translate failure scenarios without inspecting driver internals.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when an insert violates the unique index on
// users.email. The database enforces uniqueness atomically, so this error
// is the single source of duplicate-account conflicts; no repository or
// handler performs a read-then-write existence check.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error number 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
