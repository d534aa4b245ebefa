package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrNotProvisioned is returned when the carrier data model is not
	// present in the backing store. Operators distinguish "not deployed
	// yet" from a broken deployment through this error.
	ErrNotProvisioned = errors.New("carrier data model not provisioned")

	// ErrDuplicate is returned when a write hits a uniqueness constraint.
	// Callers resolve it by re-reading the existing row.
	ErrDuplicate = errors.New("duplicate entity")
)
