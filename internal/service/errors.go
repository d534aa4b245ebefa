package service

import "errors"

var (
	// ErrInvalidUserID is returned when the resolved user id is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidLocation is returned when ping coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidStatus is returned when a status token is not settable
	// through this API.
	ErrInvalidStatus = errors.New("invalid carrier status")

	// ErrNotRegistered is returned when an operation requires an existing
	// carrier profile and the user has none.
	ErrNotRegistered = errors.New("carrier not registered")
)
