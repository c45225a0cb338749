package db

import "errors"

// Structural failures the store returns as typed errors so callers can
// distinguish them from plain query errors.
var (
	// ErrDuplicateTitle is returned when a folder title already exists.
	ErrDuplicateTitle = errors.New("duplicate title")

	// ErrFolderNotEmpty is returned when removing a folder that still has channels.
	ErrFolderNotEmpty = errors.New("folder not empty")

	// ErrNotFound is returned when a referenced folder, channel or item does not exist.
	ErrNotFound = errors.New("not found")
)
