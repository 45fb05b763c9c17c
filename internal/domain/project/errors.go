package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrPathOutsideProject indicates a path that resolves outside the
	// project root.
	ErrPathOutsideProject = errors.New("path escapes project root")
)
