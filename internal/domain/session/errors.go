package session

import "errors"

var (
	// ErrSessionNotFound indicates the session doesn't exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrBackupNotFound indicates the backup doesn't exist.
	ErrBackupNotFound = errors.New("backup not found")
	// ErrTrackNotFound indicates a track index outside the sequence.
	ErrTrackNotFound = errors.New("track not found")
	// ErrNoSavePath indicates a save with no path given and none remembered.
	ErrNoSavePath = errors.New("session has no file path")
	// ErrNoBackup indicates a revert on a session that was never backed up.
	ErrNoBackup = errors.New("session has no backup")
	// ErrInvalidInput indicates invalid session input.
	ErrInvalidInput = errors.New("invalid session input")
)
