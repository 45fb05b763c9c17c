package mcp

import (
	"errors"
	"fmt"

	"github.com/jpender/fermata/internal/domain/project"
	"github.com/jpender/fermata/internal/domain/session"
	"github.com/jpender/fermata/internal/domain/transform"
	"github.com/jpender/fermata/internal/midi"
	"github.com/jpender/fermata/internal/timeline"
)

// APIError is the structured error surfaced at the tool boundary.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to tool error codes. The message is the
// domain error text, which names the offending id or field.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: err.Error(), RecoveryHint: "Use list_projects to see registered projects"}
	case errors.Is(err, session.ErrSessionNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: err.Error(), RecoveryHint: "Use list_sessions to see open sessions"}
	case errors.Is(err, session.ErrBackupNotFound):
		return &APIError{Code: "BACKUP_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, session.ErrTrackNotFound):
		return &APIError{Code: "TRACK_NOT_FOUND", Message: err.Error(), RecoveryHint: "Use get_session to see track indexes"}
	case errors.Is(err, project.ErrPathOutsideProject):
		return &APIError{Code: "PATH_OUTSIDE_PROJECT", Message: err.Error(), RecoveryHint: "Paths are relative to the project root"}
	case errors.Is(err, session.ErrNoSavePath):
		return &APIError{Code: "NO_SAVE_PATH", Message: err.Error(), RecoveryHint: "Pass a path to save_midi"}
	case errors.Is(err, session.ErrNoBackup):
		return &APIError{Code: "NO_BACKUP", Message: err.Error(), RecoveryHint: "Call backup_session first"}
	case errors.Is(err, midi.ErrFormat):
		return &APIError{Code: "MIDI_FORMAT_ERROR", Message: err.Error()}
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, transform.ErrInvalidArgument),
		errors.Is(err, midi.ErrInvalidComposition),
		errors.Is(err, timeline.ErrInvalidPosition):
		return &APIError{Code: "INVALID_ARGUMENT", Message: err.Error()}
	default:
		return err
	}
}
