package mcp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jpender/fermata/internal/domain/project"
	"github.com/jpender/fermata/internal/domain/session"
	"github.com/jpender/fermata/internal/domain/transform"
	"github.com/jpender/fermata/internal/midi"
	"github.com/jpender/fermata/internal/timeline"
	"github.com/stretchr/testify/require"
)

func TestMapError_Codes(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{project.ErrProjectNotFound, "PROJECT_NOT_FOUND"},
		{session.ErrSessionNotFound, "SESSION_NOT_FOUND"},
		{session.ErrBackupNotFound, "BACKUP_NOT_FOUND"},
		{session.ErrTrackNotFound, "TRACK_NOT_FOUND"},
		{project.ErrPathOutsideProject, "PATH_OUTSIDE_PROJECT"},
		{session.ErrNoSavePath, "NO_SAVE_PATH"},
		{session.ErrNoBackup, "NO_BACKUP"},
		{midi.ErrFormat, "MIDI_FORMAT_ERROR"},
		{project.ErrInvalidInput, "INVALID_ARGUMENT"},
		{session.ErrInvalidInput, "INVALID_ARGUMENT"},
		{transform.ErrInvalidArgument, "INVALID_ARGUMENT"},
		{midi.ErrInvalidComposition, "INVALID_ARGUMENT"},
		{timeline.ErrInvalidPosition, "INVALID_ARGUMENT"},
	}
	for _, tc := range cases {
		mapped := MapError(tc.err)
		var apiErr *APIError
		require.ErrorAs(t, mapped, &apiErr, "error %v", tc.err)
		require.Equal(t, tc.code, apiErr.Code)
	}
}

func TestMapError_WrappedErrorsKeepTheirCode(t *testing.T) {
	wrapped := fmt.Errorf("session %q: %w", "s1", session.ErrSessionNotFound)
	mapped := MapError(wrapped)
	var apiErr *APIError
	require.ErrorAs(t, mapped, &apiErr)
	require.Equal(t, "SESSION_NOT_FOUND", apiErr.Code)
	require.Contains(t, apiErr.Message, "s1")
}

func TestMapError_PassesThroughUnknownErrors(t *testing.T) {
	unknown := errors.New("disk on fire")
	require.Equal(t, unknown, MapError(unknown))
	require.NoError(t, MapError(nil))
}
