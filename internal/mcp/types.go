package mcp

import (
	"fmt"

	"github.com/jpender/fermata/internal/domain/query"
	"github.com/jpender/fermata/internal/domain/session"
	"github.com/jpender/fermata/internal/midi"
	"github.com/jpender/fermata/internal/timeline"
)

// Projects

type CreateProjectParams struct {
	ID       string `json:"id,omitempty" jsonschema:"unique project identifier, generated if omitted"`
	Name     string `json:"name" jsonschema:"project display name"`
	RootPath string `json:"root_path" jsonschema:"absolute directory all project file paths are confined to"`
}

type GetProjectParams struct {
	ID string `json:"id" jsonschema:"project identifier"`
}

type ListProjectsParams struct{}

// Session lifecycle

type OpenMidiParams struct {
	ProjectID string `json:"project_id" jsonschema:"project the file belongs to"`
	Path      string `json:"path" jsonschema:"MIDI file path relative to the project root"`
}

type CreateMidiParams struct {
	ProjectID   string                  `json:"project_id" jsonschema:"project the new sequence belongs to"`
	Composition midi.CompositionRequest `json:"composition" jsonschema:"declarative description of the sequence to build"`
}

type SaveMidiParams struct {
	SessionID string `json:"session_id" jsonschema:"session to save"`
	Path      string `json:"path,omitempty" jsonschema:"target path relative to the project root; defaults to the session's remembered path"`
}

type SessionIDParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

type ListSessionsParams struct{}

type SaveMidiResponse struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
	Dirty     bool   `json:"dirty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// Queries

// FilterParams is the shared range and attribute filter: events pass only
// when they match every supplied constraint. Values outside their MIDI
// ranges are rejected, never ignored.
type FilterParams struct {
	StartTicks  *int64   `json:"start_ticks,omitempty" jsonschema:"inclusive lower tick bound"`
	EndTicks    *int64   `json:"end_ticks,omitempty" jsonschema:"exclusive upper tick bound"`
	Types       []string `json:"types,omitempty" jsonschema:"event types to include: note, cc, pitch_bend"`
	Pitches     []int    `json:"pitches,omitempty" jsonschema:"note pitches to include, 0-127"`
	Controllers []int    `json:"controllers,omitempty" jsonschema:"controller numbers to include, 0-127"`
	Channel     *int     `json:"channel,omitempty" jsonschema:"resolved channel to include, 0-15"`
}

func (f FilterParams) selector() (query.Selector, error) {
	sel := query.Selector{
		StartTick: f.StartTicks,
		EndTick:   f.EndTicks,
	}
	for _, t := range f.Types {
		switch et := midi.EventType(t); et {
		case midi.EventNote, midi.EventCC, midi.EventPitchBend:
			sel.Types = append(sel.Types, et)
		default:
			return query.Selector{}, fmt.Errorf("%w: unknown event type %q", session.ErrInvalidInput, t)
		}
	}
	for _, p := range f.Pitches {
		if p < 0 || p > 127 {
			return query.Selector{}, fmt.Errorf("%w: pitch %d outside 0-127", session.ErrInvalidInput, p)
		}
		sel.Pitches = append(sel.Pitches, uint8(p))
	}
	for _, c := range f.Controllers {
		if c < 0 || c > 127 {
			return query.Selector{}, fmt.Errorf("%w: controller %d outside 0-127", session.ErrInvalidInput, c)
		}
		sel.Controllers = append(sel.Controllers, uint8(c))
	}
	if f.Channel != nil {
		if *f.Channel < 0 || *f.Channel > 15 {
			return query.Selector{}, fmt.Errorf("%w: channel %d outside 0-15", session.ErrInvalidInput, *f.Channel)
		}
		ch := uint8(*f.Channel)
		sel.Channel = &ch
	}
	return sel, nil
}

type GetEventsParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Track     int    `json:"track" jsonschema:"track index"`
	FilterParams
	Offset int `json:"offset,omitempty" jsonschema:"pagination offset, default 0"`
	Limit  int `json:"limit,omitempty" jsonschema:"page size, default 512, max 5000"`
}

type GetEventsResponse struct {
	SessionID string `json:"session_id"`
	Track     int    `json:"track"`
	query.Result
}

type DiffSessionsParams struct {
	SessionIDA string `json:"session_id_a" jsonschema:"first session"`
	SessionIDB string `json:"session_id_b" jsonschema:"second session"`
	StartTicks *int64 `json:"start_ticks,omitempty" jsonschema:"inclusive lower tick bound of the shared range"`
	EndTicks   *int64 `json:"end_ticks,omitempty" jsonschema:"exclusive upper tick bound of the shared range"`
}

type ConvertTimeParams struct {
	SessionID    string        `json:"session_id" jsonschema:"session identifier"`
	Ticks        *int64        `json:"ticks,omitempty" jsonschema:"position in ticks"`
	BBT          *timeline.BBT `json:"bbt,omitempty" jsonschema:"position as 1-indexed bar/beat plus tick offset"`
	QuarterNotes *float64      `json:"quarter_notes,omitempty" jsonschema:"position in quarter notes"`
	Seconds      *float64      `json:"seconds,omitempty" jsonschema:"position in seconds"`
}

// Edits

type AddTrackParams struct {
	SessionID     string `json:"session_id" jsonschema:"session identifier"`
	Name          string `json:"name,omitempty" jsonschema:"track name"`
	Channel       *uint8 `json:"channel,omitempty" jsonschema:"MIDI channel 0-15, default 0"`
	ProgramNumber *uint8 `json:"program_number,omitempty" jsonschema:"GM program number 0-127"`
}

type AddTrackResponse struct {
	SessionID string `json:"session_id"`
	Track     int    `json:"track"`
}

type AddNotesParams struct {
	SessionID string      `json:"session_id" jsonschema:"session identifier"`
	Track     int         `json:"track" jsonschema:"track index"`
	Notes     []midi.Note `json:"notes" jsonschema:"notes to insert"`
}

type AddControlChangesParams struct {
	SessionID  string               `json:"session_id" jsonschema:"session identifier"`
	Track      int                  `json:"track" jsonschema:"track index"`
	Controller int                  `json:"controller" jsonschema:"controller number 0-127"`
	Changes    []midi.ControlChange `json:"changes" jsonschema:"control changes to insert"`
}

type AddPitchBendsParams struct {
	SessionID string           `json:"session_id" jsonschema:"session identifier"`
	Track     int              `json:"track" jsonschema:"track index"`
	Bends     []midi.PitchBend `json:"bends" jsonschema:"pitch bends to insert"`
}

type SetTempoParams struct {
	SessionID string  `json:"session_id" jsonschema:"session identifier"`
	Tick      int64   `json:"tick" jsonschema:"tick the tempo takes effect at"`
	BPM       float64 `json:"bpm" jsonschema:"beats per minute, > 0"`
}

type SetTimeSignatureParams struct {
	SessionID   string `json:"session_id" jsonschema:"session identifier"`
	Tick        int64  `json:"tick" jsonschema:"tick the signature takes effect at"`
	Numerator   int    `json:"numerator" jsonschema:"beats per bar, >= 1"`
	Denominator int    `json:"denominator" jsonschema:"beat unit, a power of two in practice"`
}

// Transforms

type QuantizeParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Track     int    `json:"track" jsonschema:"track index"`
	FilterParams
	Grid      string   `json:"grid,omitempty" jsonschema:"musical grid fraction like 1/8; mutually exclusive with grid_ticks"`
	GridTicks int64    `json:"grid_ticks,omitempty" jsonschema:"explicit grid size in ticks; mutually exclusive with grid"`
	Strength  *float64 `json:"strength,omitempty" jsonschema:"snap amount 0-1, default 1"`
	Swing     float64  `json:"swing,omitempty" jsonschema:"swing amount 0-1 applied to odd grid positions"`
}

type HumanizeParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Track     int    `json:"track" jsonschema:"track index"`
	FilterParams
	TimingMs       float64 `json:"timing_ms,omitempty" jsonschema:"maximum timing offset in milliseconds, >= 0"`
	VelocityAmount float64 `json:"velocity_amount,omitempty" jsonschema:"maximum velocity delta 0-1"`
}

type TransposeParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Track     int    `json:"track" jsonschema:"track index"`
	FilterParams
	Semitones int `json:"semitones" jsonschema:"signed semitone shift"`
}

type ConstrainToScaleParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Track     int    `json:"track" jsonschema:"track index"`
	FilterParams
	Key      string `json:"key" jsonschema:"chromatic key root like C or F#"`
	Scale    string `json:"scale" jsonschema:"scale name: major, minor, dorian, mixolydian"`
	Strategy string `json:"strategy,omitempty" jsonschema:"snap direction: nearest (default), up, down"`
}

type FixOverlapsParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Track     int    `json:"track" jsonschema:"track index"`
	FilterParams
	Mode string `json:"mode,omitempty" jsonschema:"trim (default) shortens the earlier note, remove drops the later note"`
}

type LegatoParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Track     int    `json:"track" jsonschema:"track index"`
	FilterParams
	GapTicks int64 `json:"gap_ticks,omitempty" jsonschema:"gap to leave before the next note, >= 0"`
}

type TrimNotesParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Track     int    `json:"track" jsonschema:"track index"`
	FilterParams
	MinDurationTicks int64 `json:"min_duration_ticks" jsonschema:"notes shorter than this are removed, >= 1"`
}

// AffectedResponse reports a mutation's reach. The session is dirty after
// every transform, including zero-match runs.
type AffectedResponse struct {
	SessionID string `json:"session_id"`
	Track     int    `json:"track"`
	Affected  int    `json:"affected"`
	Dirty     bool   `json:"dirty"`
}

// Backups

type RestoreBackupParams struct {
	BackupID string `json:"backup_id" jsonschema:"backup identifier"`
}

type BackupResponse struct {
	BackupID  string `json:"backup_id"`
	SessionID string `json:"session_id"`
	Bytes     int    `json:"bytes"`
}
