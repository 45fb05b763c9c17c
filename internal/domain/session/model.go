package session

import (
	"sync"
	"time"

	"github.com/jpender/fermata/internal/midi"
)

// Session is an open, mutable, in-memory sequence plus its bookkeeping.
// At most one session exists per identifier and identifiers are never
// reused. The mutex serializes mutations so concurrent transports get
// at most one in-flight mutation per session.
type Session struct {
	ID           string         `json:"id"`
	ProjectID    string         `json:"project_id"`
	FilePath     *string        `json:"file_path,omitempty"`
	Seq          *midi.Sequence `json:"-"`
	Dirty        bool           `json:"dirty"`
	LastBackupID *string        `json:"last_backup_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActivity time.Time      `json:"last_activity"`

	mu sync.Mutex
}

// Lock acquires the session's mutation lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's mutation lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Backup is an immutable serialized snapshot of a sequence. It holds raw
// encoded bytes, decoupled from the live sequence, so later mutation of the
// session cannot corrupt it.
type Backup struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	FilePath  *string   `json:"file_path,omitempty"`
	Raw       []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Info is a lightweight session view for listings.
type Info struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	FilePath     *string   `json:"file_path,omitempty"`
	Dirty        bool      `json:"dirty"`
	PPQ          int       `json:"ppq"`
	TrackCount   int       `json:"track_count"`
	NoteCount    int       `json:"note_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// TrackInfo summarizes one track for get_session.
type TrackInfo struct {
	Index            int    `json:"index"`
	Name             string `json:"name"`
	Channel          uint8  `json:"channel"`
	Program          *uint8 `json:"program_number,omitempty"`
	NoteCount        int    `json:"note_count"`
	ControlCount     int    `json:"control_change_count"`
	PitchBendCount   int    `json:"pitch_bend_count"`
}

// Description is the full header view of a session.
type Description struct {
	Info           Info                  `json:"session"`
	PPQ            int                   `json:"ppq"`
	Tempos         []midi.TempoChange    `json:"tempos"`
	TimeSignatures []midi.TimeSignature  `json:"time_signatures"`
	Tracks         []TrackInfo           `json:"tracks"`
	LastBackupID   *string               `json:"last_backup_id,omitempty"`
}
