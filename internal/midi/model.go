package midi

import "sort"

// Sequence is an in-memory MIDI document: a fixed time resolution plus
// tick-indexed tempo and time-signature maps and a list of tracks.
type Sequence struct {
	PPQ    int             `json:"ppq"`
	Tempos []TempoChange   `json:"tempos"`
	Meters []TimeSignature `json:"time_signatures"`
	Tracks []*Track        `json:"tracks"`
}

// TempoChange sets the tempo in beats per minute from a tick onward.
type TempoChange struct {
	Tick int64   `json:"tick"`
	BPM  float64 `json:"bpm"`
}

// TimeSignature sets the meter from a tick onward.
type TimeSignature struct {
	Tick        int64 `json:"tick"`
	Numerator   uint8 `json:"numerator"`
	Denominator uint8 `json:"denominator"`
}

// Track holds the three independent event collections of one MIDI track.
// ControlChanges are keyed by controller number.
type Track struct {
	Name           string                  `json:"name"`
	Channel        uint8                   `json:"channel"`
	Program        *uint8                  `json:"program_number,omitempty"`
	Notes          []Note                  `json:"notes"`
	ControlChanges map[uint8][]ControlChange `json:"control_changes,omitempty"`
	PitchBends     []PitchBend             `json:"pitch_bends,omitempty"`
}

// Note is a pitched event with duration. Velocity is normalized to 0..1.
type Note struct {
	Pitch    uint8   `json:"pitch"`
	Tick     int64   `json:"tick"`
	Duration int64   `json:"duration_ticks"`
	Velocity float64 `json:"velocity"`
	Channel  *uint8  `json:"channel,omitempty"`
}

// End returns the first tick after the note.
func (n Note) End() int64 { return n.Tick + n.Duration }

// ControlChange is a controller value change, normalized to 0..1.
type ControlChange struct {
	Tick    int64   `json:"tick"`
	Value   float64 `json:"value"`
	Channel *uint8  `json:"channel,omitempty"`
}

// PitchBend is a bend event, normalized to -1..1.
type PitchBend struct {
	Tick    int64   `json:"tick"`
	Value   float64 `json:"value"`
	Channel *uint8  `json:"channel,omitempty"`
}

// EventType discriminates the uniform event view.
type EventType string

const (
	EventNote      EventType = "note"
	EventCC        EventType = "cc"
	EventPitchBend EventType = "pitch_bend"
)

// Event is the tagged variant used by queries: exactly the fields for its
// Type are populated.
type Event struct {
	Type       EventType `json:"type"`
	Tick       int64     `json:"tick"`
	Channel    uint8     `json:"channel"`
	Pitch      *uint8    `json:"pitch,omitempty"`
	Duration   *int64    `json:"duration_ticks,omitempty"`
	Velocity   *float64  `json:"velocity,omitempty"`
	Controller *uint8    `json:"controller,omitempty"`
	Value      *float64  `json:"value,omitempty"`
}

// ResolveChannel applies the channel inheritance rule: event override wins,
// otherwise the track channel, otherwise 0.
func ResolveChannel(override *uint8, track *Track) uint8 {
	if override != nil {
		return *override & 0x0f
	}
	if track != nil {
		return track.Channel & 0x0f
	}
	return 0
}

// Normalize restores the sequence invariants after a mutation: both maps
// non-empty, sorted ascending by tick with unique ticks (later entries win),
// and every note at least one tick long.
func (s *Sequence) Normalize() {
	s.Tempos = normalizeTempos(s.Tempos)
	s.Meters = normalizeMeters(s.Meters)
	for _, tr := range s.Tracks {
		for i := range tr.Notes {
			if tr.Notes[i].Duration < 1 {
				tr.Notes[i].Duration = 1
			}
			tr.Notes[i].Velocity = ClampUnit(tr.Notes[i].Velocity)
			if tr.Notes[i].Tick < 0 {
				tr.Notes[i].Tick = 0
			}
		}
	}
}

func normalizeTempos(tempos []TempoChange) []TempoChange {
	out := make([]TempoChange, 0, len(tempos))
	for _, t := range tempos {
		if t.BPM > 0 && t.Tick >= 0 {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []TempoChange{{Tick: 0, BPM: 120}}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tick < out[j].Tick })
	return dedupeByTick(out, func(t TempoChange) int64 { return t.Tick })
}

func normalizeMeters(meters []TimeSignature) []TimeSignature {
	out := make([]TimeSignature, 0, len(meters))
	for _, m := range meters {
		if m.Numerator >= 1 && m.Denominator >= 1 && m.Tick >= 0 {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return []TimeSignature{{Tick: 0, Numerator: 4, Denominator: 4}}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tick < out[j].Tick })
	return dedupeByTick(out, func(m TimeSignature) int64 { return m.Tick })
}

// dedupeByTick keeps the last entry at each tick of a sorted slice.
func dedupeByTick[T any](in []T, tick func(T) int64) []T {
	out := in[:0]
	for i, v := range in {
		if i+1 < len(in) && tick(in[i+1]) == tick(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ClampUnit clamps to the normalized 0..1 range.
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampSigned clamps to the normalized -1..1 range.
func ClampSigned(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampPitch clamps to the MIDI key range 0..127.
func ClampPitch(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}

// Clone returns a deep copy of the sequence.
func (s *Sequence) Clone() *Sequence {
	out := &Sequence{
		PPQ:    s.PPQ,
		Tempos: append([]TempoChange(nil), s.Tempos...),
		Meters: append([]TimeSignature(nil), s.Meters...),
	}
	for _, tr := range s.Tracks {
		out.Tracks = append(out.Tracks, tr.Clone())
	}
	return out
}

// Clone returns a deep copy of the track.
func (t *Track) Clone() *Track {
	out := &Track{
		Name:       t.Name,
		Channel:    t.Channel,
		Notes:      append([]Note(nil), t.Notes...),
		PitchBends: append([]PitchBend(nil), t.PitchBends...),
	}
	if t.Program != nil {
		p := *t.Program
		out.Program = &p
	}
	if t.ControlChanges != nil {
		out.ControlChanges = make(map[uint8][]ControlChange, len(t.ControlChanges))
		for num, ccs := range t.ControlChanges {
			out.ControlChanges[num] = append([]ControlChange(nil), ccs...)
		}
	}
	return out
}

// NoteCount reports the number of notes across all tracks.
func (s *Sequence) NoteCount() int {
	total := 0
	for _, tr := range s.Tracks {
		total += len(tr.Notes)
	}
	return total
}
