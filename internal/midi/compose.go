package midi

import (
	"errors"
	"fmt"
)

// ErrInvalidComposition indicates a composition description that fails validation.
var ErrInvalidComposition = errors.New("invalid composition")

// DefaultPPQ is the resolution used when a composition omits one.
const DefaultPPQ = 480

// CompositionRequest is the declarative description accepted by create_midi.
type CompositionRequest struct {
	PPQ            int                `json:"ppq,omitempty"`
	Tempos         []TempoChange      `json:"tempos,omitempty"`
	TimeSignatures []TimeSignature    `json:"time_signatures,omitempty"`
	Tracks         []CompositionTrack `json:"tracks,omitempty"`
}

// CompositionTrack describes one track of a composition.
type CompositionTrack struct {
	Name    string             `json:"name,omitempty"`
	Channel *uint8             `json:"channel,omitempty"`
	Program *uint8             `json:"program_number,omitempty"`
	Events  []CompositionEvent `json:"events,omitempty"`
}

// CompositionEvent is the tagged event variant of a composition track.
type CompositionEvent struct {
	Type       EventType `json:"type"`
	Tick       int64     `json:"tick"`
	Channel    *uint8    `json:"channel,omitempty"`
	Pitch      *int      `json:"pitch,omitempty"`
	Duration   *int64    `json:"duration_ticks,omitempty"`
	Velocity   *float64  `json:"velocity,omitempty"`
	Controller *int      `json:"controller,omitempty"`
	Value      *float64  `json:"value,omitempty"`
}

// Compose builds a Sequence from a composition description. Missing tempo and
// time-signature maps default to 120 BPM and 4/4 at tick 0.
func Compose(req CompositionRequest) (*Sequence, error) {
	ppq := req.PPQ
	if ppq == 0 {
		ppq = DefaultPPQ
	}
	if ppq < 1 {
		return nil, fmt.Errorf("%w: ppq must be >= 1, got %d", ErrInvalidComposition, req.PPQ)
	}

	seq := &Sequence{
		PPQ:    ppq,
		Tempos: append([]TempoChange(nil), req.Tempos...),
		Meters: append([]TimeSignature(nil), req.TimeSignatures...),
	}
	for i, t := range seq.Tempos {
		if t.BPM <= 0 {
			return nil, fmt.Errorf("%w: tempos[%d].bpm must be > 0", ErrInvalidComposition, i)
		}
		if t.Tick < 0 {
			return nil, fmt.Errorf("%w: tempos[%d].tick must be >= 0", ErrInvalidComposition, i)
		}
	}
	for i, m := range seq.Meters {
		if m.Numerator < 1 || m.Denominator < 1 {
			return nil, fmt.Errorf("%w: time_signatures[%d] must have numerator and denominator >= 1", ErrInvalidComposition, i)
		}
		if m.Tick < 0 {
			return nil, fmt.Errorf("%w: time_signatures[%d].tick must be >= 0", ErrInvalidComposition, i)
		}
	}

	for ti, src := range req.Tracks {
		track, err := composeTrack(src)
		if err != nil {
			return nil, fmt.Errorf("tracks[%d]: %w", ti, err)
		}
		seq.Tracks = append(seq.Tracks, track)
	}

	seq.Normalize()
	return seq, nil
}

func composeTrack(src CompositionTrack) (*Track, error) {
	track := &Track{Name: src.Name}
	if src.Channel != nil {
		if *src.Channel > 15 {
			return nil, fmt.Errorf("%w: channel must be 0-15", ErrInvalidComposition)
		}
		track.Channel = *src.Channel
	}
	if src.Program != nil {
		if *src.Program > 127 {
			return nil, fmt.Errorf("%w: program_number must be 0-127", ErrInvalidComposition)
		}
		prog := *src.Program
		track.Program = &prog
	}

	for ei, ev := range src.Events {
		if ev.Tick < 0 {
			return nil, fmt.Errorf("%w: events[%d].tick must be >= 0", ErrInvalidComposition, ei)
		}
		if ev.Channel != nil && *ev.Channel > 15 {
			return nil, fmt.Errorf("%w: events[%d].channel must be 0-15", ErrInvalidComposition, ei)
		}
		switch ev.Type {
		case EventNote:
			if ev.Pitch == nil || *ev.Pitch < 0 || *ev.Pitch > 127 {
				return nil, fmt.Errorf("%w: events[%d] note pitch must be 0-127", ErrInvalidComposition, ei)
			}
			duration := int64(1)
			if ev.Duration != nil {
				if *ev.Duration < 1 {
					return nil, fmt.Errorf("%w: events[%d] duration_ticks must be >= 1", ErrInvalidComposition, ei)
				}
				duration = *ev.Duration
			}
			velocity := 0.8
			if ev.Velocity != nil {
				velocity = ClampUnit(*ev.Velocity)
			}
			track.Notes = append(track.Notes, Note{
				Pitch:    uint8(*ev.Pitch),
				Tick:     ev.Tick,
				Duration: duration,
				Velocity: velocity,
				Channel:  ev.Channel,
			})
		case EventCC:
			if ev.Controller == nil || *ev.Controller < 0 || *ev.Controller > 127 {
				return nil, fmt.Errorf("%w: events[%d] cc controller must be 0-127", ErrInvalidComposition, ei)
			}
			if ev.Value == nil {
				return nil, fmt.Errorf("%w: events[%d] cc value is required", ErrInvalidComposition, ei)
			}
			if track.ControlChanges == nil {
				track.ControlChanges = map[uint8][]ControlChange{}
			}
			controller := uint8(*ev.Controller)
			track.ControlChanges[controller] = append(track.ControlChanges[controller], ControlChange{
				Tick:    ev.Tick,
				Value:   ClampUnit(*ev.Value),
				Channel: ev.Channel,
			})
		case EventPitchBend:
			if ev.Value == nil {
				return nil, fmt.Errorf("%w: events[%d] pitch_bend value is required", ErrInvalidComposition, ei)
			}
			track.PitchBends = append(track.PitchBends, PitchBend{
				Tick:    ev.Tick,
				Value:   ClampSigned(*ev.Value),
				Channel: ev.Channel,
			})
		default:
			return nil, fmt.Errorf("%w: events[%d] has unknown type %q", ErrInvalidComposition, ei, ev.Type)
		}
	}
	return track, nil
}
