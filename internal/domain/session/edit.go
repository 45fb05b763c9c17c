package session

import (
	"context"
	"fmt"
	"sort"

	"github.com/jpender/fermata/internal/midi"
)

// AddTrack appends an empty track and returns its index.
func (s *Service) AddTrack(ctx context.Context, id, name string, channel, program *uint8) (int, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	sess.Lock()
	defer sess.Unlock()

	track := &midi.Track{Name: name}
	if channel != nil {
		if *channel > 15 {
			return 0, fmt.Errorf("%w: channel must be 0-15", ErrInvalidInput)
		}
		track.Channel = *channel
	}
	if program != nil {
		if *program > 127 {
			return 0, fmt.Errorf("%w: program_number must be 0-127", ErrInvalidInput)
		}
		prog := *program
		track.Program = &prog
	}

	sess.Seq.Tracks = append(sess.Seq.Tracks, track)
	s.markDirty(sess)
	return len(sess.Seq.Tracks) - 1, nil
}

// AddNotes inserts notes into a track, keeping the collection sorted by tick.
func (s *Service) AddNotes(ctx context.Context, id string, trackIndex int, notes []midi.Note) (int, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	sess.Lock()
	defer sess.Unlock()

	track, err := s.track(sess, trackIndex)
	if err != nil {
		return 0, err
	}
	for i, n := range notes {
		if n.Pitch > 127 {
			return 0, fmt.Errorf("%w: notes[%d].pitch must be 0-127", ErrInvalidInput, i)
		}
		if n.Tick < 0 {
			return 0, fmt.Errorf("%w: notes[%d].tick must be >= 0", ErrInvalidInput, i)
		}
		if n.Duration < 1 {
			return 0, fmt.Errorf("%w: notes[%d].duration_ticks must be >= 1", ErrInvalidInput, i)
		}
		if n.Channel != nil && *n.Channel > 15 {
			return 0, fmt.Errorf("%w: notes[%d].channel must be 0-15", ErrInvalidInput, i)
		}
		notes[i].Velocity = midi.ClampUnit(n.Velocity)
	}

	track.Notes = append(track.Notes, notes...)
	sort.SliceStable(track.Notes, func(a, b int) bool { return track.Notes[a].Tick < track.Notes[b].Tick })
	s.markDirty(sess)
	return len(notes), nil
}

// AddControlChanges inserts control changes for one controller number.
func (s *Service) AddControlChanges(ctx context.Context, id string, trackIndex, controller int, changes []midi.ControlChange) (int, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	sess.Lock()
	defer sess.Unlock()

	track, err := s.track(sess, trackIndex)
	if err != nil {
		return 0, err
	}
	if controller < 0 || controller > 127 {
		return 0, fmt.Errorf("%w: controller must be 0-127", ErrInvalidInput)
	}
	for i, cc := range changes {
		if cc.Tick < 0 {
			return 0, fmt.Errorf("%w: control_changes[%d].tick must be >= 0", ErrInvalidInput, i)
		}
		if cc.Channel != nil && *cc.Channel > 15 {
			return 0, fmt.Errorf("%w: control_changes[%d].channel must be 0-15", ErrInvalidInput, i)
		}
		changes[i].Value = midi.ClampUnit(cc.Value)
	}

	if track.ControlChanges == nil {
		track.ControlChanges = map[uint8][]midi.ControlChange{}
	}
	num := uint8(controller)
	track.ControlChanges[num] = append(track.ControlChanges[num], changes...)
	sort.SliceStable(track.ControlChanges[num], func(a, b int) bool {
		return track.ControlChanges[num][a].Tick < track.ControlChanges[num][b].Tick
	})
	s.markDirty(sess)
	return len(changes), nil
}

// AddPitchBends inserts pitch bend events into a track.
func (s *Service) AddPitchBends(ctx context.Context, id string, trackIndex int, bends []midi.PitchBend) (int, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	sess.Lock()
	defer sess.Unlock()

	track, err := s.track(sess, trackIndex)
	if err != nil {
		return 0, err
	}
	for i, pb := range bends {
		if pb.Tick < 0 {
			return 0, fmt.Errorf("%w: pitch_bends[%d].tick must be >= 0", ErrInvalidInput, i)
		}
		if pb.Channel != nil && *pb.Channel > 15 {
			return 0, fmt.Errorf("%w: pitch_bends[%d].channel must be 0-15", ErrInvalidInput, i)
		}
		bends[i].Value = midi.ClampSigned(pb.Value)
	}

	track.PitchBends = append(track.PitchBends, bends...)
	sort.SliceStable(track.PitchBends, func(a, b int) bool {
		return track.PitchBends[a].Tick < track.PitchBends[b].Tick
	})
	s.markDirty(sess)
	return len(bends), nil
}

// SetTempo inserts or replaces the tempo entry at a tick. Normalization
// keeps the map sorted with unique ticks.
func (s *Service) SetTempo(ctx context.Context, id string, tick int64, bpm float64) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()

	if tick < 0 {
		return fmt.Errorf("%w: tick must be >= 0", ErrInvalidInput)
	}
	if bpm <= 0 {
		return fmt.Errorf("%w: bpm must be > 0", ErrInvalidInput)
	}
	sess.Seq.Tempos = append(sess.Seq.Tempos, midi.TempoChange{Tick: tick, BPM: bpm})
	s.markDirty(sess)
	return nil
}

// SetTimeSignature inserts or replaces the time signature at a tick.
func (s *Service) SetTimeSignature(ctx context.Context, id string, tick int64, numerator, denominator int) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()

	if tick < 0 {
		return fmt.Errorf("%w: tick must be >= 0", ErrInvalidInput)
	}
	if numerator < 1 || numerator > 255 || denominator < 1 || denominator > 255 {
		return fmt.Errorf("%w: numerator and denominator must be 1-255", ErrInvalidInput)
	}
	sess.Seq.Meters = append(sess.Seq.Meters, midi.TimeSignature{
		Tick:        tick,
		Numerator:   uint8(numerator),
		Denominator: uint8(denominator),
	})
	s.markDirty(sess)
	return nil
}
