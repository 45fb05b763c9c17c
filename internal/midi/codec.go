package midi

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrFormat indicates bytes that do not parse as a standard MIDI file.
var ErrFormat = errors.New("malformed midi data")

// Decode parses raw SMF bytes into a Sequence. Tempo and meter events from
// all tracks are merged into the sequence maps; tracks that carry only meta
// events (the conductor track) are not surfaced as editable tracks.
func Decode(raw []byte) (*Sequence, error) {
	data, err := smf.ReadFrom(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	ticks, ok := data.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported time format %v", ErrFormat, data.TimeFormat)
	}

	seq := &Sequence{PPQ: int(ticks)}

	for _, source := range data.Tracks {
		track := decodeTrack(source, seq)
		if track != nil {
			seq.Tracks = append(seq.Tracks, track)
		}
	}

	seq.Normalize()
	return seq, nil
}

type openNote struct {
	tick     int64
	velocity uint8
}

func decodeTrack(source smf.Track, seq *Sequence) *Track {
	track := &Track{}
	channelSet := false
	var abs int64

	// Note-ons waiting for their matching note-off, keyed by channel and key.
	open := map[[2]uint8][]openNote{}

	closeNote := func(ch, key uint8, end int64) {
		pending := open[[2]uint8{ch, key}]
		if len(pending) == 0 {
			return
		}
		on := pending[0]
		open[[2]uint8{ch, key}] = pending[1:]
		duration := end - on.tick
		if duration < 1 {
			duration = 1
		}
		track.Notes = append(track.Notes, Note{
			Pitch:    key,
			Tick:     on.tick,
			Duration: duration,
			Velocity: float64(on.velocity) / 127,
			Channel:  trackChannel(track, &channelSet, ch),
		})
	}

	for _, ev := range source {
		abs += int64(ev.Delta)
		msg := ev.Message

		var (
			ch, key, vel uint8
			num, denom   uint8
			bpm          float64
			name         string
			rel          int16
			absBend      uint16
		)

		switch {
		case msg.GetMetaTempo(&bpm):
			seq.Tempos = append(seq.Tempos, TempoChange{Tick: abs, BPM: bpm})
		case msg.GetMetaMeter(&num, &denom):
			seq.Meters = append(seq.Meters, TimeSignature{Tick: abs, Numerator: num, Denominator: denom})
		case msg.GetMetaTrackName(&name):
			track.Name = name
		case msg.GetNoteOn(&ch, &key, &vel):
			if vel == 0 {
				closeNote(ch, key, abs)
			} else {
				open[[2]uint8{ch, key}] = append(open[[2]uint8{ch, key}], openNote{tick: abs, velocity: vel})
			}
		case msg.GetNoteOff(&ch, &key, &vel):
			closeNote(ch, key, abs)
		case msg.GetControlChange(&ch, &key, &vel):
			if track.ControlChanges == nil {
				track.ControlChanges = map[uint8][]ControlChange{}
			}
			track.ControlChanges[key] = append(track.ControlChanges[key], ControlChange{
				Tick:    abs,
				Value:   float64(vel) / 127,
				Channel: trackChannel(track, &channelSet, ch),
			})
		case msg.GetPitchBend(&ch, &rel, &absBend):
			track.PitchBends = append(track.PitchBends, PitchBend{
				Tick:    abs,
				Value:   ClampSigned(float64(rel) / 8192),
				Channel: trackChannel(track, &channelSet, ch),
			})
		case msg.GetProgramChange(&ch, &key):
			if track.Program == nil {
				prog := key
				track.Program = &prog
			}
			trackChannel(track, &channelSet, ch)
		}
	}

	// Sounding notes at end of track close where they started plus one tick.
	for chKey, pending := range open {
		for _, on := range pending {
			track.Notes = append(track.Notes, Note{
				Pitch:    chKey[1],
				Tick:     on.tick,
				Duration: 1,
				Velocity: float64(on.velocity) / 127,
				Channel:  trackChannel(track, &channelSet, chKey[0]),
			})
		}
	}

	sort.SliceStable(track.Notes, func(i, j int) bool { return track.Notes[i].Tick < track.Notes[j].Tick })

	hasEvents := len(track.Notes) > 0 || len(track.ControlChanges) > 0 || len(track.PitchBends) > 0
	if !hasEvents && track.Name == "" && track.Program == nil {
		return nil
	}
	return track
}

// trackChannel adopts the first channel seen as the track channel and returns
// an override pointer only for events on a different channel.
func trackChannel(track *Track, set *bool, ch uint8) *uint8 {
	if !*set {
		track.Channel = ch
		*set = true
	}
	if ch == track.Channel {
		return nil
	}
	override := ch
	return &override
}

// Encode serializes the sequence as SMF format 1: a conductor track carrying
// the tempo and meter maps, then one track per Track.
func Encode(seq *Sequence) ([]byte, error) {
	if seq.PPQ < 1 {
		return nil, fmt.Errorf("invalid ppq %d", seq.PPQ)
	}

	data := smf.NewSMF1()
	data.TimeFormat = smf.MetricTicks(seq.PPQ)

	work := seq.Clone()
	work.Normalize()

	conductor := make([]timedMessage, 0, len(work.Tempos)+len(work.Meters))
	for _, t := range work.Tempos {
		conductor = append(conductor, timedMessage{tick: t.Tick, order: 0, msg: smf.MetaTempo(t.BPM)})
	}
	for _, m := range work.Meters {
		conductor = append(conductor, timedMessage{tick: m.Tick, order: 1, msg: smf.MetaMeter(m.Numerator, m.Denominator)})
	}
	data.Add(buildTrack(conductor))

	for _, tr := range work.Tracks {
		data.Add(encodeTrack(tr))
	}

	var buf bytes.Buffer
	if _, err := data.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing midi: %w", err)
	}
	return buf.Bytes(), nil
}

type timedMessage struct {
	tick  int64
	order int // ties: meta, note-off, everything else, note-on
	msg   smf.Message
}

func encodeTrack(tr *Track) smf.Track {
	events := []timedMessage{}

	for _, note := range tr.Notes {
		ch := ResolveChannel(note.Channel, tr)
		vel := velocityByte(note.Velocity)
		events = append(events,
			timedMessage{tick: note.Tick, order: 3, msg: smf.Message(gomidi.NoteOn(ch, note.Pitch, vel))},
			timedMessage{tick: note.End(), order: 2, msg: smf.Message(gomidi.NoteOff(ch, note.Pitch))},
		)
	}
	for controller, ccs := range tr.ControlChanges {
		for _, cc := range ccs {
			ch := ResolveChannel(cc.Channel, tr)
			val := uint8(math.Round(ClampUnit(cc.Value) * 127))
			events = append(events, timedMessage{tick: cc.Tick, order: 2, msg: smf.Message(gomidi.ControlChange(ch, controller, val))})
		}
	}
	for _, pb := range tr.PitchBends {
		ch := ResolveChannel(pb.Channel, tr)
		events = append(events, timedMessage{tick: pb.Tick, order: 2, msg: smf.Message(gomidi.Pitchbend(ch, bendValue(pb.Value)))})
	}

	head := []timedMessage{}
	if tr.Name != "" {
		head = append(head, timedMessage{tick: 0, order: 0, msg: smf.Message(smf.MetaTrackSequenceName(tr.Name))})
	}
	if tr.Program != nil {
		head = append(head, timedMessage{tick: 0, order: 1, msg: smf.Message(gomidi.ProgramChange(tr.Channel, *tr.Program))})
	}

	return buildTrack(append(head, events...))
}

func buildTrack(events []timedMessage) smf.Track {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].order < events[j].order
	})

	track := smf.Track{}
	var last int64
	for _, ev := range events {
		track = append(track, smf.Event{Delta: uint32(ev.tick - last), Message: ev.msg})
		last = ev.tick
	}
	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})
	return track
}

// velocityByte maps a normalized velocity to 1..127 so an audible note never
// serializes to a note-off.
func velocityByte(v float64) uint8 {
	b := uint8(math.Round(ClampUnit(v) * 127))
	if b == 0 {
		b = 1
	}
	return b
}

func bendValue(v float64) int16 {
	scaled := math.Round(ClampSigned(v) * 8192)
	if scaled > 8191 {
		scaled = 8191
	}
	return int16(scaled)
}
