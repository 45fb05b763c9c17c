package midi_test

import (
	"testing"

	"github.com/jpender/fermata/internal/midi"
	"github.com/stretchr/testify/require"
)

func u8(v uint8) *uint8 { return &v }

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := midi.Decode([]byte("not a midi file"))
	require.ErrorIs(t, err, midi.ErrFormat)

	_, err = midi.Decode(nil)
	require.ErrorIs(t, err, midi.ErrFormat)
}

func TestEncodeDecode_RoundTripNotes(t *testing.T) {
	seq := &midi.Sequence{
		PPQ:    480,
		Tempos: []midi.TempoChange{{Tick: 0, BPM: 120}},
		Meters: []midi.TimeSignature{{Tick: 0, Numerator: 4, Denominator: 4}},
		Tracks: []*midi.Track{{
			Name:    "lead",
			Channel: 0,
			Notes: []midi.Note{
				{Pitch: 60, Tick: 0, Duration: 480, Velocity: 100.0 / 127},
				{Pitch: 64, Tick: 480, Duration: 240, Velocity: 64.0 / 127},
				{Pitch: 67, Tick: 960, Duration: 960, Velocity: 127.0 / 127},
			},
		}},
	}

	raw, err := midi.Encode(seq)
	require.NoError(t, err)

	decoded, err := midi.Decode(raw)
	require.NoError(t, err)

	require.Equal(t, 480, decoded.PPQ)
	require.Len(t, decoded.Tracks, 1)

	track := decoded.Tracks[0]
	require.Equal(t, "lead", track.Name)
	require.Equal(t, seq.Tracks[0].Notes, track.Notes)
}

func TestEncodeDecode_RoundTripTempoAndMeter(t *testing.T) {
	seq := &midi.Sequence{
		PPQ: 480,
		Tempos: []midi.TempoChange{
			{Tick: 0, BPM: 120},
			{Tick: 1920, BPM: 90},
		},
		Meters: []midi.TimeSignature{
			{Tick: 0, Numerator: 4, Denominator: 4},
			{Tick: 1920, Numerator: 3, Denominator: 4},
		},
		Tracks: []*midi.Track{{
			Notes: []midi.Note{{Pitch: 60, Tick: 0, Duration: 480, Velocity: 100.0 / 127}},
		}},
	}

	raw, err := midi.Encode(seq)
	require.NoError(t, err)

	decoded, err := midi.Decode(raw)
	require.NoError(t, err)

	// MetaTempo stores microseconds per quarter note, so BPM survives only
	// to rounding precision.
	require.Len(t, decoded.Tempos, 2)
	for i, want := range seq.Tempos {
		require.Equal(t, want.Tick, decoded.Tempos[i].Tick)
		require.InDelta(t, want.BPM, decoded.Tempos[i].BPM, 0.001)
	}
	require.Equal(t, seq.Meters, decoded.Meters)
	// The conductor track never surfaces as an editable track.
	require.Len(t, decoded.Tracks, 1)
}

func TestEncodeDecode_RoundTripControlChangesAndBends(t *testing.T) {
	seq := &midi.Sequence{
		PPQ:    480,
		Tempos: []midi.TempoChange{{Tick: 0, BPM: 120}},
		Meters: []midi.TimeSignature{{Tick: 0, Numerator: 4, Denominator: 4}},
		Tracks: []*midi.Track{{
			Channel: 2,
			Program: u8(33),
			Notes:   []midi.Note{{Pitch: 40, Tick: 0, Duration: 120, Velocity: 90.0 / 127}},
			ControlChanges: map[uint8][]midi.ControlChange{
				7:  {{Tick: 0, Value: 100.0 / 127}, {Tick: 960, Value: 64.0 / 127}},
				64: {{Tick: 480, Value: 127.0 / 127}},
			},
			PitchBends: []midi.PitchBend{
				{Tick: 240, Value: 0.5},
				{Tick: 480, Value: -0.25},
			},
		}},
	}

	raw, err := midi.Encode(seq)
	require.NoError(t, err)

	decoded, err := midi.Decode(raw)
	require.NoError(t, err)
	require.Len(t, decoded.Tracks, 1)

	track := decoded.Tracks[0]
	require.Equal(t, uint8(2), track.Channel)
	require.NotNil(t, track.Program)
	require.Equal(t, uint8(33), *track.Program)

	require.Len(t, track.ControlChanges[7], 2)
	require.InDelta(t, 100.0/127, track.ControlChanges[7][0].Value, 1e-9)
	require.InDelta(t, 64.0/127, track.ControlChanges[7][1].Value, 1e-9)
	require.Len(t, track.ControlChanges[64], 1)

	require.Len(t, track.PitchBends, 2)
	require.InDelta(t, 0.5, track.PitchBends[0].Value, 1e-3)
	require.InDelta(t, -0.25, track.PitchBends[1].Value, 1e-3)
}

func TestEncodeDecode_ChannelOverrideSurvives(t *testing.T) {
	seq := &midi.Sequence{
		PPQ:    480,
		Tempos: []midi.TempoChange{{Tick: 0, BPM: 120}},
		Meters: []midi.TimeSignature{{Tick: 0, Numerator: 4, Denominator: 4}},
		Tracks: []*midi.Track{{
			Channel: 1,
			Notes: []midi.Note{
				{Pitch: 60, Tick: 0, Duration: 240, Velocity: 80.0 / 127},
				{Pitch: 62, Tick: 480, Duration: 240, Velocity: 80.0 / 127, Channel: u8(5)},
			},
		}},
	}

	raw, err := midi.Encode(seq)
	require.NoError(t, err)

	decoded, err := midi.Decode(raw)
	require.NoError(t, err)
	require.Len(t, decoded.Tracks, 1)

	track := decoded.Tracks[0]
	require.Equal(t, uint8(1), track.Channel)
	require.Len(t, track.Notes, 2)
	require.Nil(t, track.Notes[0].Channel)
	require.NotNil(t, track.Notes[1].Channel)
	require.Equal(t, uint8(5), *track.Notes[1].Channel)
}

func TestEncode_SilentNoteStaysAudible(t *testing.T) {
	// A zero velocity would serialize as a note-off and vanish; the codec
	// floors the byte at 1.
	seq := &midi.Sequence{
		PPQ:    480,
		Tempos: []midi.TempoChange{{Tick: 0, BPM: 120}},
		Meters: []midi.TimeSignature{{Tick: 0, Numerator: 4, Denominator: 4}},
		Tracks: []*midi.Track{{
			Notes: []midi.Note{{Pitch: 60, Tick: 0, Duration: 100, Velocity: 0}},
		}},
	}

	raw, err := midi.Encode(seq)
	require.NoError(t, err)

	decoded, err := midi.Decode(raw)
	require.NoError(t, err)
	require.Len(t, decoded.Tracks, 1)
	require.Len(t, decoded.Tracks[0].Notes, 1)
	require.InDelta(t, 1.0/127, decoded.Tracks[0].Notes[0].Velocity, 1e-9)
}

func TestEncode_InvalidPPQ(t *testing.T) {
	_, err := midi.Encode(&midi.Sequence{PPQ: 0})
	require.Error(t, err)
}
