package transform_test

import (
	"testing"

	"github.com/jpender/fermata/internal/domain/query"
	"github.com/jpender/fermata/internal/domain/transform"
	"github.com/jpender/fermata/internal/midi"
	"github.com/stretchr/testify/require"
)

func u8(v uint8) *uint8  { return &v }
func i64(v int64) *int64 { return &v }

func noteTrack(notes ...midi.Note) *midi.Track {
	return &midi.Track{Notes: notes}
}

func ticksOf(track *midi.Track) []int64 {
	out := make([]int64, len(track.Notes))
	for i, n := range track.Notes {
		out[i] = n.Tick
	}
	return out
}

func TestResolveGrid(t *testing.T) {
	ticks, err := transform.ResolveGrid(480, 0, "1/8")
	require.NoError(t, err)
	require.Equal(t, int64(240), ticks)

	ticks, err = transform.ResolveGrid(480, 0, "1/4")
	require.NoError(t, err)
	require.Equal(t, int64(480), ticks)

	ticks, err = transform.ResolveGrid(480, 120, "")
	require.NoError(t, err)
	require.Equal(t, int64(120), ticks)

	_, err = transform.ResolveGrid(480, 120, "1/8")
	require.ErrorIs(t, err, transform.ErrInvalidArgument)

	_, err = transform.ResolveGrid(480, 0, "")
	require.ErrorIs(t, err, transform.ErrInvalidArgument)

	_, err = transform.ResolveGrid(480, 0, "3/4")
	require.ErrorIs(t, err, transform.ErrInvalidArgument)

	_, err = transform.ResolveGrid(480, 0, "1/0")
	require.ErrorIs(t, err, transform.ErrInvalidArgument)
}

func TestQuantize_FullStrength(t *testing.T) {
	track := noteTrack(
		midi.Note{Pitch: 60, Tick: 10, Duration: 100, Velocity: 0.5},
		midi.Note{Pitch: 62, Tick: 230, Duration: 100, Velocity: 0.5},
		midi.Note{Pitch: 64, Tick: 370, Duration: 100, Velocity: 0.5},
	)

	n, err := transform.Quantize(track, query.Selector{}, 240, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []int64{0, 240, 480}, ticksOf(track))
}

func TestQuantize_IsIdempotentAtFullStrength(t *testing.T) {
	track := noteTrack(
		midi.Note{Pitch: 60, Tick: 130, Duration: 100, Velocity: 0.5},
		midi.Note{Pitch: 62, Tick: 350, Duration: 100, Velocity: 0.5},
	)

	_, err := transform.Quantize(track, query.Selector{}, 240, 1, 0)
	require.NoError(t, err)
	once := ticksOf(track)

	_, err = transform.Quantize(track, query.Selector{}, 240, 1, 0)
	require.NoError(t, err)
	require.Equal(t, once, ticksOf(track))
}

func TestQuantize_ZeroStrengthLeavesTicks(t *testing.T) {
	track := noteTrack(midi.Note{Pitch: 60, Tick: 133, Duration: 100, Velocity: 0.5})

	n, err := transform.Quantize(track, query.Selector{}, 240, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int64(133), track.Notes[0].Tick)
}

func TestQuantize_SwingDelaysOddSlots(t *testing.T) {
	track := noteTrack(
		midi.Note{Pitch: 60, Tick: 0, Duration: 100, Velocity: 0.5},
		midi.Note{Pitch: 62, Tick: 240, Duration: 100, Velocity: 0.5},
		midi.Note{Pitch: 64, Tick: 480, Duration: 100, Velocity: 0.5},
	)

	_, err := transform.Quantize(track, query.Selector{}, 240, 1, 1)
	require.NoError(t, err)
	// Even slots stay on the grid; the odd slot shifts by half a step.
	require.Equal(t, []int64{0, 360, 480}, ticksOf(track))
}

func TestQuantize_SelectorLimitsReach(t *testing.T) {
	track := noteTrack(
		midi.Note{Pitch: 60, Tick: 10, Duration: 100, Velocity: 0.5},
		midi.Note{Pitch: 62, Tick: 250, Duration: 100, Velocity: 0.5},
	)

	n, err := transform.Quantize(track, query.Selector{EndTick: i64(100)}, 240, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []int64{0, 250}, ticksOf(track))
}

func TestQuantize_Validation(t *testing.T) {
	track := noteTrack()

	_, err := transform.Quantize(track, query.Selector{}, 0, 1, 0)
	require.ErrorIs(t, err, transform.ErrInvalidArgument)

	_, err = transform.Quantize(track, query.Selector{}, 240, 1.5, 0)
	require.ErrorIs(t, err, transform.ErrInvalidArgument)

	_, err = transform.Quantize(track, query.Selector{}, 240, 1, -0.1)
	require.ErrorIs(t, err, transform.ErrInvalidArgument)
}

func TestTranspose_ShiftsAndClamps(t *testing.T) {
	track := noteTrack(
		midi.Note{Pitch: 60, Tick: 0, Duration: 100, Velocity: 0.5},
		midi.Note{Pitch: 125, Tick: 100, Duration: 100, Velocity: 0.5},
	)

	n, err := transform.Transpose(track, query.Selector{}, 7)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, uint8(67), track.Notes[0].Pitch)
	require.Equal(t, uint8(127), track.Notes[1].Pitch)

	n, err = transform.Transpose(track, query.Selector{}, -128)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, uint8(0), track.Notes[0].Pitch)
}

func TestFixOverlaps_Trim(t *testing.T) {
	track := noteTrack(
		midi.Note{Pitch: 60, Tick: 0, Duration: 500, Velocity: 0.5},
		midi.Note{Pitch: 60, Tick: 240, Duration: 100, Velocity: 0.5},
		midi.Note{Pitch: 64, Tick: 100, Duration: 500, Velocity: 0.5}, // different pitch, untouched
	)

	n, err := transform.FixOverlaps(track, query.Selector{}, transform.OverlapTrim)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int64(240), track.Notes[0].Duration)
	require.Equal(t, int64(500), track.Notes[2].Duration)

	// After trimming, no same-pitch same-channel pair overlaps.
	n, err = transform.FixOverlaps(track, query.Selector{}, transform.OverlapTrim)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestFixOverlaps_Remove(t *testing.T) {
	track := noteTrack(
		midi.Note{Pitch: 60, Tick: 0, Duration: 500, Velocity: 0.5},
		midi.Note{Pitch: 60, Tick: 240, Duration: 100, Velocity: 0.5},
	)

	n, err := transform.FixOverlaps(track, query.Selector{}, transform.OverlapRemove)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, track.Notes, 1)
	require.Equal(t, int64(0), track.Notes[0].Tick)
}

func TestFixOverlaps_ChannelSeparatesGroups(t *testing.T) {
	track := noteTrack(
		midi.Note{Pitch: 60, Tick: 0, Duration: 500, Velocity: 0.5},
		midi.Note{Pitch: 60, Tick: 240, Duration: 100, Velocity: 0.5, Channel: u8(9)},
	)

	n, err := transform.FixOverlaps(track, query.Selector{}, transform.OverlapTrim)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Equal(t, int64(500), track.Notes[0].Duration)
}

func TestFixOverlaps_InvalidMode(t *testing.T) {
	_, err := transform.FixOverlaps(noteTrack(), query.Selector{}, "merge")
	require.ErrorIs(t, err, transform.ErrInvalidArgument)
}

func TestLegato_StretchesToNextNote(t *testing.T) {
	track := noteTrack(
		midi.Note{Pitch: 60, Tick: 0, Duration: 10, Velocity: 0.5},
		midi.Note{Pitch: 72, Tick: 100, Duration: 10, Velocity: 0.5},
		midi.Note{Pitch: 64, Tick: 250, Duration: 10, Velocity: 0.5},
	)

	n, err := transform.Legato(track, query.Selector{}, 0)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, int64(100), track.Notes[0].Duration)
	require.Equal(t, int64(150), track.Notes[1].Duration)
	require.Equal(t, int64(10), track.Notes[2].Duration) // last note keeps its duration
}

func TestLegato_GapAndFloor(t *testing.T) {
	track := noteTrack(
		midi.Note{Pitch: 60, Tick: 0, Duration: 10, Velocity: 0.5},
		midi.Note{Pitch: 62, Tick: 20, Duration: 10, Velocity: 0.5},
	)

	n, err := transform.Legato(track, query.Selector{}, 30)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int64(1), track.Notes[0].Duration) // floor at one tick

	_, err = transform.Legato(track, query.Selector{}, -1)
	require.ErrorIs(t, err, transform.ErrInvalidArgument)
}

func TestLegato_CountsOnlyChangedDurations(t *testing.T) {
	track := noteTrack(
		midi.Note{Pitch: 60, Tick: 0, Duration: 100, Velocity: 0.5}, // already legato
		midi.Note{Pitch: 62, Tick: 100, Duration: 10, Velocity: 0.5},
		midi.Note{Pitch: 64, Tick: 250, Duration: 10, Velocity: 0.5},
	)

	n, err := transform.Legato(track, query.Selector{}, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int64(100), track.Notes[0].Duration)
	require.Equal(t, int64(150), track.Notes[1].Duration)
}

func TestLegato_SingleNoteIsNoOp(t *testing.T) {
	track := noteTrack(midi.Note{Pitch: 60, Tick: 0, Duration: 10, Velocity: 0.5})

	n, err := transform.Legato(track, query.Selector{}, 0)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Equal(t, int64(10), track.Notes[0].Duration)
}

func TestTrimNotes_RemovesShortMatches(t *testing.T) {
	track := noteTrack(
		midi.Note{Pitch: 60, Tick: 0, Duration: 5, Velocity: 0.5},
		midi.Note{Pitch: 62, Tick: 100, Duration: 100, Velocity: 0.5},
		midi.Note{Pitch: 64, Tick: 200, Duration: 5, Velocity: 0.5},
	)

	n, err := transform.TrimNotes(track, query.Selector{EndTick: i64(150)}, 50)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	// The short note at 200 fails the selector and survives.
	require.Len(t, track.Notes, 2)
	require.Equal(t, uint8(62), track.Notes[0].Pitch)
	require.Equal(t, uint8(64), track.Notes[1].Pitch)

	_, err = transform.TrimNotes(track, query.Selector{}, 0)
	require.ErrorIs(t, err, transform.ErrInvalidArgument)
}
