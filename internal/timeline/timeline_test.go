package timeline_test

import (
	"testing"

	"github.com/jpender/fermata/internal/midi"
	"github.com/jpender/fermata/internal/timeline"
	"github.com/stretchr/testify/require"
)

func defaultSeq() *midi.Sequence {
	return &midi.Sequence{
		PPQ:    480,
		Tempos: []midi.TempoChange{{Tick: 0, BPM: 120}},
		Meters: []midi.TimeSignature{{Tick: 0, Numerator: 4, Denominator: 4}},
	}
}

func TestTicksToSeconds_SingleTempo(t *testing.T) {
	tl := timeline.New(defaultSeq())

	// At 120 BPM a quarter note is half a second.
	require.InDelta(t, 0.5, tl.TicksToSeconds(480), 1e-9)
	require.InDelta(t, 2.0, tl.TicksToSeconds(1920), 1e-9)
	require.Equal(t, 0.0, tl.TicksToSeconds(0))
	require.Equal(t, 0.0, tl.TicksToSeconds(-100))
}

func TestTicksToSeconds_TempoChange(t *testing.T) {
	seq := defaultSeq()
	seq.Tempos = []midi.TempoChange{
		{Tick: 0, BPM: 120},
		{Tick: 960, BPM: 60},
	}
	tl := timeline.New(seq)

	// Two quarters at 120 BPM, then one quarter at 60 BPM.
	require.InDelta(t, 1.0, tl.TicksToSeconds(960), 1e-9)
	require.InDelta(t, 2.0, tl.TicksToSeconds(1440), 1e-9)
}

func TestSecondsToTicks_InvertsTicksToSeconds(t *testing.T) {
	seq := defaultSeq()
	seq.Tempos = []midi.TempoChange{
		{Tick: 0, BPM: 120},
		{Tick: 960, BPM: 60},
		{Tick: 1920, BPM: 180},
	}
	tl := timeline.New(seq)

	for _, ticks := range []int64{0, 1, 479, 480, 960, 1440, 1920, 5000} {
		require.Equal(t, ticks, tl.SecondsToTicks(tl.TicksToSeconds(ticks)), "ticks=%d", ticks)
	}
	require.Equal(t, int64(0), tl.SecondsToTicks(-1))
}

func TestLateFirstEntriesExtendBackToZero(t *testing.T) {
	// A decoded file may carry its first tempo and meter events late.
	seq := defaultSeq()
	seq.Tempos = []midi.TempoChange{{Tick: 960, BPM: 60}}
	seq.Meters = []midi.TimeSignature{{Tick: 960, Numerator: 3, Denominator: 4}}
	tl := timeline.New(seq)

	// The leading region runs at the first entry's tempo, not in zero time.
	require.InDelta(t, 1.0, tl.TicksToSeconds(480), 1e-9)
	for _, ticks := range []int64{0, 1, 479, 960, 1500} {
		require.Equal(t, ticks, tl.SecondsToTicks(tl.TicksToSeconds(ticks)), "ticks=%d", ticks)
	}

	require.Equal(t, timeline.BBT{Bar: 1, Beat: 1}, tl.TicksToBBT(0))
	ticks, err := tl.BBTToTicks(timeline.BBT{Bar: 1, Beat: 2})
	require.NoError(t, err)
	require.Equal(t, int64(480), ticks)
}

func TestQuarterNoteConversion(t *testing.T) {
	tl := timeline.New(defaultSeq())

	require.Equal(t, int64(960), tl.QuarterNotesToTicks(2))
	require.Equal(t, int64(240), tl.QuarterNotesToTicks(0.5))
	require.InDelta(t, 2.0, tl.TicksToQuarterNotes(960), 1e-9)
}

func TestBBT_SingleSignature(t *testing.T) {
	tl := timeline.New(defaultSeq())

	ticks, err := tl.BBTToTicks(timeline.BBT{Bar: 1, Beat: 1})
	require.NoError(t, err)
	require.Equal(t, int64(0), ticks)

	ticks, err = tl.BBTToTicks(timeline.BBT{Bar: 2, Beat: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1920), ticks)

	ticks, err = tl.BBTToTicks(timeline.BBT{Bar: 2, Beat: 3, Tick: 120})
	require.NoError(t, err)
	require.Equal(t, int64(1920+960+120), ticks)

	require.Equal(t, timeline.BBT{Bar: 2, Beat: 3, Tick: 120}, tl.TicksToBBT(3000))
}

func TestBBT_SignatureChange(t *testing.T) {
	seq := defaultSeq()
	seq.Meters = []midi.TimeSignature{
		{Tick: 0, Numerator: 4, Denominator: 4},
		{Tick: 1920, Numerator: 3, Denominator: 4},
	}
	tl := timeline.New(seq)

	// Bar 2 starts at the signature change, bar 3 one 3/4 bar later.
	ticks, err := tl.BBTToTicks(timeline.BBT{Bar: 2, Beat: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1920), ticks)

	ticks, err = tl.BBTToTicks(timeline.BBT{Bar: 3, Beat: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1920+1440), ticks)

	require.Equal(t, timeline.BBT{Bar: 3, Beat: 1}, tl.TicksToBBT(3360))
}

func TestBBT_PartialBarCountsAsFullBar(t *testing.T) {
	seq := defaultSeq()
	seq.Meters = []midi.TimeSignature{
		{Tick: 0, Numerator: 4, Denominator: 4},
		{Tick: 960, Numerator: 3, Denominator: 4},
	}
	tl := timeline.New(seq)

	// The 4/4 segment is half a bar long; the bar grid still advances to
	// bar 2 at the change.
	ticks, err := tl.BBTToTicks(timeline.BBT{Bar: 2, Beat: 1})
	require.NoError(t, err)
	require.Equal(t, int64(960), ticks)

	require.Equal(t, timeline.BBT{Bar: 2, Beat: 1}, tl.TicksToBBT(960))
	require.Equal(t, timeline.BBT{Bar: 1, Beat: 2}, tl.TicksToBBT(480))
}

func TestBBT_CompoundMeterBeatLength(t *testing.T) {
	seq := defaultSeq()
	seq.Meters = []midi.TimeSignature{{Tick: 0, Numerator: 6, Denominator: 8}}
	tl := timeline.New(seq)

	// In 6/8 a beat is an eighth note: 240 ticks at PPQ 480.
	ticks, err := tl.BBTToTicks(timeline.BBT{Bar: 1, Beat: 4})
	require.NoError(t, err)
	require.Equal(t, int64(720), ticks)

	ticks, err = tl.BBTToTicks(timeline.BBT{Bar: 2, Beat: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1440), ticks)
}

func TestBBT_RoundTrip(t *testing.T) {
	seq := defaultSeq()
	seq.Meters = []midi.TimeSignature{
		{Tick: 0, Numerator: 4, Denominator: 4},
		{Tick: 1920, Numerator: 7, Denominator: 8},
		{Tick: 4000, Numerator: 3, Denominator: 4},
	}
	tl := timeline.New(seq)

	for _, ticks := range []int64{0, 1, 479, 1919, 1920, 2500, 3999, 4000, 9999} {
		bbt := tl.TicksToBBT(ticks)
		back, err := tl.BBTToTicks(bbt)
		require.NoError(t, err)
		require.Equal(t, ticks, back, "ticks=%d bbt=%+v", ticks, bbt)
	}
}

func TestBBT_InvalidPositions(t *testing.T) {
	tl := timeline.New(defaultSeq())

	_, err := tl.BBTToTicks(timeline.BBT{Bar: 0, Beat: 1})
	require.ErrorIs(t, err, timeline.ErrInvalidPosition)

	_, err = tl.BBTToTicks(timeline.BBT{Bar: 1, Beat: 0})
	require.ErrorIs(t, err, timeline.ErrInvalidPosition)

	_, err = tl.BBTToTicks(timeline.BBT{Bar: 1, Beat: 1, Tick: -1})
	require.ErrorIs(t, err, timeline.ErrInvalidPosition)
}

func TestNew_FallsBackOnEmptyMaps(t *testing.T) {
	tl := timeline.New(&midi.Sequence{PPQ: 480})

	require.InDelta(t, 0.5, tl.TicksToSeconds(480), 1e-9)
	ticks, err := tl.BBTToTicks(timeline.BBT{Bar: 2, Beat: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1920), ticks)
}
