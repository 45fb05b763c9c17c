package query_test

import (
	"testing"

	"github.com/jpender/fermata/internal/domain/query"
	"github.com/jpender/fermata/internal/midi"
	"github.com/stretchr/testify/require"
)

func u8(v uint8) *uint8   { return &v }
func i64(v int64) *int64  { return &v }

func sampleTrack() *midi.Track {
	return &midi.Track{
		Channel: 0,
		Notes: []midi.Note{
			{Pitch: 60, Tick: 0, Duration: 100, Velocity: 0.5},
			{Pitch: 64, Tick: 100, Duration: 100, Velocity: 0.6},
			{Pitch: 67, Tick: 200, Duration: 100, Velocity: 0.7, Channel: u8(9)},
		},
		ControlChanges: map[uint8][]midi.ControlChange{
			7:  {{Tick: 150, Value: 0.5}},
			64: {{Tick: 300, Value: 1.0}},
		},
		PitchBends: []midi.PitchBend{
			{Tick: 250, Value: 0.5},
		},
	}
}

func TestEvents_MergedAndSorted(t *testing.T) {
	result := query.Events(sampleTrack(), query.Selector{}, query.Page{})

	require.Equal(t, 6, result.Total)
	require.Nil(t, result.NextOffset)

	var last int64 = -1
	for _, ev := range result.Events {
		require.GreaterOrEqual(t, ev.Tick, last)
		last = ev.Tick
	}
}

func TestEvents_RangeIsHalfOpen(t *testing.T) {
	sel := query.Selector{StartTick: i64(100), EndTick: i64(200)}
	result := query.Events(sampleTrack(), sel, query.Page{})

	// The note at 100 and the CC at 150 pass; the note at 200 is excluded.
	require.Equal(t, 2, result.Total)
	require.Equal(t, int64(100), result.Events[0].Tick)
	require.Equal(t, int64(150), result.Events[1].Tick)
}

func TestEvents_RangePartition(t *testing.T) {
	// Adjacent [a,b) and [b,c) windows cover every event exactly once.
	full := query.Events(sampleTrack(), query.Selector{}, query.Page{})
	left := query.Events(sampleTrack(), query.Selector{StartTick: i64(0), EndTick: i64(200)}, query.Page{})
	right := query.Events(sampleTrack(), query.Selector{StartTick: i64(200), EndTick: i64(1000)}, query.Page{})

	require.Equal(t, full.Total, left.Total+right.Total)
}

func TestEvents_TypeFilter(t *testing.T) {
	sel := query.Selector{Types: []midi.EventType{midi.EventCC, midi.EventPitchBend}}
	result := query.Events(sampleTrack(), sel, query.Page{})

	require.Equal(t, 3, result.Total)
	for _, ev := range result.Events {
		require.NotEqual(t, midi.EventNote, ev.Type)
	}
}

func TestEvents_PitchAndControllerFilters(t *testing.T) {
	result := query.Events(sampleTrack(), query.Selector{Pitches: []uint8{60, 67}}, query.Page{})
	require.Equal(t, 5, result.Total) // 2 notes + all ccs and bends

	sel := query.Selector{Types: []midi.EventType{midi.EventCC}, Controllers: []uint8{64}}
	result = query.Events(sampleTrack(), sel, query.Page{})
	require.Equal(t, 1, result.Total)
	require.Equal(t, uint8(64), *result.Events[0].Controller)
}

func TestEvents_ChannelFilterUsesResolvedChannel(t *testing.T) {
	sel := query.Selector{Channel: u8(9)}
	result := query.Events(sampleTrack(), sel, query.Page{})

	// Only the note with the channel override resolves to 9.
	require.Equal(t, 1, result.Total)
	require.Equal(t, uint8(67), *result.Events[0].Pitch)
	require.Equal(t, uint8(9), result.Events[0].Channel)
}

func TestEvents_Pagination(t *testing.T) {
	track := sampleTrack()

	first := query.Events(track, query.Selector{}, query.Page{Limit: 4})
	require.Len(t, first.Events, 4)
	require.Equal(t, 6, first.Total)
	require.NotNil(t, first.NextOffset)
	require.Equal(t, 4, *first.NextOffset)

	second := query.Events(track, query.Selector{}, query.Page{Offset: *first.NextOffset, Limit: 4})
	require.Len(t, second.Events, 2)
	require.Nil(t, second.NextOffset)

	// An offset past the end yields an empty page, not an error.
	far := query.Events(track, query.Selector{}, query.Page{Offset: 100})
	require.Empty(t, far.Events)
	require.Equal(t, 6, far.Total)
}

func TestEvents_LimitDefaultsAndCap(t *testing.T) {
	track := &midi.Track{}
	for i := 0; i < query.MaxLimit+10; i++ {
		track.Notes = append(track.Notes, midi.Note{Pitch: 60, Tick: int64(i), Duration: 1, Velocity: 0.5})
	}

	byDefault := query.Events(track, query.Selector{}, query.Page{})
	require.Len(t, byDefault.Events, query.DefaultLimit)

	capped := query.Events(track, query.Selector{}, query.Page{Limit: query.MaxLimit * 2})
	require.Len(t, capped.Events, query.MaxLimit)
	require.NotNil(t, capped.NextOffset)
}

func TestDiff_Summarizes(t *testing.T) {
	a := &midi.Sequence{PPQ: 480, Tracks: []*midi.Track{sampleTrack()}}
	b := &midi.Sequence{PPQ: 960, Tracks: []*midi.Track{sampleTrack(), sampleTrack()}}

	diff := query.Diff(a, b, nil, nil)
	require.Equal(t, 1, diff.A.TrackCount)
	require.Equal(t, 3, diff.A.NoteCount)
	require.Equal(t, 2, diff.B.TrackCount)
	require.Equal(t, 6, diff.B.NoteCount)
	require.False(t, diff.SamePPQ)
}

func TestDiff_RangeLimitsCounts(t *testing.T) {
	a := &midi.Sequence{PPQ: 480, Tracks: []*midi.Track{sampleTrack()}}

	diff := query.Diff(a, a, i64(0), i64(150))
	require.Equal(t, 2, diff.A.NoteCount)
	require.Equal(t, diff.A, diff.B)
	require.True(t, diff.SamePPQ)
}
