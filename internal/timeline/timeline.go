// Package timeline converts among ticks, seconds, quarter notes, and
// bar/beat/tick positions under a piecewise tempo and time-signature map.
package timeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/jpender/fermata/internal/midi"
)

// ErrInvalidPosition indicates a musical position outside the legal range.
var ErrInvalidPosition = errors.New("invalid position")

// BBT is a 1-indexed bar/beat position plus a tick offset within the beat.
// The tick offset is not range-checked against the beat length: callers may
// deliberately land beyond the nominal beat boundary.
type BBT struct {
	Bar  int   `json:"bar"`
	Beat int   `json:"beat"`
	Tick int64 `json:"tick"`
}

// Timeline is an immutable view over a sequence's tempo and meter maps.
type Timeline struct {
	ppq    int
	tempos []midi.TempoChange
	meters []midi.TimeSignature
}

// New captures the sequence's resolution and maps. Empty maps fall back to
// 120 BPM and 4/4 at tick 0. A map whose first entry starts late is anchored
// at tick 0 with that entry's values, so conversions stay inverses over the
// leading region.
func New(seq *midi.Sequence) *Timeline {
	tempos := seq.Tempos
	if len(tempos) == 0 {
		tempos = []midi.TempoChange{{Tick: 0, BPM: 120}}
	}
	if tempos[0].Tick > 0 {
		tempos = append([]midi.TempoChange{{Tick: 0, BPM: tempos[0].BPM}}, tempos...)
	}
	meters := seq.Meters
	if len(meters) == 0 {
		meters = []midi.TimeSignature{{Tick: 0, Numerator: 4, Denominator: 4}}
	}
	if meters[0].Tick > 0 {
		first := meters[0]
		meters = append([]midi.TimeSignature{{Tick: 0, Numerator: first.Numerator, Denominator: first.Denominator}}, meters...)
	}
	return &Timeline{ppq: seq.PPQ, tempos: tempos, meters: meters}
}

// secondsPerTick at a given tempo.
func (t *Timeline) secondsPerTick(bpm float64) float64 {
	return 60 / (bpm * float64(t.ppq))
}

// TicksToSeconds integrates the tempo map up to the given tick. The last
// tempo entry extends to infinity.
func (t *Timeline) TicksToSeconds(ticks int64) float64 {
	if ticks <= 0 {
		return 0
	}
	seconds := 0.0
	for i, entry := range t.tempos {
		segStart := entry.Tick
		segEnd := ticks
		if i+1 < len(t.tempos) && t.tempos[i+1].Tick < ticks {
			segEnd = t.tempos[i+1].Tick
		}
		if segEnd > segStart {
			seconds += float64(segEnd-segStart) * t.secondsPerTick(entry.BPM)
		}
		if segEnd == ticks {
			break
		}
	}
	return seconds
}

// SecondsToTicks inverts TicksToSeconds, rounding to the nearest tick and
// clamping below zero.
func (t *Timeline) SecondsToTicks(seconds float64) int64 {
	if seconds <= 0 {
		return 0
	}
	elapsed := 0.0
	for i, entry := range t.tempos {
		spt := t.secondsPerTick(entry.BPM)
		if i+1 < len(t.tempos) {
			segTicks := t.tempos[i+1].Tick - entry.Tick
			segSeconds := float64(segTicks) * spt
			if elapsed+segSeconds < seconds {
				elapsed += segSeconds
				continue
			}
		}
		ticks := entry.Tick + int64(math.Round((seconds-elapsed)/spt))
		if ticks < 0 {
			ticks = 0
		}
		return ticks
	}
	return 0
}

// QuarterNotesToTicks is unit-exact against the sequence resolution.
func (t *Timeline) QuarterNotesToTicks(quarters float64) int64 {
	return int64(math.Round(quarters * float64(t.ppq)))
}

// TicksToQuarterNotes is the inverse of QuarterNotesToTicks.
func (t *Timeline) TicksToQuarterNotes(ticks int64) float64 {
	return float64(ticks) / float64(t.ppq)
}

func (t *Timeline) beatTicks(sig midi.TimeSignature) int64 {
	return int64(math.Round(float64(t.ppq) * 4 / float64(sig.Denominator)))
}

// BBTToTicks resolves a bar/beat/tick position by walking the meter map in
// tick order. Bars past the final signature extrapolate with its bar length.
func (t *Timeline) BBTToTicks(pos BBT) (int64, error) {
	if pos.Bar < 1 || pos.Beat < 1 {
		return 0, fmt.Errorf("%w: bar and beat are 1-indexed (got bar=%d beat=%d)", ErrInvalidPosition, pos.Bar, pos.Beat)
	}
	if pos.Tick < 0 {
		return 0, fmt.Errorf("%w: tick offset must be >= 0", ErrInvalidPosition)
	}

	bar := 1
	for i, sig := range t.meters {
		beatLen := t.beatTicks(sig)
		barLen := beatLen * int64(sig.Numerator)
		if i+1 < len(t.meters) {
			segLen := t.meters[i+1].Tick - sig.Tick
			// Bars started inside this segment; a bar cut short by the next
			// signature still counts, since the bar grid restarts there.
			started := int((segLen + barLen - 1) / barLen)
			if pos.Bar >= bar+started {
				bar += started
				continue
			}
		}
		start := sig.Tick + int64(pos.Bar-bar)*barLen
		return start + int64(pos.Beat-1)*beatLen + pos.Tick, nil
	}
	return 0, fmt.Errorf("%w: empty time-signature map", ErrInvalidPosition)
}

// TicksToBBT is the inverse walk of BBTToTicks. Ticks past the final
// signature extrapolate with its bar length; negative ticks resolve to the
// start of bar 1.
func (t *Timeline) TicksToBBT(ticks int64) BBT {
	if ticks < 0 {
		ticks = 0
	}
	bar := 1
	for i, sig := range t.meters {
		beatLen := t.beatTicks(sig)
		barLen := beatLen * int64(sig.Numerator)
		if i+1 < len(t.meters) && ticks >= t.meters[i+1].Tick {
			segLen := t.meters[i+1].Tick - sig.Tick
			bar += int((segLen + barLen - 1) / barLen)
			continue
		}
		offset := ticks - sig.Tick
		if offset < 0 {
			offset = 0
		}
		barOffset := offset / barLen
		rem := offset % barLen
		return BBT{
			Bar:  bar + int(barOffset),
			Beat: int(rem/beatLen) + 1,
			Tick: rem % beatLen,
		}
	}
	return BBT{Bar: 1, Beat: 1}
}
