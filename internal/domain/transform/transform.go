// Package transform holds the note transformation algorithms. Every
// function operates in place on one track's collections, touching only the
// events that pass the supplied selector.
package transform

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jpender/fermata/internal/domain/query"
	"github.com/jpender/fermata/internal/midi"
)

// ErrInvalidArgument indicates a transform parameter outside its legal range.
var ErrInvalidArgument = errors.New("invalid transform argument")

// ResolveGrid resolves a quantize grid to ticks. Exactly one of gridTicks
// and grid must be supplied; grid is a musical fraction like "1/8".
func ResolveGrid(ppq int, gridTicks int64, grid string) (int64, error) {
	switch {
	case gridTicks > 0 && grid != "":
		return 0, fmt.Errorf("%w: supply either grid_ticks or grid, not both", ErrInvalidArgument)
	case gridTicks > 0:
		return gridTicks, nil
	case grid != "":
		rest, ok := strings.CutPrefix(grid, "1/")
		if !ok {
			return 0, fmt.Errorf("%w: grid must look like \"1/8\", got %q", ErrInvalidArgument, grid)
		}
		div, err := strconv.Atoi(rest)
		if err != nil || div < 1 {
			return 0, fmt.Errorf("%w: grid must look like \"1/8\", got %q", ErrInvalidArgument, grid)
		}
		ticks := int64(math.Round(float64(ppq) * 4 / float64(div)))
		if ticks < 1 {
			ticks = 1
		}
		return ticks, nil
	default:
		return 0, fmt.Errorf("%w: a grid is required", ErrInvalidArgument)
	}
}

// Quantize snaps matching note starts toward the grid. Odd grid positions
// shift later by swing. Strength 1 snaps fully, strength 0 leaves ticks
// unchanged. Returns the number of matched notes.
func Quantize(track *midi.Track, sel query.Selector, gridTicks int64, strength, swing float64) (int, error) {
	if gridTicks < 1 {
		return 0, fmt.Errorf("%w: grid_ticks must be >= 1", ErrInvalidArgument)
	}
	if strength < 0 || strength > 1 {
		return 0, fmt.Errorf("%w: strength must be in [0,1]", ErrInvalidArgument)
	}
	if swing < 0 || swing > 1 {
		return 0, fmt.Errorf("%w: swing must be in [0,1]", ErrInvalidArgument)
	}

	matched := 0
	for i := range track.Notes {
		if !sel.MatchNote(track.Notes[i], track) {
			continue
		}
		matched++
		tick := track.Notes[i].Tick
		gridIndex := int64(math.Round(float64(tick) / float64(gridTicks)))
		target := gridIndex * gridTicks
		if swing != 0 && gridIndex%2 != 0 {
			target += int64(math.Round(float64(gridTicks) / 2 * swing))
		}
		moved := int64(math.Round(float64(tick) + float64(target-tick)*strength))
		if moved < 0 {
			moved = 0
		}
		track.Notes[i].Tick = moved
	}
	return matched, nil
}

// Transpose shifts matching pitches by a signed number of semitones,
// clamping into the MIDI key range.
func Transpose(track *midi.Track, sel query.Selector, semitones int) (int, error) {
	matched := 0
	for i := range track.Notes {
		if !sel.MatchNote(track.Notes[i], track) {
			continue
		}
		matched++
		track.Notes[i].Pitch = midi.ClampPitch(int(track.Notes[i].Pitch) + semitones)
	}
	return matched, nil
}

// OverlapMode selects how FixOverlaps resolves a pairwise overlap.
type OverlapMode string

const (
	OverlapTrim   OverlapMode = "trim"
	OverlapRemove OverlapMode = "remove"
)

// FixOverlaps resolves overlaps between adjacent notes of the same pitch and
// resolved channel in a single left-to-right pass per group. Trim shortens
// the earlier note to end at the next note's start; remove drops the later
// note. A deeper overlap chain can survive one pass. Returns the number of
// notes trimmed or removed.
func FixOverlaps(track *midi.Track, sel query.Selector, mode OverlapMode) (int, error) {
	if mode != OverlapTrim && mode != OverlapRemove {
		return 0, fmt.Errorf("%w: mode must be %q or %q", ErrInvalidArgument, OverlapTrim, OverlapRemove)
	}

	groups := map[[2]uint8][]int{}
	for i, n := range track.Notes {
		if !sel.MatchNote(n, track) {
			continue
		}
		key := [2]uint8{n.Pitch, midi.ResolveChannel(n.Channel, track)}
		groups[key] = append(groups[key], i)
	}

	affected := 0
	removed := map[int]bool{}
	for _, indices := range groups {
		sortByTick(track, indices)
		for k := 0; k+1 < len(indices); k++ {
			cur, next := indices[k], indices[k+1]
			if track.Notes[cur].End() <= track.Notes[next].Tick {
				continue
			}
			affected++
			if mode == OverlapRemove {
				removed[next] = true
				continue
			}
			duration := track.Notes[next].Tick - track.Notes[cur].Tick
			if duration < 1 {
				duration = 1
			}
			track.Notes[cur].Duration = duration
		}
	}

	if len(removed) > 0 {
		kept := make([]midi.Note, 0, len(track.Notes)-len(removed))
		for i, n := range track.Notes {
			if !removed[i] {
				kept = append(kept, n)
			}
		}
		track.Notes = kept
	}
	return affected, nil
}

// Legato stretches each matching note to reach the next matching note's
// start minus gapTicks, chaining by start tick regardless of pitch. The last
// note in the chain keeps its duration. Returns the number of notes whose
// duration changed.
func Legato(track *midi.Track, sel query.Selector, gapTicks int64) (int, error) {
	if gapTicks < 0 {
		return 0, fmt.Errorf("%w: gap_ticks must be >= 0", ErrInvalidArgument)
	}

	indices := []int{}
	for i, n := range track.Notes {
		if sel.MatchNote(n, track) {
			indices = append(indices, i)
		}
	}
	sortByTick(track, indices)

	changed := 0
	for k := 0; k+1 < len(indices); k++ {
		cur, next := indices[k], indices[k+1]
		duration := track.Notes[next].Tick - track.Notes[cur].Tick - gapTicks
		if duration < 1 {
			duration = 1
		}
		if track.Notes[cur].Duration != duration {
			track.Notes[cur].Duration = duration
			changed++
		}
	}
	return changed, nil
}

// TrimNotes removes matching notes shorter than minDuration. Notes that fail
// the selector are always kept. Returns the number of removed notes.
func TrimNotes(track *midi.Track, sel query.Selector, minDuration int64) (int, error) {
	if minDuration < 1 {
		return 0, fmt.Errorf("%w: min_duration_ticks must be >= 1", ErrInvalidArgument)
	}

	kept := make([]midi.Note, 0, len(track.Notes))
	removed := 0
	for _, n := range track.Notes {
		if sel.MatchNote(n, track) && n.Duration < minDuration {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	track.Notes = kept
	return removed, nil
}

func sortByTick(track *midi.Track, indices []int) {
	sort.SliceStable(indices, func(i, j int) bool {
		return track.Notes[indices[i]].Tick < track.Notes[indices[j]].Tick
	})
}
