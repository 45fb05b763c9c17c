package transform

import (
	"fmt"
	"strings"

	"github.com/jpender/fermata/internal/domain/query"
	"github.com/jpender/fermata/internal/midi"
)

// Strategy selects the search direction for ConstrainToScale.
type Strategy string

const (
	StrategyNearest Strategy = "nearest"
	StrategyUp      Strategy = "up"
	StrategyDown    Strategy = "down"
)

// scales maps scale names to semitone intervals above the key root.
var scales = map[string][]int{
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"minor":      {0, 2, 3, 5, 7, 8, 10},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
}

// keyRoots maps chromatic key names (sharps and flat aliases) to pitch classes.
var keyRoots = map[string]int{
	"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3,
	"E": 4, "F": 5, "F#": 6, "Gb": 6, "G": 7, "G#": 8,
	"Ab": 8, "A": 9, "A#": 10, "Bb": 10, "B": 11,
}

// ConstrainToScale moves every matching pitch to the allowed pitch-class set
// of the named key and scale. Strategy nearest picks the closer direction,
// breaking ties upward; up and down search only in that direction. Results
// are clamped to the MIDI key range. Returns the number of matched notes.
func ConstrainToScale(track *midi.Track, sel query.Selector, key, scaleName string, strategy Strategy) (int, error) {
	root, ok := keyRoots[normalizeKey(key)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown key %q", ErrInvalidArgument, key)
	}
	intervals, ok := scales[strings.ToLower(scaleName)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown scale %q", ErrInvalidArgument, scaleName)
	}
	if strategy != StrategyNearest && strategy != StrategyUp && strategy != StrategyDown {
		return 0, fmt.Errorf("%w: strategy must be nearest, up, or down", ErrInvalidArgument)
	}

	allowed := [12]bool{}
	for _, interval := range intervals {
		allowed[(root+interval)%12] = true
	}

	matched := 0
	for i := range track.Notes {
		if !sel.MatchNote(track.Notes[i], track) {
			continue
		}
		matched++
		track.Notes[i].Pitch = snapToScale(int(track.Notes[i].Pitch), allowed, strategy)
	}
	return matched, nil
}

func snapToScale(pitch int, allowed [12]bool, strategy Strategy) uint8 {
	if allowed[pitchClass(pitch)] {
		return midi.ClampPitch(pitch)
	}
	// At each distance the upward candidate is checked first, so nearest
	// ties resolve upward.
	for d := 1; d <= 11; d++ {
		if strategy != StrategyDown && allowed[pitchClass(pitch+d)] {
			return midi.ClampPitch(pitch + d)
		}
		if strategy != StrategyUp && allowed[pitchClass(pitch-d)] {
			return midi.ClampPitch(pitch - d)
		}
	}
	return midi.ClampPitch(pitch)
}

func pitchClass(pitch int) int {
	pc := pitch % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// normalizeKey uppercases the letter and preserves an accidental, so "c#",
// "Bb", and "BB" all resolve.
func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return key
	}
	out := strings.ToUpper(key[:1])
	if len(key) > 1 {
		switch key[1] {
		case '#':
			out += "#"
		case 'b', 'B':
			out += "b"
		default:
			out += key[1:]
		}
	}
	return out
}
