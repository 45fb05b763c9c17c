package transform

import (
	"fmt"
	"math/rand"

	"github.com/jpender/fermata/internal/domain/query"
	"github.com/jpender/fermata/internal/midi"
	"github.com/jpender/fermata/internal/timeline"
)

// Humanize perturbs matching notes with uniform random offsets. Timing
// offsets are drawn in [-timingMs, +timingMs] milliseconds and applied in
// the seconds domain, so the tick displacement follows the local tempo.
// Velocity deltas are drawn in [-velocityAmount, +velocityAmount] and
// clamped to [0,1]. A nil rng uses the shared non-deterministic source.
// Returns the number of matched notes.
func Humanize(track *midi.Track, sel query.Selector, tl *timeline.Timeline, timingMs, velocityAmount float64, rng *rand.Rand) (int, error) {
	if timingMs < 0 {
		return 0, fmt.Errorf("%w: timing_ms must be >= 0", ErrInvalidArgument)
	}
	if velocityAmount < 0 || velocityAmount > 1 {
		return 0, fmt.Errorf("%w: velocity_amount must be in [0,1]", ErrInvalidArgument)
	}

	uniform := rand.Float64
	if rng != nil {
		uniform = rng.Float64
	}

	matched := 0
	for i := range track.Notes {
		if !sel.MatchNote(track.Notes[i], track) {
			continue
		}
		matched++
		if timingMs > 0 {
			offset := (uniform()*2 - 1) * timingMs / 1000
			seconds := tl.TicksToSeconds(track.Notes[i].Tick) + offset
			track.Notes[i].Tick = tl.SecondsToTicks(seconds)
		}
		if velocityAmount > 0 {
			delta := (uniform()*2 - 1) * velocityAmount
			track.Notes[i].Velocity = midi.ClampUnit(track.Notes[i].Velocity + delta)
		}
	}
	return matched, nil
}
