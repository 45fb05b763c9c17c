package session

import (
	"context"

	"github.com/jpender/fermata/internal/domain/query"
	"github.com/jpender/fermata/internal/domain/transform"
	"github.com/jpender/fermata/internal/timeline"
)

// withTrack runs a transform under the session lock and marks the session
// dirty afterwards. Dirty is set even when the transform matched nothing:
// running a transform dirties the session regardless of effect.
func (s *Service) withTrack(ctx context.Context, id string, trackIndex int, fn func(sess *Session) (int, error)) (int, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	sess.Lock()
	defer sess.Unlock()

	if _, err := s.track(sess, trackIndex); err != nil {
		return 0, err
	}
	affected, err := fn(sess)
	if err != nil {
		return 0, err
	}
	s.markDirty(sess)
	return affected, nil
}

// Quantize snaps matching note starts to a grid given as ticks or a
// fraction like "1/8".
func (s *Service) Quantize(ctx context.Context, id string, trackIndex int, sel query.Selector, gridTicks int64, grid string, strength, swing float64) (int, error) {
	return s.withTrack(ctx, id, trackIndex, func(sess *Session) (int, error) {
		resolved, err := transform.ResolveGrid(sess.Seq.PPQ, gridTicks, grid)
		if err != nil {
			return 0, err
		}
		return transform.Quantize(sess.Seq.Tracks[trackIndex], sel, resolved, strength, swing)
	})
}

// Humanize randomizes matching note timing (tempo-aware, in milliseconds)
// and velocity.
func (s *Service) Humanize(ctx context.Context, id string, trackIndex int, sel query.Selector, timingMs, velocityAmount float64) (int, error) {
	return s.withTrack(ctx, id, trackIndex, func(sess *Session) (int, error) {
		tl := timeline.New(sess.Seq)
		return transform.Humanize(sess.Seq.Tracks[trackIndex], sel, tl, timingMs, velocityAmount, nil)
	})
}

// Transpose shifts matching pitches by semitones.
func (s *Service) Transpose(ctx context.Context, id string, trackIndex, semitones int, sel query.Selector) (int, error) {
	return s.withTrack(ctx, id, trackIndex, func(sess *Session) (int, error) {
		return transform.Transpose(sess.Seq.Tracks[trackIndex], sel, semitones)
	})
}

// ConstrainToScale snaps matching pitches into a key and scale.
func (s *Service) ConstrainToScale(ctx context.Context, id string, trackIndex int, sel query.Selector, key, scale string, strategy transform.Strategy) (int, error) {
	return s.withTrack(ctx, id, trackIndex, func(sess *Session) (int, error) {
		return transform.ConstrainToScale(sess.Seq.Tracks[trackIndex], sel, key, scale, strategy)
	})
}

// FixOverlaps resolves same-pitch overlaps by trimming or removing.
func (s *Service) FixOverlaps(ctx context.Context, id string, trackIndex int, sel query.Selector, mode transform.OverlapMode) (int, error) {
	return s.withTrack(ctx, id, trackIndex, func(sess *Session) (int, error) {
		return transform.FixOverlaps(sess.Seq.Tracks[trackIndex], sel, mode)
	})
}

// Legato stretches matching notes to meet the next note minus a gap.
func (s *Service) Legato(ctx context.Context, id string, trackIndex int, sel query.Selector, gapTicks int64) (int, error) {
	return s.withTrack(ctx, id, trackIndex, func(sess *Session) (int, error) {
		return transform.Legato(sess.Seq.Tracks[trackIndex], sel, gapTicks)
	})
}

// TrimNotes removes matching notes shorter than a minimum duration.
func (s *Service) TrimNotes(ctx context.Context, id string, trackIndex int, sel query.Selector, minDuration int64) (int, error) {
	return s.withTrack(ctx, id, trackIndex, func(sess *Session) (int, error) {
		return transform.TrimNotes(sess.Seq.Tracks[trackIndex], sel, minDuration)
	})
}
