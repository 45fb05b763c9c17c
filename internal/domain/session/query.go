package session

import (
	"context"
	"fmt"

	"github.com/jpender/fermata/internal/domain/query"
	"github.com/jpender/fermata/internal/timeline"
)

// Events returns one filtered, paginated page of a track's events.
func (s *Service) Events(ctx context.Context, id string, trackIndex int, sel query.Selector, page query.Page) (query.Result, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return query.Result{}, err
	}
	sess.Lock()
	defer sess.Unlock()

	track, err := s.track(sess, trackIndex)
	if err != nil {
		return query.Result{}, err
	}
	return query.Events(track, sel, page), nil
}

// Diff summarizes two sessions' sequences by cardinality over an optional
// shared tick range.
func (s *Service) Diff(ctx context.Context, idA, idB string, startTick, endTick *int64) (query.DiffSummary, error) {
	a, err := s.Get(ctx, idA)
	if err != nil {
		return query.DiffSummary{}, err
	}
	b, err := s.Get(ctx, idB)
	if err != nil {
		return query.DiffSummary{}, err
	}

	// Lock in id order to keep a stable acquisition order across calls.
	first, second := a, b
	if idB < idA {
		first, second = b, a
	}
	first.Lock()
	defer first.Unlock()
	if first != second {
		second.Lock()
		defer second.Unlock()
	}

	return query.Diff(a.Seq, b.Seq, startTick, endTick), nil
}

// ConvertRequest names a single position in one unit. Exactly one of the
// four fields must be set.
type ConvertRequest struct {
	Ticks        *int64
	BBT          *timeline.BBT
	QuarterNotes *float64
	Seconds      *float64
}

// ConvertResult expresses the same position in every unit.
type ConvertResult struct {
	Ticks        int64        `json:"ticks"`
	BBT          timeline.BBT `json:"bbt"`
	QuarterNotes float64      `json:"quarter_notes"`
	Seconds      float64      `json:"seconds"`
}

// ConvertTime converts a position among ticks, BBT, quarter notes, and
// seconds under the session's tempo and time-signature maps.
func (s *Service) ConvertTime(ctx context.Context, id string, req ConvertRequest) (ConvertResult, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return ConvertResult{}, err
	}
	sess.Lock()
	defer sess.Unlock()

	supplied := 0
	for _, set := range []bool{req.Ticks != nil, req.BBT != nil, req.QuarterNotes != nil, req.Seconds != nil} {
		if set {
			supplied++
		}
	}
	if supplied != 1 {
		return ConvertResult{}, fmt.Errorf("%w: supply exactly one of ticks, bbt, quarter_notes, seconds", ErrInvalidInput)
	}

	tl := timeline.New(sess.Seq)
	var ticks int64
	switch {
	case req.Ticks != nil:
		ticks = *req.Ticks
		if ticks < 0 {
			return ConvertResult{}, fmt.Errorf("%w: ticks must be >= 0", ErrInvalidInput)
		}
	case req.BBT != nil:
		ticks, err = tl.BBTToTicks(*req.BBT)
		if err != nil {
			return ConvertResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	case req.QuarterNotes != nil:
		ticks = tl.QuarterNotesToTicks(*req.QuarterNotes)
	case req.Seconds != nil:
		ticks = tl.SecondsToTicks(*req.Seconds)
	}

	return ConvertResult{
		Ticks:        ticks,
		BBT:          tl.TicksToBBT(ticks),
		QuarterNotes: tl.TicksToQuarterNotes(ticks),
		Seconds:      tl.TicksToSeconds(ticks),
	}, nil
}
