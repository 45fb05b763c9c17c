// Package query produces a uniform, time-ordered view of a track's
// heterogeneous events with filtering and pagination.
package query

import (
	"sort"

	"github.com/jpender/fermata/internal/midi"
)

const (
	// DefaultLimit is the page size when the caller supplies none.
	DefaultLimit = 512
	// MaxLimit is the hard cap on page size.
	MaxLimit = 5000
)

// Selector is the shared range and attribute predicate: a tick window that
// includes its start and excludes its end, intersected with optional type,
// number, and channel constraints. Absent constraints pass everything.
type Selector struct {
	StartTick   *int64
	EndTick     *int64
	Types       []midi.EventType
	Pitches     []uint8
	Controllers []uint8
	Channel     *uint8
}

func (s Selector) inRange(tick int64) bool {
	if s.StartTick != nil && tick < *s.StartTick {
		return false
	}
	if s.EndTick != nil && tick >= *s.EndTick {
		return false
	}
	return true
}

func (s Selector) hasType(t midi.EventType) bool {
	if len(s.Types) == 0 {
		return true
	}
	for _, candidate := range s.Types {
		if candidate == t {
			return true
		}
	}
	return false
}

func (s Selector) hasChannel(ch uint8) bool {
	return s.Channel == nil || *s.Channel == ch
}

func inSet(set []uint8, v uint8) bool {
	if len(set) == 0 {
		return true
	}
	for _, candidate := range set {
		if candidate == v {
			return true
		}
	}
	return false
}

// MatchNote reports whether a note passes every supplied constraint.
func (s Selector) MatchNote(n midi.Note, track *midi.Track) bool {
	return s.hasType(midi.EventNote) &&
		s.inRange(n.Tick) &&
		inSet(s.Pitches, n.Pitch) &&
		s.hasChannel(midi.ResolveChannel(n.Channel, track))
}

// MatchCC reports whether a control change on the given controller passes.
func (s Selector) MatchCC(controller uint8, cc midi.ControlChange, track *midi.Track) bool {
	return s.hasType(midi.EventCC) &&
		s.inRange(cc.Tick) &&
		inSet(s.Controllers, controller) &&
		s.hasChannel(midi.ResolveChannel(cc.Channel, track))
}

// MatchPitchBend reports whether a pitch bend passes.
func (s Selector) MatchPitchBend(pb midi.PitchBend, track *midi.Track) bool {
	return s.hasType(midi.EventPitchBend) &&
		s.inRange(pb.Tick) &&
		s.hasChannel(midi.ResolveChannel(pb.Channel, track))
}

// Page selects a window of the filtered result set.
type Page struct {
	Offset int
	Limit  int
}

// Result is one page of events plus paging bookkeeping. NextOffset is nil
// when the result set is exhausted.
type Result struct {
	Events     []midi.Event `json:"events"`
	Total      int          `json:"total"`
	NextOffset *int         `json:"next_offset,omitempty"`
}

// Events filters one track's collections, merges them into a single view
// sorted ascending by tick, and applies pagination. Relative order at equal
// ticks is stable only within a single source collection.
func Events(track *midi.Track, sel Selector, page Page) Result {
	events := []midi.Event{}

	for _, n := range track.Notes {
		if !sel.MatchNote(n, track) {
			continue
		}
		n := n
		events = append(events, midi.Event{
			Type:     midi.EventNote,
			Tick:     n.Tick,
			Channel:  midi.ResolveChannel(n.Channel, track),
			Pitch:    &n.Pitch,
			Duration: &n.Duration,
			Velocity: &n.Velocity,
		})
	}
	for controller, ccs := range track.ControlChanges {
		for _, cc := range ccs {
			if !sel.MatchCC(controller, cc, track) {
				continue
			}
			cc := cc
			controller := controller
			events = append(events, midi.Event{
				Type:       midi.EventCC,
				Tick:       cc.Tick,
				Channel:    midi.ResolveChannel(cc.Channel, track),
				Controller: &controller,
				Value:      &cc.Value,
			})
		}
	}
	for _, pb := range track.PitchBends {
		if !sel.MatchPitchBend(pb, track) {
			continue
		}
		pb := pb
		events = append(events, midi.Event{
			Type:    midi.EventPitchBend,
			Tick:    pb.Tick,
			Channel: midi.ResolveChannel(pb.Channel, track),
			Value:   &pb.Value,
		})
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Tick < events[j].Tick })

	total := len(events)
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	limit := page.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	result := Result{Events: events[offset:end], Total: total}
	if end < total {
		next := end
		result.NextOffset = &next
	}
	return result
}
