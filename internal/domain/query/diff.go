package query

import "github.com/jpender/fermata/internal/midi"

// SequenceSummary reports cardinalities for one side of a diff.
type SequenceSummary struct {
	TrackCount int `json:"track_count"`
	NoteCount  int `json:"note_count"`
}

// DiffSummary compares two sequences by cardinality only, optionally
// restricted to a shared tick range. Event content is not compared.
type DiffSummary struct {
	A         SequenceSummary `json:"a"`
	B         SequenceSummary `json:"b"`
	SamePPQ   bool            `json:"same_ppq"`
	StartTick *int64          `json:"start_ticks,omitempty"`
	EndTick   *int64          `json:"end_ticks,omitempty"`
}

// Diff summarizes two sequences over an optional shared range.
func Diff(a, b *midi.Sequence, startTick, endTick *int64) DiffSummary {
	sel := Selector{StartTick: startTick, EndTick: endTick}
	return DiffSummary{
		A:         summarize(a, sel),
		B:         summarize(b, sel),
		SamePPQ:   a.PPQ == b.PPQ,
		StartTick: startTick,
		EndTick:   endTick,
	}
}

func summarize(seq *midi.Sequence, sel Selector) SequenceSummary {
	sum := SequenceSummary{TrackCount: len(seq.Tracks)}
	for _, track := range seq.Tracks {
		for _, n := range track.Notes {
			if sel.inRange(n.Tick) {
				sum.NoteCount++
			}
		}
	}
	return sum
}
