package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `fermata edits MIDI files as Projects → Sessions → Tracks.

Core concepts:
- Project: an absolute root directory. Every file path you pass is relative to it and may not escape it.
- Session: an open, mutable sequence in memory. Nothing touches disk until save_midi.
- Dirty flag: set by every mutation (even one that matched nothing), cleared by save_midi and revert_session.
- Ticks: the native time unit. convert_time translates among ticks, bar/beat/tick, quarter notes, and seconds under the session's tempo map.
- Velocities and CC values are 0..1 floats; pitch bends are -1..1.

Default workflow:
1) create_project once per working directory, then open_midi or create_midi.
2) Inspect with get_session (header and track counts) and get_events (paginated; use limit to control token usage).
3) backup_session before risky edits; revert_session rolls back to the last backup, restore_backup forks a backup into a fresh session.
4) Edit with add_* and set_* tools; shape with quantize_notes, humanize_notes, transpose_notes, constrain_to_scale, fix_overlaps, apply_legato, trim_notes. All transforms accept the same filter fields (start_ticks/end_ticks, types, pitches, channel).
5) save_midi to write the file; close_session when done.

Docs:
- fermata://docs/time-units (tick math and BBT addressing)
- fermata://docs/transforms (filter semantics and transform behavior)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "fermata://docs/time-units",
		Name:        "docs_time_units",
		Title:       "Time units and the tempo map",
		Description: "How ticks, bars, beats, quarter notes, and seconds relate under tempo and time-signature changes.",
		Content: `# Time units

Every event position is stored in **ticks**. One quarter note is PPQ ticks
(PPQ is per-session, reported by get_session; 480 is the default for new
sequences).

## BBT addressing

Bars and beats are **1-indexed**. A beat's length in ticks depends on the
time signature denominator: in 4/4 a beat is PPQ ticks, in 6/8 it is PPQ/2.
The bar grid restarts at every time-signature change, and a partial bar
before a change still counts as a full bar number.

## Seconds

Seconds depend on the tempo map. Conversion integrates piecewise over tempo
segments, so a position after a tempo change accounts for every earlier
segment at its own BPM. humanize_notes does its timing offsets in seconds
for the same reason: a 10ms spread means 10ms at any tempo.

## Practical guidance

- Prefer ticks in tool arguments; use convert_time when the user speaks in
  bars or seconds.
- quantize_notes accepts a fraction like "1/8" and resolves it against the
  session's PPQ, so you rarely need tick math for grids.
`,
	},
	{
		URI:         "fermata://docs/transforms",
		Name:        "docs_transforms",
		Title:       "Filters and transforms",
		Description: "Shared filter semantics and what each transform does to matching notes.",
		Content: `# Filters and transforms

All transforms and get_events share one filter shape. A note matches only
when it passes **every** supplied constraint:

- start_ticks/end_ticks: half-open range [start, end) on the note's start.
- types: note, cc, pitch_bend (transforms only touch notes).
- pitches / controllers: allow-lists.
- channel: matched against the event's resolved channel (event override,
  else track channel).

An empty filter matches everything on the track.

## Transform notes

- quantize_notes: strength 0..1 interpolates between the original position
  and the grid; swing delays odd grid slots by up to half a grid step.
- humanize_notes: uniform random timing offset (tempo-aware milliseconds)
  and velocity delta; results clamp to valid ranges.
- constrain_to_scale: strategy nearest resolves equidistant ties upward;
  up/down force a direction.
- fix_overlaps: only same-pitch, same-resolved-channel pairs overlap; trim
  shortens the earlier note, remove drops the later one.
- apply_legato: each matching note stretches to the next matching note's
  start minus gap_ticks; the last note keeps its duration.
- trim_notes: removes matching notes shorter than min_duration_ticks.

Every transform call marks the session dirty, even when it affected zero
notes. Take backup_session first if you may want to revert.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
