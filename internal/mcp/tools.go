package mcp

import (
	"context"

	"github.com/jpender/fermata/internal/domain/project"
	"github.com/jpender/fermata/internal/domain/query"
	"github.com/jpender/fermata/internal/domain/session"
	"github.com/jpender/fermata/internal/domain/transform"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type ListProjectsResponse struct {
	Projects []project.Project `json:"projects"`
}

type ListSessionsResponse struct {
	Sessions []session.Info `json:"sessions"`
}

// registerTools binds every tool to its domain service. Handlers return
// domain structs directly; errors pass through MapError so clients see
// stable codes instead of raw error chains.
func registerTools(server *sdkmcp.Server, svc Services) {
	registerProjectTools(server, svc)
	registerSessionTools(server, svc)
	registerQueryTools(server, svc)
	registerEditTools(server, svc)
	registerTransformTools(server, svc)
	registerBackupTools(server, svc)
}

func registerProjectTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Register a project root directory that MIDI file paths are resolved against",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args CreateProjectParams) (*sdkmcp.CallToolResult, *project.Project, error) {
		proj, err := svc.Projects.Create(ctx, project.CreateRequest{
			ID:       args.ID,
			Name:     args.Name,
			RootPath: args.RootPath,
		})
		if err != nil {
			return nil, nil, MapError(err)
		}
		return nil, proj, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List all registered projects",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListProjectsParams) (*sdkmcp.CallToolResult, ListProjectsResponse, error) {
		projects, err := svc.Projects.List(ctx)
		if err != nil {
			return nil, ListProjectsResponse{}, MapError(err)
		}
		return nil, ListProjectsResponse{Projects: projects}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get a project by id",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args GetProjectParams) (*sdkmcp.CallToolResult, *project.Project, error) {
		proj, err := svc.Projects.Get(ctx, args.ID)
		if err != nil {
			return nil, nil, MapError(err)
		}
		return nil, proj, nil
	})
}

func registerSessionTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "open_midi",
		Description: "Open a MIDI file from the project into a new editing session",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args OpenMidiParams) (*sdkmcp.CallToolResult, *session.Description, error) {
		sess, err := svc.Sessions.Open(ctx, args.ProjectID, args.Path)
		if err != nil {
			return nil, nil, MapError(err)
		}
		return describe(ctx, svc, sess.ID)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_midi",
		Description: "Create a new sequence from a composition description in a new editing session",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args CreateMidiParams) (*sdkmcp.CallToolResult, *session.Description, error) {
		sess, err := svc.Sessions.Create(ctx, args.ProjectID, args.Composition)
		if err != nil {
			return nil, nil, MapError(err)
		}
		return describe(ctx, svc, sess.ID)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "save_midi",
		Description: "Encode the session's sequence and write it under the project root",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args SaveMidiParams) (*sdkmcp.CallToolResult, SaveMidiResponse, error) {
		path, err := svc.Sessions.Save(ctx, args.SessionID, args.Path)
		if err != nil {
			return nil, SaveMidiResponse{}, MapError(err)
		}
		return nil, SaveMidiResponse{SessionID: args.SessionID, Path: path, Dirty: false}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "close_session",
		Description: "Close a session, discarding unsaved changes",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args SessionIDParams) (*sdkmcp.CallToolResult, StatusResponse, error) {
		if err := svc.Sessions.Close(ctx, args.SessionID); err != nil {
			return nil, StatusResponse{}, MapError(err)
		}
		return nil, StatusResponse{Status: "closed"}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_sessions",
		Description: "List all open editing sessions",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListSessionsParams) (*sdkmcp.CallToolResult, ListSessionsResponse, error) {
		infos, err := svc.Sessions.List(ctx)
		if err != nil {
			return nil, ListSessionsResponse{}, MapError(err)
		}
		return nil, ListSessionsResponse{Sessions: infos}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_session",
		Description: "Get a session's header: tempo map, time signatures, and per-track counts",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args SessionIDParams) (*sdkmcp.CallToolResult, *session.Description, error) {
		return describe(ctx, svc, args.SessionID)
	})
}

func describe(ctx context.Context, svc Services, sessionID string) (*sdkmcp.CallToolResult, *session.Description, error) {
	desc, err := svc.Sessions.Describe(ctx, sessionID)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, desc, nil
}

func registerQueryTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_events",
		Description: "Get one filtered, paginated page of a track's events in tick order",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args GetEventsParams) (*sdkmcp.CallToolResult, GetEventsResponse, error) {
		sel, err := args.selector()
		if err != nil {
			return nil, GetEventsResponse{}, MapError(err)
		}
		result, err := svc.Sessions.Events(ctx, args.SessionID, args.Track, sel, query.Page{
			Offset: args.Offset,
			Limit:  args.Limit,
		})
		if err != nil {
			return nil, GetEventsResponse{}, MapError(err)
		}
		return nil, GetEventsResponse{SessionID: args.SessionID, Track: args.Track, Result: result}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "diff_sessions",
		Description: "Summarize two sessions' sequences by track and note counts over an optional tick range",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args DiffSessionsParams) (*sdkmcp.CallToolResult, query.DiffSummary, error) {
		diff, err := svc.Sessions.Diff(ctx, args.SessionIDA, args.SessionIDB, args.StartTicks, args.EndTicks)
		if err != nil {
			return nil, query.DiffSummary{}, MapError(err)
		}
		return nil, diff, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "convert_time",
		Description: "Convert a position among ticks, bar/beat/tick, quarter notes, and seconds; supply exactly one unit",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args ConvertTimeParams) (*sdkmcp.CallToolResult, session.ConvertResult, error) {
		result, err := svc.Sessions.ConvertTime(ctx, args.SessionID, session.ConvertRequest{
			Ticks:        args.Ticks,
			BBT:          args.BBT,
			QuarterNotes: args.QuarterNotes,
			Seconds:      args.Seconds,
		})
		if err != nil {
			return nil, session.ConvertResult{}, MapError(err)
		}
		return nil, result, nil
	})
}

func registerEditTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_track",
		Description: "Append an empty track to the session's sequence",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args AddTrackParams) (*sdkmcp.CallToolResult, AddTrackResponse, error) {
		index, err := svc.Sessions.AddTrack(ctx, args.SessionID, args.Name, args.Channel, args.ProgramNumber)
		if err != nil {
			return nil, AddTrackResponse{}, MapError(err)
		}
		return nil, AddTrackResponse{SessionID: args.SessionID, Track: index}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_notes",
		Description: "Insert notes into a track",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args AddNotesParams) (*sdkmcp.CallToolResult, AffectedResponse, error) {
		added, err := svc.Sessions.AddNotes(ctx, args.SessionID, args.Track, args.Notes)
		return affected(args.SessionID, args.Track, added, err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_control_changes",
		Description: "Insert control change events for one controller number",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args AddControlChangesParams) (*sdkmcp.CallToolResult, AffectedResponse, error) {
		added, err := svc.Sessions.AddControlChanges(ctx, args.SessionID, args.Track, args.Controller, args.Changes)
		return affected(args.SessionID, args.Track, added, err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_pitch_bends",
		Description: "Insert pitch bend events into a track",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args AddPitchBendsParams) (*sdkmcp.CallToolResult, AffectedResponse, error) {
		added, err := svc.Sessions.AddPitchBends(ctx, args.SessionID, args.Track, args.Bends)
		return affected(args.SessionID, args.Track, added, err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_tempo",
		Description: "Insert or replace the tempo entry at a tick",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args SetTempoParams) (*sdkmcp.CallToolResult, StatusResponse, error) {
		if err := svc.Sessions.SetTempo(ctx, args.SessionID, args.Tick, args.BPM); err != nil {
			return nil, StatusResponse{}, MapError(err)
		}
		return nil, StatusResponse{Status: "ok"}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_time_signature",
		Description: "Insert or replace the time signature at a tick",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args SetTimeSignatureParams) (*sdkmcp.CallToolResult, StatusResponse, error) {
		if err := svc.Sessions.SetTimeSignature(ctx, args.SessionID, args.Tick, args.Numerator, args.Denominator); err != nil {
			return nil, StatusResponse{}, MapError(err)
		}
		return nil, StatusResponse{Status: "ok"}, nil
	})
}

func registerTransformTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "quantize_notes",
		Description: "Snap matching note starts to a grid, with optional partial strength and swing",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args QuantizeParams) (*sdkmcp.CallToolResult, AffectedResponse, error) {
		sel, err := args.selector()
		if err != nil {
			return nil, AffectedResponse{}, MapError(err)
		}
		strength := 1.0
		if args.Strength != nil {
			strength = *args.Strength
		}
		n, err := svc.Sessions.Quantize(ctx, args.SessionID, args.Track, sel, args.GridTicks, args.Grid, strength, args.Swing)
		return affected(args.SessionID, args.Track, n, err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "humanize_notes",
		Description: "Randomize matching note timing and velocity; timing offsets are tempo-aware milliseconds",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args HumanizeParams) (*sdkmcp.CallToolResult, AffectedResponse, error) {
		sel, err := args.selector()
		if err != nil {
			return nil, AffectedResponse{}, MapError(err)
		}
		n, err := svc.Sessions.Humanize(ctx, args.SessionID, args.Track, sel, args.TimingMs, args.VelocityAmount)
		return affected(args.SessionID, args.Track, n, err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "transpose_notes",
		Description: "Shift matching pitches by semitones, clamped to the MIDI range",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args TransposeParams) (*sdkmcp.CallToolResult, AffectedResponse, error) {
		sel, err := args.selector()
		if err != nil {
			return nil, AffectedResponse{}, MapError(err)
		}
		n, err := svc.Sessions.Transpose(ctx, args.SessionID, args.Track, args.Semitones, sel)
		return affected(args.SessionID, args.Track, n, err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "constrain_to_scale",
		Description: "Snap matching pitches onto a key and scale",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args ConstrainToScaleParams) (*sdkmcp.CallToolResult, AffectedResponse, error) {
		sel, err := args.selector()
		if err != nil {
			return nil, AffectedResponse{}, MapError(err)
		}
		strategy := transform.Strategy(args.Strategy)
		if strategy == "" {
			strategy = transform.StrategyNearest
		}
		n, err := svc.Sessions.ConstrainToScale(ctx, args.SessionID, args.Track, sel, args.Key, args.Scale, strategy)
		return affected(args.SessionID, args.Track, n, err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "fix_overlaps",
		Description: "Resolve same-pitch, same-channel note overlaps by trimming or removing",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args FixOverlapsParams) (*sdkmcp.CallToolResult, AffectedResponse, error) {
		sel, err := args.selector()
		if err != nil {
			return nil, AffectedResponse{}, MapError(err)
		}
		mode := transform.OverlapMode(args.Mode)
		if mode == "" {
			mode = transform.OverlapTrim
		}
		n, err := svc.Sessions.FixOverlaps(ctx, args.SessionID, args.Track, sel, mode)
		return affected(args.SessionID, args.Track, n, err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "apply_legato",
		Description: "Stretch each matching note to meet the next note's start minus a gap",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args LegatoParams) (*sdkmcp.CallToolResult, AffectedResponse, error) {
		sel, err := args.selector()
		if err != nil {
			return nil, AffectedResponse{}, MapError(err)
		}
		n, err := svc.Sessions.Legato(ctx, args.SessionID, args.Track, sel, args.GapTicks)
		return affected(args.SessionID, args.Track, n, err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "trim_notes",
		Description: "Remove matching notes shorter than a minimum duration",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args TrimNotesParams) (*sdkmcp.CallToolResult, AffectedResponse, error) {
		sel, err := args.selector()
		if err != nil {
			return nil, AffectedResponse{}, MapError(err)
		}
		n, err := svc.Sessions.TrimNotes(ctx, args.SessionID, args.Track, sel, args.MinDurationTicks)
		return affected(args.SessionID, args.Track, n, err)
	})
}

func affected(sessionID string, track, n int, err error) (*sdkmcp.CallToolResult, AffectedResponse, error) {
	if err != nil {
		return nil, AffectedResponse{}, MapError(err)
	}
	return nil, AffectedResponse{SessionID: sessionID, Track: track, Affected: n, Dirty: true}, nil
}

func registerBackupTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "backup_session",
		Description: "Snapshot the session's current state into an immutable backup",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args SessionIDParams) (*sdkmcp.CallToolResult, BackupResponse, error) {
		backup, err := svc.Sessions.Backup(ctx, args.SessionID)
		if err != nil {
			return nil, BackupResponse{}, MapError(err)
		}
		return nil, BackupResponse{BackupID: backup.ID, SessionID: args.SessionID, Bytes: len(backup.Raw)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "restore_backup",
		Description: "Decode a backup into a brand-new session, leaving existing sessions untouched",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args RestoreBackupParams) (*sdkmcp.CallToolResult, *session.Description, error) {
		sess, err := svc.Sessions.Restore(ctx, args.BackupID)
		if err != nil {
			return nil, nil, MapError(err)
		}
		return describe(ctx, svc, sess.ID)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "revert_session",
		Description: "Replace the session's sequence with its last backup and clear the dirty flag",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args SessionIDParams) (*sdkmcp.CallToolResult, *session.Description, error) {
		if err := svc.Sessions.Revert(ctx, args.SessionID); err != nil {
			return nil, nil, MapError(err)
		}
		return describe(ctx, svc, args.SessionID)
	})
}
