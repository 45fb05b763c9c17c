package mcp

import (
	"context"
	"log/slog"

	"github.com/jpender/fermata/internal/domain/project"
	"github.com/jpender/fermata/internal/domain/query"
	"github.com/jpender/fermata/internal/domain/session"
	"github.com/jpender/fermata/internal/domain/transform"
	"github.com/jpender/fermata/internal/midi"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context) ([]project.Project, error)
}

// SessionService defines session operations needed by MCP.
type SessionService interface {
	Open(ctx context.Context, projectID, relativePath string) (*session.Session, error)
	Create(ctx context.Context, projectID string, comp midi.CompositionRequest) (*session.Session, error)
	Save(ctx context.Context, id, relativePath string) (string, error)
	Close(ctx context.Context, id string) error
	List(ctx context.Context) ([]session.Info, error)
	Describe(ctx context.Context, id string) (*session.Description, error)

	Events(ctx context.Context, id string, trackIndex int, sel query.Selector, page query.Page) (query.Result, error)
	Diff(ctx context.Context, idA, idB string, startTick, endTick *int64) (query.DiffSummary, error)
	ConvertTime(ctx context.Context, id string, req session.ConvertRequest) (session.ConvertResult, error)

	AddTrack(ctx context.Context, id, name string, channel, program *uint8) (int, error)
	AddNotes(ctx context.Context, id string, trackIndex int, notes []midi.Note) (int, error)
	AddControlChanges(ctx context.Context, id string, trackIndex, controller int, changes []midi.ControlChange) (int, error)
	AddPitchBends(ctx context.Context, id string, trackIndex int, bends []midi.PitchBend) (int, error)
	SetTempo(ctx context.Context, id string, tick int64, bpm float64) error
	SetTimeSignature(ctx context.Context, id string, tick int64, numerator, denominator int) error

	Quantize(ctx context.Context, id string, trackIndex int, sel query.Selector, gridTicks int64, grid string, strength, swing float64) (int, error)
	Humanize(ctx context.Context, id string, trackIndex int, sel query.Selector, timingMs, velocityAmount float64) (int, error)
	Transpose(ctx context.Context, id string, trackIndex, semitones int, sel query.Selector) (int, error)
	ConstrainToScale(ctx context.Context, id string, trackIndex int, sel query.Selector, key, scale string, strategy transform.Strategy) (int, error)
	FixOverlaps(ctx context.Context, id string, trackIndex int, sel query.Selector, mode transform.OverlapMode) (int, error)
	Legato(ctx context.Context, id string, trackIndex int, sel query.Selector, gapTicks int64) (int, error)
	TrimNotes(ctx context.Context, id string, trackIndex int, sel query.Selector, minDuration int64) (int, error)

	Backup(ctx context.Context, id string) (*session.Backup, error)
	Restore(ctx context.Context, backupID string) (*session.Session, error)
	Revert(ctx context.Context, id string) error
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Sessions SessionService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "fermata",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
