package session

import (
	"context"

	"github.com/jpender/fermata/internal/domain/project"
)

// Store manages the live session registry.
type Store interface {
	Put(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Session, error)
}

// BackupStore manages immutable sequence snapshots.
type BackupStore interface {
	Put(ctx context.Context, b *Backup) error
	Get(ctx context.Context, id string) (*Backup, error)
}

// ProjectResolver provides project lookup and sandboxed path resolution.
type ProjectResolver interface {
	Get(ctx context.Context, id string) (*project.Project, error)
	ResolvePath(ctx context.Context, projectID, relativePath string) (string, error)
}

// FileStore provides scoped file access under resolved absolute paths.
type FileStore interface {
	ReadBytes(path string) ([]byte, error)
	WriteBytes(path string, data []byte) error
}
