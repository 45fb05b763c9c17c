package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpender/fermata/internal/midi"
	"github.com/jpender/fermata/internal/repository"
)

// Service owns the session and backup registries and the sequence lifecycle:
// open, create, save, close, backup, restore, revert.
type Service struct {
	sessions Store
	backups  BackupStore
	projects ProjectResolver
	files    FileStore
	logger   *slog.Logger
}

// NewService creates a new session service.
func NewService(sessions Store, backups BackupStore, projects ProjectResolver, files FileStore, logger *slog.Logger) *Service {
	return &Service{
		sessions: sessions,
		backups:  backups,
		projects: projects,
		files:    files,
		logger:   logger,
	}
}

// Open reads a MIDI file under the project root and registers a session
// owning the decoded sequence.
func (s *Service) Open(ctx context.Context, projectID, relativePath string) (*Session, error) {
	abs, err := s.projects.ResolvePath(ctx, projectID, relativePath)
	if err != nil {
		return nil, err
	}
	raw, err := s.files.ReadBytes(abs)
	if err != nil {
		return nil, fmt.Errorf("opening midi file: %w", err)
	}
	seq, err := midi.Decode(raw)
	if err != nil {
		return nil, err
	}

	sess := s.register(ctx, projectID, &relativePath, seq, false)
	if s.logger != nil {
		s.logger.Info("session opened", "session_id", sess.ID, "project_id", projectID, "path", relativePath)
	}
	return sess, nil
}

// Create builds a new sequence from a composition description. The session
// starts dirty: it holds content that exists nowhere on disk.
func (s *Service) Create(ctx context.Context, projectID string, comp midi.CompositionRequest) (*Session, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	seq, err := midi.Compose(comp)
	if err != nil {
		return nil, err
	}

	sess := s.register(ctx, projectID, nil, seq, true)
	if s.logger != nil {
		s.logger.Info("session created", "session_id", sess.ID, "project_id", projectID)
	}
	return sess, nil
}

func (s *Service) register(ctx context.Context, projectID string, path *string, seq *midi.Sequence, dirty bool) *Session {
	now := time.Now()
	sess := &Session{
		ID:           newID("ses"),
		ProjectID:    projectID,
		FilePath:     path,
		Seq:          seq,
		Dirty:        dirty,
		CreatedAt:    now,
		LastActivity: now,
	}
	// Put on the in-memory store cannot fail with a fresh id.
	_ = s.sessions.Put(ctx, sess)
	return sess
}

// Get fetches a session by id.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, err
	}
	return sess, nil
}

// List summarizes all open sessions.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, s.info(sess))
	}
	return infos, nil
}

func (s *Service) info(sess *Session) Info {
	return Info{
		ID:           sess.ID,
		ProjectID:    sess.ProjectID,
		FilePath:     sess.FilePath,
		Dirty:        sess.Dirty,
		PPQ:          sess.Seq.PPQ,
		TrackCount:   len(sess.Seq.Tracks),
		NoteCount:    sess.Seq.NoteCount(),
		CreatedAt:    sess.CreatedAt,
		LastActivity: sess.LastActivity,
	}
}

// Describe returns the full header view of a session.
func (s *Service) Describe(ctx context.Context, id string) (*Description, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()

	desc := &Description{
		Info:           s.info(sess),
		PPQ:            sess.Seq.PPQ,
		Tempos:         append([]midi.TempoChange(nil), sess.Seq.Tempos...),
		TimeSignatures: append([]midi.TimeSignature(nil), sess.Seq.Meters...),
		LastBackupID:   sess.LastBackupID,
	}
	for i, track := range sess.Seq.Tracks {
		ccCount := 0
		for _, ccs := range track.ControlChanges {
			ccCount += len(ccs)
		}
		desc.Tracks = append(desc.Tracks, TrackInfo{
			Index:          i,
			Name:           track.Name,
			Channel:        track.Channel,
			Program:        track.Program,
			NoteCount:      len(track.Notes),
			ControlCount:   ccCount,
			PitchBendCount: len(track.PitchBends),
		})
	}
	return desc, nil
}

// Save encodes the sequence and writes it under the project root. With no
// path argument the session's remembered path is used; having neither is a
// state error. A successful save clears the dirty flag.
func (s *Service) Save(ctx context.Context, id, relativePath string) (string, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	sess.Lock()
	defer sess.Unlock()

	path := relativePath
	if path == "" {
		if sess.FilePath == nil {
			return "", fmt.Errorf("%w: supply a path for the first save", ErrNoSavePath)
		}
		path = *sess.FilePath
	}

	abs, err := s.projects.ResolvePath(ctx, sess.ProjectID, path)
	if err != nil {
		return "", err
	}
	raw, err := midi.Encode(sess.Seq)
	if err != nil {
		return "", err
	}
	if err := s.files.WriteBytes(abs, raw); err != nil {
		return "", err
	}

	sess.FilePath = &path
	sess.Dirty = false
	sess.LastActivity = time.Now()
	if s.logger != nil {
		s.logger.Info("session saved", "session_id", sess.ID, "path", path, "bytes", len(raw))
	}
	return path, nil
}

// Close removes the session from the registry. Unsaved changes are lost.
func (s *Service) Close(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

// Backup snapshots the session's current serialized bytes into an immutable
// backup and records it as the session's last backup.
func (s *Service) Backup(ctx context.Context, id string) (*Backup, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()

	raw, err := midi.Encode(sess.Seq)
	if err != nil {
		return nil, err
	}

	backup := &Backup{
		ID:        newID("bak"),
		ProjectID: sess.ProjectID,
		FilePath:  sess.FilePath,
		Raw:       raw,
		CreatedAt: time.Now(),
	}
	if err := s.backups.Put(ctx, backup); err != nil {
		return nil, err
	}
	sess.LastBackupID = &backup.ID
	sess.LastActivity = backup.CreatedAt
	if s.logger != nil {
		s.logger.Info("backup taken", "session_id", sess.ID, "backup_id", backup.ID, "bytes", len(raw))
	}
	return backup, nil
}

// Restore decodes a backup into a brand-new session with its own identifier.
// Existing sessions are untouched.
func (s *Service) Restore(ctx context.Context, backupID string) (*Session, error) {
	backup, err := s.backups.Get(ctx, backupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, backupID)
		}
		return nil, err
	}
	seq, err := midi.Decode(backup.Raw)
	if err != nil {
		return nil, err
	}
	sess := s.register(ctx, backup.ProjectID, backup.FilePath, seq, true)
	if s.logger != nil {
		s.logger.Info("backup restored", "backup_id", backupID, "session_id", sess.ID)
	}
	return sess, nil
}

// Revert replaces the session's sequence with a fresh decode of its last
// backup and clears the dirty flag. It fails if no backup was ever taken.
func (s *Service) Revert(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()

	if sess.LastBackupID == nil {
		return fmt.Errorf("%w: %s", ErrNoBackup, id)
	}
	backup, err := s.backups.Get(ctx, *sess.LastBackupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrBackupNotFound, *sess.LastBackupID)
		}
		return err
	}
	seq, err := midi.Decode(backup.Raw)
	if err != nil {
		return err
	}
	sess.Seq = seq
	sess.Dirty = false
	sess.LastActivity = time.Now()
	if s.logger != nil {
		s.logger.Info("session reverted", "session_id", sess.ID, "backup_id", backup.ID)
	}
	return nil
}

// markDirty flags unsaved changes and restores the sequence invariants
// (non-empty sorted maps, positive durations). Deliberately called even when
// a transform matched zero events: running a transform marks the session
// dirty regardless of effect.
func (s *Service) markDirty(sess *Session) {
	sess.Seq.Normalize()
	sess.Dirty = true
	sess.LastActivity = time.Now()
}

func (s *Service) track(sess *Session, index int) (*midi.Track, error) {
	if index < 0 || index >= len(sess.Seq.Tracks) {
		return nil, fmt.Errorf("%w: index %d of %d tracks", ErrTrackNotFound, index, len(sess.Seq.Tracks))
	}
	return sess.Seq.Tracks[index], nil
}
