// Package memstore holds the in-memory session and backup registries.
// Sessions live only for the life of the process; backups are immutable
// snapshots kept alongside them.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/jpender/fermata/internal/domain/session"
	"github.com/jpender/fermata/internal/repository"
)

// SessionStore implements session.Store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewSessionStore creates an empty session registry.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*session.Session{}}
}

// Put registers or replaces a session by id.
func (s *SessionStore) Put(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

// Get returns the session or repository.ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return sess, nil
}

// Delete removes the session or returns repository.ErrNotFound.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// List returns all sessions ordered by creation time.
func (s *SessionStore) List(ctx context.Context) ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// BackupStore implements session.BackupStore.
type BackupStore struct {
	mu      sync.RWMutex
	backups map[string]*session.Backup
}

// NewBackupStore creates an empty backup registry.
func NewBackupStore() *BackupStore {
	return &BackupStore{backups: map[string]*session.Backup{}}
}

// Put stores a backup by id.
func (s *BackupStore) Put(ctx context.Context, b *session.Backup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backups[b.ID] = b
	return nil
}

// Get returns the backup or repository.ErrNotFound.
func (s *BackupStore) Get(ctx context.Context, id string) (*session.Backup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.backups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}
