package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jpender/fermata/internal/repository"
)

// Service handles project registration and path resolution.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	ID       string
	Name     string
	RootPath string
}

// Create registers a project root. The root must be an absolute path.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !filepath.IsAbs(req.RootPath) {
		return nil, fmt.Errorf("%w: root_path must be absolute", ErrInvalidInput)
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	proj := &Project{
		ID:        id,
		Name:      req.Name,
		RootPath:  filepath.Clean(req.RootPath),
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("project registered", "id", proj.ID, "root", proj.RootPath)
	}
	return proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns all registered projects.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}

// ResolvePath resolves a relative path against the project root and rejects
// any path that normalizes outside it.
func (s *Service) ResolvePath(ctx context.Context, projectID, relativePath string) (string, error) {
	proj, err := s.Get(ctx, projectID)
	if err != nil {
		return "", err
	}

	resolved := filepath.Clean(filepath.Join(proj.RootPath, relativePath))
	root := filepath.Clean(proj.RootPath)
	if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideProject, relativePath)
	}
	return resolved, nil
}
