package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/jpender/fermata/internal/domain/project"
	"github.com/jpender/fermata/internal/repository"
	"github.com/jpender/fermata/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())
	return db
}

func TestProjectRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProjectRepository(newTestDB(t))

	proj := &project.Project{
		ID:        "p1",
		Name:      "demo",
		RootPath:  "/music/demo",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Create(ctx, proj))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, proj.ID, got.ID)
	require.Equal(t, proj.Name, got.Name)
	require.Equal(t, proj.RootPath, got.RootPath)
}

func TestProjectRepository_GetMissing(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProjectRepository(newTestDB(t))

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_ListOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProjectRepository(newTestDB(t))

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Create(ctx, &project.Project{ID: "b", Name: "second", RootPath: "/b", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &project.Project{ID: "a", Name: "first", RootPath: "/a", CreatedAt: base}))

	projects, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.Equal(t, "a", projects[0].ID)
	require.Equal(t, "b", projects[1].ID)
}

func TestProjectRepository_DuplicateIDFails(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProjectRepository(newTestDB(t))

	proj := &project.Project{ID: "p1", Name: "demo", RootPath: "/music", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, proj))
	require.Error(t, repo.Create(ctx, proj))
}
