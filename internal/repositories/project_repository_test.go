package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/demowall/backend/internal/apperrors"
	"github.com/demowall/backend/internal/catalog"
	"github.com/demowall/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupProjectTestRepository creates a project repository with a mock database
func setupProjectTestRepository(t *testing.T) (*projectRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewProjectRepository(db, zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

var projectTestColumns = []string{
	"id", "user_id", "title", "description", "category", "tools",
	"year", "image", "status", "created_at", "updated_at", "username",
}

func projectRow(rows *sqlmock.Rows, p models.Project) *sqlmock.Rows {
	return rows.AddRow(p.ID, p.UserID, p.Title, p.Description, p.Category, p.Tools,
		p.Year, p.Image, p.Status, p.CreatedAt, p.UpdatedAt, p.Username)
}

func TestProjectRepository_List(t *testing.T) {
	now := time.Now()

	t.Run("filters flow into the query", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(projectTestColumns)
		projectRow(rows, models.Project{
			ID: 2, UserID: 1, Title: "Neon City", Category: "Web", Tools: "Figma, Sketch",
			Year: 2024, Status: models.ProjectStatusPublished, CreatedAt: now, UpdatedAt: now, Username: "alice",
		})

		mock.ExpectQuery(`SELECT .+ FROM projects p JOIN users u ON p.user_id = u.id WHERE p.status = \? AND p.category = \? AND p.tools LIKE \? AND p.year = \? ORDER BY p.created_at DESC, p.id ASC`).
			WithArgs(models.ProjectStatusPublished, "Web", "%Figma%", 2024).
			WillReturnRows(rows)

		projects, err := repo.List(context.Background(), catalog.Filter{
			Status:   models.ProjectStatusPublished,
			Category: "Web",
			Tool:     "Figma",
			Year:     2024,
		})

		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "Neon City", projects[0].Title)
		assert.Equal(t, "alice", projects[0].Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty filter has no WHERE clause", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT .+ FROM projects p JOIN users u ON p.user_id = u.id ORDER BY p.created_at DESC, p.id ASC`).
			WillReturnRows(sqlmock.NewRows(projectTestColumns))

		projects, err := repo.List(context.Background(), catalog.Filter{})

		require.NoError(t, err)
		assert.Empty(t, projects)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("search term filters rows in memory", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(projectTestColumns)
		projectRow(rows, models.Project{
			ID: 1, UserID: 1, Title: "Neon City", Status: models.ProjectStatusPublished,
			CreatedAt: now, UpdatedAt: now, Username: "alice",
		})
		projectRow(rows, models.Project{
			ID: 2, UserID: 1, Title: "Forest Walk", Status: models.ProjectStatusPublished,
			CreatedAt: now, UpdatedAt: now, Username: "alice",
		})

		mock.ExpectQuery(`SELECT .+ FROM projects p JOIN users u`).
			WithArgs(models.ProjectStatusPublished).
			WillReturnRows(rows)

		projects, err := repo.List(context.Background(), catalog.Filter{
			Status: models.ProjectStatusPublished,
			Search: "neon",
		})

		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "Neon City", projects[0].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("co-timestamped rows come back earliest-inserted first", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		older := now.Add(-time.Hour)
		rows := sqlmock.NewRows(projectTestColumns)
		projectRow(rows, models.Project{
			ID: 4, UserID: 1, Title: "Second Upload", Status: models.ProjectStatusPublished,
			CreatedAt: now, UpdatedAt: now, Username: "alice",
		})
		projectRow(rows, models.Project{
			ID: 2, UserID: 1, Title: "First Upload", Status: models.ProjectStatusPublished,
			CreatedAt: now, UpdatedAt: now, Username: "alice",
		})
		projectRow(rows, models.Project{
			ID: 1, UserID: 1, Title: "Old Piece", Status: models.ProjectStatusPublished,
			CreatedAt: older, UpdatedAt: older, Username: "alice",
		})

		mock.ExpectQuery(`SELECT .+ FROM projects p JOIN users u`).
			WillReturnRows(rows)

		projects, err := repo.List(context.Background(), catalog.Filter{})

		require.NoError(t, err)
		require.Len(t, projects, 3)
		assert.Equal(t, []int{2, 4, 1}, []int{projects[0].ID, projects[1].ID, projects[2].ID})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT .+ FROM projects p JOIN users u`).
			WillReturnError(errors.New("database error"))

		projects, err := repo.List(context.Background(), catalog.Filter{})

		assert.Error(t, err)
		assert.Nil(t, projects)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_Get(t *testing.T) {
	now := time.Now()

	t.Run("success with nullable columns", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(projectTestColumns).
			AddRow(7, 3, "Untitled", nil, nil, nil, nil, nil, "draft", now, now, "bob")

		mock.ExpectQuery(`SELECT .+ FROM projects p JOIN users u ON p.user_id = u.id WHERE p.id = \?`).
			WithArgs(7).
			WillReturnRows(rows)

		project, err := repo.Get(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, 7, project.ID)
		assert.Equal(t, "", project.Description)
		assert.Equal(t, "", project.Tools)
		assert.Equal(t, 0, project.Year)
		assert.Equal(t, models.ProjectStatusDraft, project.Status)
		assert.Equal(t, "bob", project.Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT .+ FROM projects p JOIN users u ON p.user_id = u.id WHERE p.id = \?`).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows(projectTestColumns))

		project, err := repo.Get(context.Background(), 99)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Nil(t, project)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_Create(t *testing.T) {
	repo, mock, cleanup := setupProjectTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO projects`).
		WithArgs(1, "Neon City", "desc", "Web", "Figma", 2024, "/uploads/x.png", models.ProjectStatusDraft).
		WillReturnResult(sqlmock.NewResult(11, 1))

	project := &models.Project{
		UserID:      1,
		Title:       "Neon City",
		Description: "desc",
		Category:    "Web",
		Tools:       "Figma",
		Year:        2024,
		Image:       "/uploads/x.png",
		Status:      models.ProjectStatusDraft,
	}

	err := repo.Create(context.Background(), project)

	require.NoError(t, err)
	assert.Equal(t, 11, project.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Update(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	t.Run("applies only supplied fields", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE projects SET title = \?, updated_at = CURRENT_TIMESTAMP WHERE id = \?`).
			WithArgs("New Title", 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), 5, models.ProjectUpdate{Title: strPtr("New Title")})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("explicit empty description is applied", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE projects SET description = \?, updated_at = CURRENT_TIMESTAMP WHERE id = \?`).
			WithArgs("", 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), 5, models.ProjectUpdate{Description: strPtr("")})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty update still refreshes updated_at", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE projects SET updated_at = CURRENT_TIMESTAMP WHERE id = \?`).
			WithArgs(5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), 5, models.ProjectUpdate{})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status change", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		published := models.ProjectStatusPublished
		mock.ExpectExec(`UPDATE projects SET status = \?, updated_at = CURRENT_TIMESTAMP WHERE id = \?`).
			WithArgs(published, 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), 5, models.ProjectUpdate{Status: &published})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM projects WHERE id = \?`).
			WithArgs(5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 5))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupProjectTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM projects WHERE id = \?`).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), 99), apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_Counts(t *testing.T) {
	repo, mock, cleanup := setupProjectTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects WHERE status = \?`).
		WithArgs(models.ProjectStatusPublished).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, total)

	published, err := repo.CountByStatus(context.Background(), models.ProjectStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, 3, published)

	assert.NoError(t, mock.ExpectationsWereMet())
}
