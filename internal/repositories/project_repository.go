package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/demowall/backend/internal/apperrors"
	"github.com/demowall/backend/internal/catalog"
	"github.com/demowall/backend/internal/models"
	"go.uber.org/zap"
)

// projectColumns is the select list shared by every project query
const projectColumns = `
	p.id, p.user_id, p.title, p.description, p.category, p.tools,
	p.year, p.image, p.status, p.created_at, p.updated_at, u.username
`

// projectRepository implements the project data access methods on MySQL
type projectRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB, logger *zap.Logger) *projectRepository {
	return &projectRepository{
		db:     db,
		logger: logger,
	}
}

// List executes the catalog filter and returns matching projects with the
// owner username joined in. Structured criteria run as SQL; rows are then
// re-checked in memory through the full filter, which also applies the
// free-text search term the SQL predicate excludes.
func (r *projectRepository) List(ctx context.Context, filter catalog.Filter) ([]models.Project, error) {
	query := `SELECT` + projectColumns + `FROM projects p JOIN users u ON p.user_id = u.id`

	predicate, args := filter.Predicate()
	if predicate != "" {
		query += " WHERE " + predicate
	}
	query += " " + catalog.OrderBy

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list projects", zap.Error(err))
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		if !filter.Match(project) {
			continue
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	catalog.Sort(projects)
	return projects, nil
}

// Get retrieves a single project with the owner username joined in
func (r *projectRepository) Get(ctx context.Context, id int) (*models.Project, error) {
	query := `SELECT` + projectColumns + `FROM projects p JOIN users u ON p.user_id = u.id WHERE p.id = ?`

	project, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %w", apperrors.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get project", zap.Error(err), zap.Int("projectId", id))
		return nil, err
	}

	return project, nil
}

// Create inserts a new project and sets its assigned ID
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (user_id, title, description, category, tools, year, image, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		project.UserID,
		project.Title,
		project.Description,
		project.Category,
		project.Tools,
		project.Year,
		project.Image,
		project.Status,
	)
	if err != nil {
		r.logger.Error("failed to create project", zap.Error(err))
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	project.ID = int(id)
	return nil
}

// Update applies only the fields the update carries and refreshes updated_at.
// Existence and ownership are the caller's concern.
func (r *projectRepository) Update(ctx context.Context, id int, update models.ProjectUpdate) error {
	var sets []string
	var args []any

	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *update.Category)
	}
	if update.Tools != nil {
		sets = append(sets, "tools = ?")
		args = append(args, *update.Tools)
	}
	if update.Year != nil {
		sets = append(sets, "year = ?")
		args = append(args, *update.Year)
	}
	if update.Image != nil {
		sets = append(sets, "image = ?")
		args = append(args, *update.Image)
	}
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *update.Status)
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE projects SET %s WHERE id = ?", strings.Join(sets, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update project", zap.Error(err), zap.Int("projectId", id))
		return fmt.Errorf("failed to update project: %w", err)
	}

	return nil
}

// Delete removes a project permanently
func (r *projectRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete project", zap.Error(err), zap.Int("projectId", id))
		return fmt.Errorf("failed to delete project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("project %w", apperrors.ErrNotFound)
	}

	return nil
}

// Count returns the total number of projects
func (r *projectRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count); err != nil {
		r.logger.Error("failed to count projects", zap.Error(err))
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of projects in the given status
func (r *projectRepository) CountByStatus(ctx context.Context, status models.ProjectStatus) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE status = ?`, status).Scan(&count); err != nil {
		r.logger.Error("failed to count projects by status", zap.Error(err), zap.String("status", string(status)))
		return 0, fmt.Errorf("failed to count projects by status: %w", err)
	}
	return count, nil
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProject scans one joined project row, unwrapping nullable columns
func scanProject(row rowScanner) (*models.Project, error) {
	var project models.Project
	var description, category, tools, image sql.NullString
	var year sql.NullInt64

	err := row.Scan(
		&project.ID,
		&project.UserID,
		&project.Title,
		&description,
		&category,
		&tools,
		&year,
		&image,
		&project.Status,
		&project.CreatedAt,
		&project.UpdatedAt,
		&project.Username,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	project.Description = description.String
	project.Category = category.String
	project.Tools = tools.String
	project.Year = int(year.Int64)
	project.Image = image.String

	return &project, nil
}
