package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/demowall/backend/internal/apperrors"
	"github.com/demowall/backend/internal/auth/service"
	"github.com/demowall/backend/internal/catalog"
	"github.com/demowall/backend/internal/models"
	"go.uber.org/zap"
)

// ProjectRepository is the interface that wraps methods for Project table data access
type ProjectRepository interface {
	// List executes the catalog filter and returns matching projects,
	// owner username joined in, most recent first.
	List(ctx context.Context, filter catalog.Filter) ([]models.Project, error)
	// Get retrieves a project by ID, apperrors.ErrNotFound when absent.
	Get(ctx context.Context, id int) (*models.Project, error)
	// Create inserts a new project and sets its assigned ID.
	Create(ctx context.Context, project *models.Project) error
	// Update applies only the fields the update carries and refreshes updated_at.
	Update(ctx context.Context, id int, update models.ProjectUpdate) error
	// Delete removes a project permanently, apperrors.ErrNotFound when absent.
	Delete(ctx context.Context, id int) error
}

// ImageStore is the interface that wraps image upload storage
type ImageStore interface {
	// Save stores an uploaded image and returns its public URL path.
	// Disallowed extensions fail with apperrors.ErrValidation.
	Save(reader io.Reader, originalFilename string) (string, error)
}

// projectService orchestrates the publishing workflow: catalog queries,
// ownership-checked mutations and image handling
type projectService struct {
	projectRepo ProjectRepository
	images      ImageStore
	logger      *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(projectRepo ProjectRepository, images ImageStore, logger *zap.Logger) *projectService {
	return &projectService{
		projectRepo: projectRepo,
		images:      images,
		logger:      logger,
	}
}

// List runs a catalog query. Callers without the admin role are pinned to the
// published catalog regardless of the requested status, so drafts never leak.
func (s *projectService) List(ctx context.Context, filter catalog.Filter, actor *service.Identity) ([]models.Project, error) {
	if actor == nil || !actor.IsAdmin() {
		filter.Status = models.ProjectStatusPublished
	}
	return s.projectRepo.List(ctx, filter)
}

// Get retrieves a single project. Drafts are visible only to their owner and
// to admins; everyone else sees not-found.
func (s *projectService) Get(ctx context.Context, id int, actor *service.Identity) (*models.Project, error) {
	project, err := s.projectRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if project.Status != models.ProjectStatusPublished && !canMutate(project, actor) {
		return nil, fmt.Errorf("project %w", apperrors.ErrNotFound)
	}

	return project, nil
}

// Create stores the optional image first and inserts the project. Title is
// required; year defaults to the current year when absent or unparseable;
// status defaults to draft.
func (s *projectService) Create(ctx context.Context, actor *service.Identity, input models.ProjectInput, imageFile io.Reader, imageFilename string) (*models.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}

	status, err := parseStatus(input.Status, models.ProjectStatusDraft)
	if err != nil {
		return nil, err
	}

	year, err := strconv.Atoi(strings.TrimSpace(input.Year))
	if err != nil || year == 0 {
		year = time.Now().Year()
	}

	var imagePath string
	if imageFile != nil {
		imagePath, err = s.images.Save(imageFile, imageFilename)
		if err != nil {
			return nil, err
		}
	}

	project := &models.Project{
		UserID:      actor.ID,
		Title:       title,
		Description: input.Description,
		Category:    input.Category,
		Tools:       input.Tools,
		Year:        year,
		Image:       imagePath,
		Status:      status,
		Username:    actor.Username,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// Update applies a partial update after the ownership check. A new image
// replaces the stored reference; no image leaves it untouched. An update
// carrying no fields at all is a no-op and never reaches storage.
func (s *projectService) Update(ctx context.Context, id int, actor *service.Identity, update models.ProjectUpdate, imageFile io.Reader, imageFilename string) error {
	project, err := s.projectRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !canMutate(project, actor) {
		return apperrors.ErrForbidden
	}

	if update.Status != nil && !update.Status.Valid() {
		return fmt.Errorf("%w: status must be draft or published", apperrors.ErrValidation)
	}

	if imageFile != nil {
		imagePath, err := s.images.Save(imageFile, imageFilename)
		if err != nil {
			return err
		}
		update.Image = &imagePath
	}

	if update.Empty() {
		return nil
	}

	return s.projectRepo.Update(ctx, id, update)
}

// Delete removes a project permanently after the ownership check
func (s *projectService) Delete(ctx context.Context, id int, actor *service.Identity) error {
	project, err := s.projectRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !canMutate(project, actor) {
		return apperrors.ErrForbidden
	}

	return s.projectRepo.Delete(ctx, id)
}

// canMutate reports whether the actor owns the project or is an admin
func canMutate(project *models.Project, actor *service.Identity) bool {
	if actor == nil {
		return false
	}
	return project.UserID == actor.ID || actor.IsAdmin()
}

// parseStatus parses a raw status form value, falling back to the default when
// empty and rejecting unknown values
func parseStatus(raw string, fallback models.ProjectStatus) (models.ProjectStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	status := models.ProjectStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("%w: status must be draft or published", apperrors.ErrValidation)
	}
	return status, nil
}
