package services

import (
	"context"
	"fmt"

	"github.com/demowall/backend/internal/apperrors"
	"github.com/demowall/backend/internal/catalog"
	"github.com/demowall/backend/internal/models"
	"go.uber.org/zap"
)

// AdminUserRepository is the interface that wraps the user data access used by
// the admin console
type AdminUserRepository interface {
	// List retrieves all users, most recently created first.
	List(ctx context.Context) ([]models.User, error)
	// UpdateStatus sets a user's status, apperrors.ErrNotFound when absent.
	UpdateStatus(ctx context.Context, userID int, status models.UserStatus) error
	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
}

// AdminProjectRepository is the interface that wraps the project data access
// used by the admin console
type AdminProjectRepository interface {
	// List executes the catalog filter over all projects.
	List(ctx context.Context, filter catalog.Filter) ([]models.Project, error)
	// Count returns the total number of projects.
	Count(ctx context.Context) (int, error)
	// CountByStatus returns the number of projects in the given status.
	CountByStatus(ctx context.Context, status models.ProjectStatus) (int, error)
}

// adminService implements the admin console operations
type adminService struct {
	userRepo    AdminUserRepository
	projectRepo AdminProjectRepository
	logger      *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo AdminUserRepository, projectRepo AdminProjectRepository, logger *zap.Logger) *adminService {
	return &adminService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// ListUsers retrieves all users, most recently created first. Password hashes
// never serialize (json:"-").
func (s *adminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// SetUserStatus bans or unbans a user
func (s *adminService) SetUserStatus(ctx context.Context, userID int, status models.UserStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status must be active or banned", apperrors.ErrValidation)
	}
	return s.userRepo.UpdateStatus(ctx, userID, status)
}

// ListAllProjects retrieves every project regardless of status, owner username
// joined in
func (s *adminService) ListAllProjects(ctx context.Context) ([]models.Project, error) {
	return s.projectRepo.List(ctx, catalog.Filter{})
}

// GetStats gathers the dashboard counters.
//
// The three counts are independent, so there is no need for them to wait on
// each other; they run in parallel and are combined once all complete.
func (s *adminService) GetStats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}
	errorChan := make(chan error, 3)

	go func() {
		count, err := s.userRepo.Count(ctx)
		stats.TotalUsers = count
		errorChan <- err
	}()

	go func() {
		count, err := s.projectRepo.Count(ctx)
		stats.TotalProjects = count
		errorChan <- err
	}()

	go func() {
		count, err := s.projectRepo.CountByStatus(ctx, models.ProjectStatusPublished)
		stats.PublishedProjects = count
		errorChan <- err
	}()

	for range 3 {
		if err := <-errorChan; err != nil {
			return nil, fmt.Errorf("failed to gather stats: %w", err)
		}
	}

	return stats, nil
}
