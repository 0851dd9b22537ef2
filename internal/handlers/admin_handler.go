package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/demowall/backend/internal/models"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps the admin console business logic
type AdminService interface {
	// ListUsers retrieves all users, most recently created first.
	ListUsers(ctx context.Context) ([]models.User, error)
	// SetUserStatus bans or unbans a user; unknown statuses fail with
	// apperrors.ErrValidation.
	SetUserStatus(ctx context.Context, userID int, status models.UserStatus) error
	// ListAllProjects retrieves every project regardless of status.
	ListAllProjects(ctx context.Context) ([]models.Project, error)
	// GetStats gathers the dashboard counters.
	GetStats(ctx context.Context) (*models.Stats, error)
}

// AdminHandler handles admin console HTTP requests
type AdminHandler struct {
	BaseHandler
	adminService AdminService
	adminMw      func(http.Handler) http.Handler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService, logger *zap.Logger, adminMw func(http.Handler) http.Handler) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		adminService: adminService,
		adminMw:      adminMw,
	}
}

// RegisterRoutes registers all admin handler routes behind the admin guard
// Note: this assumes the router is already scoped to /api
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.adminMw)
		r.Get("/users", h.ListUsers)
		r.Put("/users/{id}/status", h.SetUserStatus)
		r.Get("/projects", h.ListProjects)
		r.Get("/stats", h.Stats)
	})
}

// ListUsers handles GET /admin/users
// @Summary List all users
// @Description Return all registered users for the admin console
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.User
// @Failure 403 {object} map[string]string "Admin role required"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// SetUserStatus handles PUT /admin/users/{id}/status
// @Summary Ban or unban a user
// @Description Set a user's status to active or banned
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Param request body handlers.setUserStatusRequest true "New status"
// @Success 200 {object} map[string]string "Status updated"
// @Failure 400 {object} map[string]string "Unknown status"
// @Failure 404 {object} map[string]string "User not found"
// @Router /admin/users/{id}/status [put]
func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req setUserStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.adminService.SetUserStatus(r.Context(), id, req.Status); err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "user status updated successfully"})
}

// ListProjects handles GET /admin/projects
// @Summary List all projects
// @Description Return every project, drafts included, for the admin console
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Project
// @Failure 403 {object} map[string]string "Admin role required"
// @Router /admin/projects [get]
func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.adminService.ListAllProjects(r.Context())
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, projects)
}

// Stats handles GET /admin/stats
// @Summary Get dashboard counters
// @Description Return total users, total projects and published project counts
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Stats
// @Failure 403 {object} map[string]string "Admin role required"
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.GetStats(r.Context())
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, stats)
}

// setUserStatusRequest is the body of PUT /admin/users/{id}/status
type setUserStatusRequest struct {
	Status models.UserStatus `json:"status" example:"banned"`
}
