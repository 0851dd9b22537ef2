package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/demowall/backend/internal/auth/middleware"
	"github.com/demowall/backend/internal/auth/service"
	"github.com/demowall/backend/internal/catalog"
	"github.com/demowall/backend/internal/models"
	"go.uber.org/zap"
)

// maxUploadBytes caps a single project submission, image included
const maxUploadBytes = 5 << 20

// ProjectService is the interface that wraps the project business logic
type ProjectService interface {
	// List runs a catalog query; non-admin callers only see published projects.
	List(ctx context.Context, filter catalog.Filter, actor *service.Identity) ([]models.Project, error)
	// Get retrieves a project; drafts are not-found for anyone but the owner
	// and admins.
	Get(ctx context.Context, id int, actor *service.Identity) (*models.Project, error)
	// Create inserts a new project owned by the actor, storing the optional
	// image first.
	Create(ctx context.Context, actor *service.Identity, input models.ProjectInput, imageFile io.Reader, imageFilename string) (*models.Project, error)
	// Update applies a partial update; only the owner and admins may mutate.
	Update(ctx context.Context, id int, actor *service.Identity, update models.ProjectUpdate, imageFile io.Reader, imageFilename string) error
	// Delete removes a project; only the owner and admins may delete.
	Delete(ctx context.Context, id int, actor *service.Identity) error
}

// ProjectHandler handles project catalog and publishing HTTP requests
type ProjectHandler struct {
	BaseHandler
	projectService ProjectService
	authMw         func(http.Handler) http.Handler
	optionalAuthMw func(http.Handler) http.Handler
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService ProjectService, logger *zap.Logger, authMw, optionalAuthMw func(http.Handler) http.Handler) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		projectService: projectService,
		authMw:         authMw,
		optionalAuthMw: optionalAuthMw,
	}
}

// RegisterRoutes registers all project handler routes
// Note: this assumes the router is already scoped to /api
func (h *ProjectHandler) RegisterRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.With(h.optionalAuthMw).Get("/", h.List)
		r.With(h.optionalAuthMw).Get("/{id}", h.Get)
		r.With(h.authMw).Post("/", h.Create)
		r.With(h.authMw).Put("/{id}", h.Update)
		r.With(h.authMw).Delete("/{id}", h.Delete)
	})
}

// List handles GET /projects
// @Summary List projects
// @Description Browse the catalog with optional filters; anonymous callers see published projects only
// @Tags projects
// @Produce json
// @Param category query string false "Exact category match"
// @Param tool query string false "Substring match against the tools list"
// @Param year query int false "Exact year match"
// @Param search query string false "Case-insensitive search over title, description, tools and category"
// @Param status query string false "Project status (admin only)" Enums(draft, published)
// @Success 200 {array} models.Project
// @Failure 400 {object} map[string]string "Malformed year or status"
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor, _ := authmw.GetIdentity(r.Context())

	projects, err := h.projectService.List(r.Context(), filter, actor)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, projects)
}

// Get handles GET /projects/{id}
// @Summary Get a project
// @Description Retrieve a single project; drafts are visible only to their owner and admins
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 400 {object} map[string]string "Invalid ID"
// @Failure 404 {object} map[string]string "Project not found"
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	actor, _ := authmw.GetIdentity(r.Context())

	project, err := h.projectService.Get(r.Context(), id, actor)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, project)
}

// Create handles POST /projects
// @Summary Create a project
// @Description Publish a new project from a multipart form with an optional image upload
// @Tags projects
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param title formData string true "Project title"
// @Param description formData string false "Project description"
// @Param category formData string false "Project category"
// @Param tools formData string false "Comma-separated tools"
// @Param year formData int false "Project year, defaults to the current year"
// @Param status formData string false "draft or published, defaults to draft"
// @Param image formData file false "Project image (jpeg, jpg, png, gif, webp; max 5MB)"
// @Success 201 {object} models.Project
// @Failure 400 {object} map[string]string "Missing title or invalid upload"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := authmw.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := models.ProjectInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Tools:       r.FormValue("tools"),
		Year:        r.FormValue("year"),
		Status:      r.FormValue("status"),
	}

	imageFile, imageFilename, err := formImage(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid image upload")
		return
	}
	if imageFile != nil {
		defer imageFile.Close()
	}

	project, err := h.projectService.Create(r.Context(), actor, input, readerOrNil(imageFile), imageFilename)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, project)
}

// Update handles PUT /projects/{id}
// @Summary Update a project
// @Description Apply a partial update from a multipart form; only fields present in the form change
// @Tags projects
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Project ID"
// @Param title formData string false "New title, ignored when empty"
// @Param description formData string false "New description, an empty value clears it"
// @Param category formData string false "New category"
// @Param tools formData string false "New comma-separated tools"
// @Param year formData int false "New year"
// @Param status formData string false "draft or published"
// @Param image formData file false "Replacement image"
// @Success 200 {object} map[string]string "Project updated"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Project not found"
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := authmw.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	update := parseProjectUpdate(r)

	imageFile, imageFilename, err := formImage(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid image upload")
		return
	}
	if imageFile != nil {
		defer imageFile.Close()
	}

	if err := h.projectService.Update(r.Context(), id, actor, update, readerOrNil(imageFile), imageFilename); err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "project updated successfully"})
}

// Delete handles DELETE /projects/{id}
// @Summary Delete a project
// @Description Remove a project permanently; only the owner and admins may delete
// @Tags projects
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Project ID"
// @Success 200 {object} map[string]string "Project deleted"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Project not found"
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := authmw.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	if err := h.projectService.Delete(r.Context(), id, actor); err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "project deleted successfully"})
}

// parseFilter builds a catalog filter from the request query string
func parseFilter(r *http.Request) (catalog.Filter, error) {
	filter := catalog.Filter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Tool:     strings.TrimSpace(r.URL.Query().Get("tool")),
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return catalog.Filter{}, errors.New("year must be a number")
		}
		filter.Year = year
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := models.ProjectStatus(raw)
		if !status.Valid() {
			return catalog.Filter{}, errors.New("status must be draft or published")
		}
		filter.Status = status
	}

	return filter, nil
}

// parseProjectUpdate builds a partial update from the parsed multipart form.
// Title changes only when non-empty; description changes whenever the field is
// present, so a published description can be cleared; the rest change when
// non-empty.
func parseProjectUpdate(r *http.Request) models.ProjectUpdate {
	var update models.ProjectUpdate

	if title := r.FormValue("title"); title != "" {
		update.Title = &title
	}
	if values, ok := r.MultipartForm.Value["description"]; ok && len(values) > 0 {
		update.Description = &values[0]
	}
	if category := r.FormValue("category"); category != "" {
		update.Category = &category
	}
	if tools := r.FormValue("tools"); tools != "" {
		update.Tools = &tools
	}
	if raw := r.FormValue("year"); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil {
			update.Year = &year
		}
	}
	if raw := r.FormValue("status"); raw != "" {
		status := models.ProjectStatus(raw)
		update.Status = &status
	}

	return update
}

// formImage extracts the optional image upload from the parsed form
func formImage(r *http.Request) (multipart.File, string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return file, header.Filename, nil
}

// readerOrNil converts a possibly-nil multipart file into the io.Reader the
// service expects; a typed nil inside a non-nil interface would defeat its
// nil check
func readerOrNil(file multipart.File) io.Reader {
	if file == nil {
		return nil
	}
	return file
}
