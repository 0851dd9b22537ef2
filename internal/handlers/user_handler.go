package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/demowall/backend/internal/auth/middleware"
	"github.com/demowall/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps the authentication business logic
type AuthService interface {
	// Register creates a new user account with the default role.
	// Missing fields fail with apperrors.ErrValidation; duplicate username or
	// email fails with apperrors.ErrConflict.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	// Login verifies credentials and returns a signed token and the user.
	// Bad credentials fail with apperrors.ErrInvalidCredentials, banned
	// accounts with apperrors.ErrBanned.
	Login(ctx context.Context, req *models.LoginRequest) (string, *models.User, error)
	// Profile retrieves the caller's own user record.
	Profile(ctx context.Context, userID int) (*models.User, error)
}

// UserHandler handles registration, login and profile HTTP requests
type UserHandler struct {
	BaseHandler
	authService AuthService
	authMw      func(http.Handler) http.Handler
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService AuthService, logger *zap.Logger, authMw func(http.Handler) http.Handler) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
		authMw:      authMw,
	}
}

// RegisterRoutes registers all user handler routes
// Note: this assumes the router is already scoped to /api
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/user", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(h.authMw).Get("/profile", h.Profile)
	})
}

// Register handles POST /user/register
// @Summary Register a new user
// @Description Create a user account with username, email and password
// @Tags user
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} map[string]any "User registered successfully"
// @Failure 400 {object} map[string]string "Missing fields or duplicate username/email"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /user/register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": "user registered successfully",
		"userId":  user.ID,
	})
}

// Login handles POST /user/login
// @Summary Login user
// @Description Authenticate with username and password, returns a bearer token and the user
// @Tags user
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 403 {object} map[string]string "Account banned"
// @Router /user/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.LoginResponse{Token: token, User: *user})
}

// Profile handles GET /user/profile
// @Summary Get own profile
// @Description Return the authenticated user's profile without credentials
// @Tags user
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "User not found"
// @Router /user/profile [get]
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := authmw.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.authService.Profile(r.Context(), identity.ID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}
