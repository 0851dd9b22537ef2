package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/demowall/backend/internal/apperrors"
	authmw "github.com/demowall/backend/internal/auth/middleware"
	"github.com/demowall/backend/internal/auth/service"
	"github.com/demowall/backend/internal/models"
)

type mockAdminService struct {
	listUsersFn     func(ctx context.Context) ([]models.User, error)
	setUserStatusFn func(ctx context.Context, userID int, status models.UserStatus) error
	listProjectsFn  func(ctx context.Context) ([]models.Project, error)
	getStatsFn      func(ctx context.Context) (*models.Stats, error)
}

func (m *mockAdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return m.listUsersFn(ctx)
}

func (m *mockAdminService) SetUserStatus(ctx context.Context, userID int, status models.UserStatus) error {
	return m.setUserStatusFn(ctx, userID, status)
}

func (m *mockAdminService) ListAllProjects(ctx context.Context) ([]models.Project, error) {
	return m.listProjectsFn(ctx)
}

func (m *mockAdminService) GetStats(ctx context.Context) (*models.Stats, error) {
	return m.getStatsFn(ctx)
}

func newAdminRouter(svc AdminService, tg *service.TokenGenerator) chi.Router {
	r := chi.NewRouter()
	handler := NewAdminHandler(svc, zap.NewNop(), authmw.RequireAdmin(tg))
	handler.RegisterRoutes(r)
	return r
}

func TestAdminHandler_ListUsers(t *testing.T) {
	tg := newTestTokenGenerator()
	admin := models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}

	svc := &mockAdminService{
		listUsersFn: func(ctx context.Context) ([]models.User, error) {
			return []models.User{
				{ID: 2, Username: "mika", Status: models.UserStatusActive},
				{ID: 1, Username: "admin", Status: models.UserStatusActive},
			}, nil
		},
	}
	router := newAdminRouter(svc, tg)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", bearerToken(t, tg, &admin))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var users []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAdminHandler_NonAdminForbidden(t *testing.T) {
	tg := newTestTokenGenerator()
	user := models.User{ID: 2, Username: "mika", Role: models.RoleUser}

	svc := &mockAdminService{}
	router := newAdminRouter(svc, tg)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", bearerToken(t, tg, &user))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminHandler_AnonymousUnauthorized(t *testing.T) {
	svc := &mockAdminService{}
	router := newAdminRouter(svc, newTestTokenGenerator())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminHandler_SetUserStatus(t *testing.T) {
	tg := newTestTokenGenerator()
	admin := models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}

	svc := &mockAdminService{
		setUserStatusFn: func(ctx context.Context, userID int, status models.UserStatus) error {
			assert.Equal(t, 2, userID)
			assert.Equal(t, models.UserStatusBanned, status)
			return nil
		},
	}
	router := newAdminRouter(svc, tg)

	body, _ := json.Marshal(map[string]string{"status": "banned"})
	req := httptest.NewRequest(http.MethodPut, "/admin/users/2/status", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, tg, &admin))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminHandler_SetUserStatus_UnknownStatus(t *testing.T) {
	tg := newTestTokenGenerator()
	admin := models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}

	svc := &mockAdminService{
		setUserStatusFn: func(ctx context.Context, userID int, status models.UserStatus) error {
			return fmt.Errorf("%w: status must be active or banned", apperrors.ErrValidation)
		},
	}
	router := newAdminRouter(svc, tg)

	body, _ := json.Marshal(map[string]string{"status": "suspended"})
	req := httptest.NewRequest(http.MethodPut, "/admin/users/2/status", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, tg, &admin))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_SetUserStatus_UserNotFound(t *testing.T) {
	tg := newTestTokenGenerator()
	admin := models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}

	svc := &mockAdminService{
		setUserStatusFn: func(ctx context.Context, userID int, status models.UserStatus) error {
			return apperrors.ErrNotFound
		},
	}
	router := newAdminRouter(svc, tg)

	body, _ := json.Marshal(map[string]string{"status": "banned"})
	req := httptest.NewRequest(http.MethodPut, "/admin/users/99/status", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, tg, &admin))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminHandler_ListProjects(t *testing.T) {
	tg := newTestTokenGenerator()
	admin := models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}

	svc := &mockAdminService{
		listProjectsFn: func(ctx context.Context) ([]models.Project, error) {
			return []models.Project{
				{ID: 2, Title: "Draft Piece", Status: models.ProjectStatusDraft},
				{ID: 1, Title: "Banking App", Status: models.ProjectStatusPublished},
			}, nil
		},
	}
	router := newAdminRouter(svc, tg)

	req := httptest.NewRequest(http.MethodGet, "/admin/projects", nil)
	req.Header.Set("Authorization", bearerToken(t, tg, &admin))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var projects []models.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projects))
	assert.Len(t, projects, 2)
}

func TestAdminHandler_Stats(t *testing.T) {
	tg := newTestTokenGenerator()
	admin := models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}

	svc := &mockAdminService{
		getStatsFn: func(ctx context.Context) (*models.Stats, error) {
			return &models.Stats{TotalUsers: 4, TotalProjects: 9, PublishedProjects: 6}, nil
		},
	}
	router := newAdminRouter(svc, tg)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", bearerToken(t, tg, &admin))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var stats models.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.TotalUsers)
	assert.Equal(t, 9, stats.TotalProjects)
	assert.Equal(t, 6, stats.PublishedProjects)
}
