package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/demowall/backend/internal/apperrors"
	authmw "github.com/demowall/backend/internal/auth/middleware"
	"github.com/demowall/backend/internal/auth/service"
	"github.com/demowall/backend/internal/models"
)

type mockAuthService struct {
	registerFn func(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	loginFn    func(ctx context.Context, req *models.LoginRequest) (string, *models.User, error)
	profileFn  func(ctx context.Context, userID int) (*models.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	return m.registerFn(ctx, req)
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (string, *models.User, error) {
	return m.loginFn(ctx, req)
}

func (m *mockAuthService) Profile(ctx context.Context, userID int) (*models.User, error) {
	return m.profileFn(ctx, userID)
}

func newTestTokenGenerator() *service.TokenGenerator {
	return service.NewTokenGenerator("test-secret", time.Hour)
}

func newUserRouter(svc AuthService, tg *service.TokenGenerator) chi.Router {
	r := chi.NewRouter()
	handler := NewUserHandler(svc, zap.NewNop(), authmw.Auth(tg))
	handler.RegisterRoutes(r)
	return r
}

func TestUserHandler_Register(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
			return &models.User{ID: 7, Username: req.Username}, nil
		},
	}
	router := newUserRouter(svc, newTestTokenGenerator())

	body, _ := json.Marshal(models.RegisterRequest{Username: "mika", Email: "mika@example.com", Password: "secret1"})
	req := httptest.NewRequest(http.MethodPost, "/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(7), resp["userId"])
	assert.Equal(t, "user registered successfully", resp["message"])
}

func TestUserHandler_Register_Duplicate(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
			return nil, fmt.Errorf("username or email %w", apperrors.ErrConflict)
		},
	}
	router := newUserRouter(svc, newTestTokenGenerator())

	body, _ := json.Marshal(models.RegisterRequest{Username: "mika", Email: "mika@example.com", Password: "secret1"})
	req := httptest.NewRequest(http.MethodPost, "/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_Register_InvalidBody(t *testing.T) {
	svc := &mockAuthService{}
	router := newUserRouter(svc, newTestTokenGenerator())

	req := httptest.NewRequest(http.MethodPost, "/user/register", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_Login(t *testing.T) {
	user := models.User{ID: 3, Username: "mika", Role: models.RoleUser, Status: models.UserStatusActive}
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, req *models.LoginRequest) (string, *models.User, error) {
			return "signed-token", &user, nil
		},
	}
	router := newUserRouter(svc, newTestTokenGenerator())

	body, _ := json.Marshal(models.LoginRequest{Username: "mika", Password: "secret1"})
	req := httptest.NewRequest(http.MethodPost, "/user/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "signed-token", resp.Token)
	assert.Equal(t, "mika", resp.User.Username)
}

func TestUserHandler_Login_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, req *models.LoginRequest) (string, *models.User, error) {
			return "", nil, apperrors.ErrInvalidCredentials
		},
	}
	router := newUserRouter(svc, newTestTokenGenerator())

	body, _ := json.Marshal(models.LoginRequest{Username: "mika", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/user/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserHandler_Login_Banned(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, req *models.LoginRequest) (string, *models.User, error) {
			return "", nil, apperrors.ErrBanned
		},
	}
	router := newUserRouter(svc, newTestTokenGenerator())

	body, _ := json.Marshal(models.LoginRequest{Username: "banned", Password: "secret1"})
	req := httptest.NewRequest(http.MethodPost, "/user/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserHandler_Profile(t *testing.T) {
	tg := newTestTokenGenerator()
	user := models.User{ID: 3, Username: "mika", Email: "mika@example.com", Role: models.RoleUser, Status: models.UserStatusActive}
	svc := &mockAuthService{
		profileFn: func(ctx context.Context, userID int) (*models.User, error) {
			require.Equal(t, 3, userID)
			return &user, nil
		},
	}
	router := newUserRouter(svc, tg)

	token, err := tg.Generate(&user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "mika", resp.Username)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUserHandler_Profile_Unauthenticated(t *testing.T) {
	svc := &mockAuthService{}
	router := newUserRouter(svc, newTestTokenGenerator())

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
