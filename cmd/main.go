package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	authMiddleware "github.com/demowall/backend/internal/auth/middleware"
	"github.com/demowall/backend/internal/auth/service"
	"github.com/demowall/backend/internal/config"
	"github.com/demowall/backend/internal/handlers"
	"github.com/demowall/backend/internal/logger"
	loggerMiddleware "github.com/demowall/backend/internal/logger/middleware"
	"github.com/demowall/backend/internal/middlewares"
	"github.com/demowall/backend/internal/repositories"
	"github.com/demowall/backend/internal/services"
	"github.com/demowall/backend/internal/storage"

	_ "github.com/demowall/backend/docs"
)

// @title DemoWall API
// @version 1.0
// @description API for the DemoWall portfolio showcase: accounts, project catalog and admin console
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting DemoWall backend")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT token generator
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	projectRepo := repositories.NewProjectRepository(db, logger.Logger)

	// Initialize image storage
	imageStore := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.PublicPrefix)

	// Initialize services
	authService := services.NewAuthService(userRepo, tokenGenerator, logger.Logger)
	projectService := services.NewProjectService(projectRepo, imageStore, logger.Logger)
	adminService := services.NewAdminService(userRepo, projectRepo, logger.Logger)

	// Seed the bootstrap admin account
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureAdmin(seedCtx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		cancelSeed()
		logger.Logger.Fatal("Failed to seed admin account", zap.Error(err))
	}
	cancelSeed()

	// Initialize auth middleware
	authMw := authMiddleware.Auth(tokenGenerator)
	optionalAuthMw := authMiddleware.OptionalAuth(tokenGenerator)
	adminMw := authMiddleware.RequireAdmin(tokenGenerator)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(authService, logger.Logger, authMw)
	projectHandler := handlers.NewProjectHandler(projectService, logger.Logger, authMw, optionalAuthMw)
	adminHandler := handlers.NewAdminHandler(adminService, logger.Logger, adminMw)
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestID)
	r.Use(loggerMiddleware.Logger(logger.Logger))
	r.Use(middlewares.Recovery(logger.Logger))
	r.Use(middlewares.CORS(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimit(10 * 1024 * 1024)) // 10MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Serve uploaded images
	r.Handle(cfg.Uploads.PublicPrefix+"/*", http.StripPrefix(cfg.Uploads.PublicPrefix+"/", http.FileServer(http.Dir(cfg.Uploads.Dir))))

	// Scope router to /api
	r.Route("/api", func(r chi.Router) {
		healthHandler.RegisterRoutes(r)
		userHandler.RegisterRoutes(r)
		projectHandler.RegisterRoutes(r)
		adminHandler.RegisterRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "demowall_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
