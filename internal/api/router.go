package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/app"
	iauth "github.com/msulemvn/bloggers/internal/auth"
	"github.com/msulemvn/bloggers/internal/handlers"
	"github.com/msulemvn/bloggers/internal/middleware"
	"github.com/msulemvn/bloggers/internal/permissions"
	"github.com/msulemvn/bloggers/internal/services"
	"github.com/msulemvn/bloggers/internal/storage"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, pictures storage.PictureStore, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	checker, err := permissions.NewChecker(db)
	if err != nil {
		return nil, err
	}

	activity, err := services.NewActivityService(db)
	if err != nil {
		return nil, err
	}
	users, err := services.NewUserService(db, activity)
	if err != nil {
		return nil, err
	}
	roles, err := services.NewRoleService(db, activity)
	if err != nil {
		return nil, err
	}
	posts, err := services.NewPostService(db, pictures, checker, activity)
	if err != nil {
		return nil, err
	}
	tags, err := services.NewTagService(db, activity)
	if err != nil {
		return nil, err
	}
	comments, err := services.NewCommentService(db, checker, activity)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	r.NoRoute(middleware.NotFoundHandler)

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(users, activity, jwt, checker)

	// Public auth routes
	registerAuthRoutes(r, authHandler)

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	api.GET("/auth/me", authHandler.Me)

	commentHandler := handlers.NewCommentHandler(comments, posts)
	registerPostRoutes(api, handlers.NewPostHandler(posts), commentHandler, checker)
	registerCommentRoutes(api, commentHandler)
	registerTagRoutes(api, handlers.NewTagHandler(tags), checker)
	registerUserRoutes(api, handlers.NewUserHandler(users, roles), checker)
	registerRoleRoutes(api, handlers.NewRoleHandler(roles), checker)
	registerPermissionRoutes(api, handlers.NewPermissionHandler(roles, checker), checker)
	registerActivityRoutes(api, handlers.NewActivityHandler(activity), checker)
	registerDashboardRoutes(api, handlers.NewDashboardHandler(db, posts, activity))

	return r, nil
}
