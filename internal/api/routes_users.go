package api

import (
	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/handlers"
	"github.com/msulemvn/bloggers/internal/middleware"
	"github.com/msulemvn/bloggers/internal/permissions"
)

func registerUserRoutes(api *gin.RouterGroup, handler *handlers.UserHandler, checker *permissions.Checker) {
	users := api.Group("/users")
	{
		users.GET("", middleware.RequirePermission(checker, "view:users"), handler.List)
		users.POST("", middleware.RequirePermission(checker, "create:users"), handler.Create)
		users.GET("/:id", middleware.RequirePermission(checker, "view:users"), handler.Get)
		users.PUT("/:id", middleware.RequirePermission(checker, "update:users"), handler.Update)
		users.DELETE("/:id", middleware.RequirePermission(checker, "delete:users"), handler.Delete)
		users.PUT("/:id/roles", middleware.RequirePermission(checker, "update:roles"), handler.AssignRoles)
	}
}
