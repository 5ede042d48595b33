package api

import (
	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/handlers"
	"github.com/msulemvn/bloggers/internal/middleware"
	"github.com/msulemvn/bloggers/internal/permissions"
)

func registerTagRoutes(api *gin.RouterGroup, handler *handlers.TagHandler, checker *permissions.Checker) {
	tags := api.Group("/tags")
	{
		tags.GET("", middleware.RequirePermission(checker, "view:tags"), handler.List)
		tags.POST("", middleware.RequirePermission(checker, "create:tags"), handler.Create)
		tags.PUT("/:id", middleware.RequirePermission(checker, "update:tags"), handler.Update)
		tags.DELETE("/:id", middleware.RequirePermission(checker, "delete:tags"), handler.Delete)
	}
}
