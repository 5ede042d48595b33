package api

import (
	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/handlers"
	"github.com/msulemvn/bloggers/internal/middleware"
	"github.com/msulemvn/bloggers/internal/permissions"
)

func registerPostRoutes(api *gin.RouterGroup, handler *handlers.PostHandler, comments *handlers.CommentHandler, checker *permissions.Checker) {
	posts := api.Group("/posts")
	{
		posts.GET("", middleware.RequirePermission(checker, "view:posts"), handler.List)
		posts.POST("", middleware.RequirePermission(checker, "create:posts"), handler.Create)
		posts.GET("/:slug", middleware.RequirePermission(checker, "view:posts"), handler.Get)
		posts.PUT("/:slug", middleware.RequirePermission(checker, "update:posts"), handler.Update)
		posts.DELETE("/:slug", middleware.RequirePermission(checker, "delete:posts"), handler.Delete)
		posts.GET("/:slug/comments", middleware.RequirePermission(checker, "view:posts"), comments.ListForPost)
	}
}
