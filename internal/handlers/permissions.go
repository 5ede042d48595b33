package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/permissions"
	"github.com/msulemvn/bloggers/internal/services"
	"github.com/msulemvn/bloggers/pkg/errors"
	"github.com/msulemvn/bloggers/pkg/response"
)

// PermissionHandler exposes the permission registry and the caller's own
// effective permission set.
type PermissionHandler struct {
	roles   *services.RoleService
	checker *permissions.Checker
}

func NewPermissionHandler(roles *services.RoleService, checker *permissions.Checker) *PermissionHandler {
	return &PermissionHandler{roles: roles, checker: checker}
}

// GET /api/permissions
func (h *PermissionHandler) List(c *gin.Context) {
	grouped, err := h.roles.PermissionCatalogue(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, grouped)
}

// GET /api/permissions/my
func (h *PermissionHandler) Mine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	names, err := h.checker.EffectivePermissions(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"permissions": names})
}
