package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/services"
	"github.com/msulemvn/bloggers/pkg/errors"
	"github.com/msulemvn/bloggers/pkg/response"
)

// RoleHandler exposes role management and the permission matrix endpoints.
type RoleHandler struct {
	service *services.RoleService
}

func NewRoleHandler(service *services.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

type createRoleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	Description string `json:"description" validate:"max=255"`
}

type updateRoleRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=64"`
	Description string `json:"description" validate:"max=255"`
}

type setPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required"`
}

// GET /api/roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.service.ListRoles(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// POST /api/roles
func (h *RoleHandler) Create(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req createRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.service.CreateRole(requestContext(c), actorID, services.CreateRoleInput{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, "Role created", role)
}

// PUT /api/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req updateRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.service.UpdateRole(requestContext(c), actorID, c.Param("id"), services.UpdateRoleInput{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Role updated", role)
}

// DELETE /api/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteRole(requestContext(c), actorID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// GET /api/roles/:id/permissions
//
// Returns the full permission catalogue grouped by resource, with the role's
// held permissions flagged, ready for a checkbox matrix.
func (h *RoleHandler) Permissions(c *gin.Context) {
	grouped, err := h.service.Categorize(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, grouped)
}

// PUT /api/roles/:id/permissions
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req setPermissionsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.service.SetRolePermissions(requestContext(c), actorID, c.Param("id"), req.Permissions); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Permissions updated", nil)
}
