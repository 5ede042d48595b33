package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/services"
	"github.com/msulemvn/bloggers/pkg/errors"
	"github.com/msulemvn/bloggers/pkg/metrics"
	"github.com/msulemvn/bloggers/pkg/response"
)

// UserHandler exposes account management for administrators.
type UserHandler struct {
	service *services.UserService
	roles   *services.RoleService
}

func NewUserHandler(service *services.UserService, roles *services.RoleService) *UserHandler {
	return &UserHandler{service: service, roles: roles}
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=128"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=128"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	IsActive *bool   `json:"is_active"`
}

type assignRolesRequest struct {
	RoleIDs []string `json:"role_ids" validate:"required"`
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 15)

	opts := services.ListUsersOptions{Page: page, PageSize: per}
	if userID, ok := currentUserID(c); ok {
		// The account browsing the listing is excluded from it
		opts.ExcludeUserID = userID
	}

	users, total, err := h.service.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req createUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.service.Create(requestContext(c), actorID, services.CreateUserInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ContentMutations.WithLabelValues("user", "create").Inc()
	response.SuccessWithMessage(c, http.StatusCreated, "User created", user)
}

// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req updateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.service.Update(requestContext(c), actorID, c.Param("id"), services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ContentMutations.WithLabelValues("user", "update").Inc()
	response.SuccessWithMessage(c, http.StatusOK, "User updated", user)
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(requestContext(c), actorID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	metrics.ContentMutations.WithLabelValues("user", "delete").Inc()
	response.NoContent(c)
}

// PUT /api/users/:id/roles
func (h *UserHandler) AssignRoles(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req assignRolesRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.roles.AssignRoles(requestContext(c), actorID, c.Param("id"), req.RoleIDs); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Roles updated", nil)
}
