package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/msulemvn/bloggers/internal/auth"
	"github.com/msulemvn/bloggers/internal/permissions"
	"github.com/msulemvn/bloggers/internal/services"
	"github.com/msulemvn/bloggers/pkg/crypto"
	"github.com/msulemvn/bloggers/pkg/errors"
	"github.com/msulemvn/bloggers/pkg/metrics"
	"github.com/msulemvn/bloggers/pkg/response"
)

// AuthHandler manages the login flow and the authenticated profile endpoint.
type AuthHandler struct {
	users    *services.UserService
	activity *services.ActivityService
	jwt      *iauth.JWTService
	checker  *permissions.Checker
}

func NewAuthHandler(users *services.UserService, activity *services.ActivityService, jwt *iauth.JWTService, checker *permissions.Checker) *AuthHandler {
	return &AuthHandler{users: users, activity: activity, jwt: jwt, checker: checker}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=128"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Create(requestContext(c), "", services.CreateUserInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, "Account created", user)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the account exists
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInvalidCredentials)
		return
	}

	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInvalidCredentials)
		return
	}

	if !crypto.VerifyPassword(user.Password, req.Password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInvalidCredentials)
		return
	}

	token, err := h.jwt.GenerateAccessToken(user.ID)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInternalServer)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()

	if h.activity != nil {
		_ = h.activity.Record(ctx, services.ActivityEntry{
			UserID:      &user.ID,
			Description: "User logged in",
			Showable:    false,
			IPAddress:   c.ClientIP(),
			UserAgent:   c.Request.UserAgent(),
		})
	}

	perms, _ := h.checker.EffectivePermissions(ctx, user.ID)

	payload := gin.H{
		"tokens": tokenResponse{AccessToken: token, TokenType: "Bearer"},
		"user": gin.H{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"is_active": user.IsActive,
		},
		"permissions": perms,
	}

	response.Success(c, http.StatusOK, payload)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	ctx := requestContext(c)
	user, err := h.users.Get(ctx, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	perms, err := h.checker.EffectivePermissions(ctx, userID)
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":        user,
		"permissions": perms,
	})
}
