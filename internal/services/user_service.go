package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
	"github.com/msulemvn/bloggers/pkg/crypto"
	apperrors "github.com/msulemvn/bloggers/pkg/errors"
)

// ErrUserNotFound indicates the requested user does not exist.
var ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)

// CreateUserInput describes the fields accepted when creating a user.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput enumerates mutable user attributes.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	IsActive *bool
}

// ListUsersOptions controls pagination for user listing.
type ListUsersOptions struct {
	Page     int
	PageSize int
	// ExcludeUserID drops the requesting account from the listing.
	ExcludeUserID string
}

// UserService manages the CRUD lifecycle for user accounts.
type UserService struct {
	db       *gorm.DB
	activity *ActivityService
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, activity *ActivityService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, activity: activity}, nil
}

// Create provisions a new user with a hashed password and the default role.
func (s *UserService) Create(ctx context.Context, actorID string, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, apperrors.NewValidation("name is required")
	}
	if email == "" {
		return nil, apperrors.NewValidation("email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewValidation("password is required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		IsActive: true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		var defaultRole models.Role
		if err := tx.First(&defaultRole, "name = ?", "user").Error; err != nil {
			return fmt.Errorf("user service: load default role: %w", err)
		}

		if err := tx.Model(user).Association("Roles").Append(&defaultRole); err != nil {
			return fmt.Errorf("user service: assign default role: %w", err)
		}

		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewValidation("email already exists")
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User created a new user",
		Showable:    true,
		Metadata:    map[string]any{"user_id": user.ID, "email": user.Email},
	})

	return user, nil
}

// Get loads a user with roles preloaded.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).Preload("Roles").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// GetByEmail loads a user account by email address.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Roles").First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user by email: %w", err)
	}
	return &user, nil
}

// List returns paginated users ordered by creation time descending.
func (s *UserService) List(ctx context.Context, opts ListUsersOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}

	query := s.db.WithContext(ctx).Model(&models.User{})
	if opts.ExcludeUserID != "" {
		query = query.Where("id <> ?", opts.ExcludeUserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	var users []models.User
	if err := query.
		Preload("Roles").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}

	return users, total, nil
}

// Update applies the provided changes to a user account.
func (s *UserService) Update(ctx context.Context, actorID, userID string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			updates["name"] = name
		}
	}
	if input.Email != nil {
		if email := strings.ToLower(strings.TrimSpace(*input.Email)); email != "" {
			updates["email"] = email
		}
	}
	if input.Password != nil && strings.TrimSpace(*input.Password) != "" {
		hashed, err := crypto.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("user service: hash password: %w", err)
		}
		updates["password"] = hashed
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewValidation("email already exists")
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}

	if err := s.db.WithContext(ctx).Preload("Roles").First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("user service: reload user: %w", err)
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User updated a user",
		Showable:    true,
		Metadata:    map[string]any{"user_id": user.ID},
	})

	return &user, nil
}

// Delete soft-deletes a user account.
func (s *UserService) Delete(ctx context.Context, actorID, userID string) error {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("user service: load user: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&user).Error; err != nil {
		return fmt.Errorf("user service: delete user: %w", err)
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User deleted a user",
		Showable:    true,
		Metadata:    map[string]any{"user_id": user.ID},
	})

	return nil
}
