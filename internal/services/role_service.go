package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
	"github.com/msulemvn/bloggers/internal/permissions"
	apperrors "github.com/msulemvn/bloggers/pkg/errors"
)

var (
	// ErrRoleNotFound indicates the requested role does not exist.
	ErrRoleNotFound = apperrors.New("ROLE_NOT_FOUND", "Role not found", http.StatusNotFound)
	// ErrSystemRoleImmutable prevents renaming or deleting seeded roles.
	ErrSystemRoleImmutable = apperrors.New("ROLE_IMMUTABLE", "System roles cannot be renamed or deleted", http.StatusBadRequest)
)

// RoleService provides role management and permission assignment.
type RoleService struct {
	db       *gorm.DB
	activity *ActivityService
}

// NewRoleService constructs a RoleService using the provided database handle.
func NewRoleService(db *gorm.DB, activity *ActivityService) (*RoleService, error) {
	if db == nil {
		return nil, errors.New("role service: db is required")
	}
	return &RoleService{db: db, activity: activity}, nil
}

// CreateRoleInput describes the payload accepted by CreateRole.
type CreateRoleInput struct {
	Name        string
	Description string
}

// UpdateRoleInput describes mutable fields on a role.
type UpdateRoleInput struct {
	Name        string
	Description string
}

// CreateRole registers a new role.
func (s *RoleService) CreateRole(ctx context.Context, actorID string, input CreateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("role name is required")
	}

	role := &models.Role{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}

	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewValidation("role name already exists")
		}
		return nil, fmt.Errorf("role service: create role: %w", err)
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User created a new role",
		Showable:    true,
		Metadata:    map[string]any{"role_id": role.ID, "name": role.Name},
	})

	return role, nil
}

// UpdateRole modifies role metadata. Seeded roles keep their name.
func (s *RoleService) UpdateRole(ctx context.Context, actorID, roleID string, input UpdateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("role service: load role: %w", err)
	}

	if role.IsSystem {
		if name := strings.TrimSpace(input.Name); name != "" && name != role.Name {
			return nil, ErrSystemRoleImmutable
		}
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != role.Name {
		updates["name"] = name
	}
	if desc := strings.TrimSpace(input.Description); desc != role.Description {
		updates["description"] = desc
	}

	if len(updates) == 0 {
		return &role, nil
	}

	if err := s.db.WithContext(ctx).Model(&role).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewValidation("role name already exists")
		}
		return nil, fmt.Errorf("role service: update role: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&role, "id = ?", roleID).Error; err != nil {
		return nil, fmt.Errorf("role service: reload role: %w", err)
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User updated a role",
		Metadata:    map[string]any{"role_id": role.ID},
	})

	return &role, nil
}

// DeleteRole removes non-system roles permanently.
func (s *RoleService) DeleteRole(ctx context.Context, actorID, roleID string) error {
	ctx = ensureContext(ctx)

	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("role service: load role: %w", err)
	}

	if role.IsSystem {
		return ErrSystemRoleImmutable
	}

	if err := s.db.WithContext(ctx).Model(&role).Association("Permissions").Clear(); err != nil {
		return fmt.Errorf("role service: clear role permissions: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&role).Association("Users").Clear(); err != nil {
		return fmt.Errorf("role service: clear role users: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&role).Error; err != nil {
		return fmt.Errorf("role service: delete role: %w", err)
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User deleted a role",
		Showable:    true,
		Metadata:    map[string]any{"role_id": role.ID, "name": role.Name},
	})

	return nil
}

// ListRoles returns all roles with their permission sets, ordered by creation date.
func (s *RoleService) ListRoles(ctx context.Context) ([]models.Role, error) {
	ctx = ensureContext(ctx)

	var roles []models.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").Order("created_at ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("role service: list roles: %w", err)
	}
	return roles, nil
}

// SetRolePermissions atomically replaces the role's permission set with the
// named permissions. It is a sync, not a merge: callers pass the complete
// desired set. Unknown names are rejected before any mutation.
func (s *RoleService) SetRolePermissions(ctx context.Context, actorID, roleID string, permissionNames []string) error {
	ctx = ensureContext(ctx)

	names := normaliseIDs(permissionNames)
	sort.Strings(names)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, "id = ?", roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("role service: load role: %w", err)
		}

		if len(names) == 0 {
			return tx.Model(&role).Association("Permissions").Clear()
		}

		for _, name := range names {
			if _, ok := permissions.Get(name); !ok {
				return apperrors.NewValidation(fmt.Sprintf("unknown permission %q", name))
			}
		}

		var perms []models.Permission
		if err := tx.Where("name IN ?", names).Find(&perms).Error; err != nil {
			return fmt.Errorf("role service: load permissions: %w", err)
		}
		if len(perms) != len(names) {
			return apperrors.NewValidation("one or more permissions are not registered")
		}

		if err := tx.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("role service: replace permissions: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User updated roles and permissions",
		Metadata:    map[string]any{"role_id": roleID, "permissions": names},
	})

	return nil
}

// PermissionCatalogue returns every registered permission grouped by
// resource, with nothing pre-selected. It backs the read-only registry
// listing used when building new roles.
func (s *RoleService) PermissionCatalogue(ctx context.Context) (map[string][]permissions.Option, error) {
	ctx = ensureContext(ctx)

	var all []models.Permission
	if err := s.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("role service: load permissions: %w", err)
	}

	ids := make(map[string]string, len(all))
	for _, perm := range all {
		ids[perm.Name] = perm.ID
	}

	return permissions.Categorize(nil, ids), nil
}

// Categorize groups all registered permissions by resource for the role UI,
// flagging the ones the role currently holds.
func (s *RoleService) Categorize(ctx context.Context, roleID string) (map[string][]permissions.Option, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").First(&role, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("role service: load role: %w", err)
	}

	held := make(map[string]struct{}, len(role.Permissions))
	for _, perm := range role.Permissions {
		held[perm.Name] = struct{}{}
	}

	var all []models.Permission
	if err := s.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("role service: load permissions: %w", err)
	}

	ids := make(map[string]string, len(all))
	for _, perm := range all {
		ids[perm.Name] = perm.ID
	}

	return permissions.Categorize(held, ids), nil
}

// AssignRoles replaces the user's role set with the provided role IDs.
func (s *RoleService) AssignRoles(ctx context.Context, actorID, userID string, roleIDs []string) error {
	ctx = ensureContext(ctx)

	ids := normaliseIDs(roleIDs)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("role service: load user: %w", err)
		}

		if len(ids) == 0 {
			return tx.Model(&user).Association("Roles").Clear()
		}

		var roles []models.Role
		if err := tx.Where("id IN ?", ids).Find(&roles).Error; err != nil {
			return fmt.Errorf("role service: load roles: %w", err)
		}
		if len(roles) != len(ids) {
			return apperrors.NewValidation("one or more roles do not exist")
		}

		if err := tx.Model(&user).Association("Roles").Replace(roles); err != nil {
			return fmt.Errorf("role service: replace user roles: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User updated role assignments",
		Metadata:    map[string]any{"user_id": userID, "role_ids": ids},
	})

	return nil
}
