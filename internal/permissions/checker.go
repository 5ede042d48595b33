package permissions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
)

// AdminRole is the role name whose holders bypass ownership checks.
const AdminRole = "admin"

// Checker evaluates user permissions against assigned roles.
type Checker struct {
	db *gorm.DB
}

// NewChecker constructs a permission checker backed by the provided database.
func NewChecker(db *gorm.DB) (*Checker, error) {
	if db == nil {
		return nil, errors.New("permission checker: db is required")
	}
	return &Checker{db: db}, nil
}

// Check determines whether the user holds the named permission through any of
// its roles. The result reflects the latest committed assignments.
func (c *Checker) Check(ctx context.Context, userID, permissionName string) (bool, error) {
	ctx = ensureContext(ctx)

	permissionName = strings.TrimSpace(permissionName)
	if permissionName == "" {
		return false, errors.New("permission checker: permission name is required")
	}
	if _, ok := Get(permissionName); !ok {
		return false, fmt.Errorf("%w %q", ErrUnknownPermission, permissionName)
	}

	user, err := c.loadUser(ctx, userID)
	if err != nil {
		return false, err
	}

	_, ok := collectUserPermissions(user)[permissionName]
	return ok, nil
}

// EffectivePermissions returns the distinct permission names granted to the
// user: the union of permissions across every role it holds, sorted.
func (c *Checker) EffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	ctx = ensureContext(ctx)

	user, err := c.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	perms := collectUserPermissions(user)
	names := make([]string, 0, len(perms))
	for name := range perms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// HasRole reports whether the user holds the named role. Services use this for
// the explicit admin ownership bypass rather than inferring it from
// permission names.
func (c *Checker) HasRole(ctx context.Context, userID, roleName string) (bool, error) {
	ctx = ensureContext(ctx)

	roleName = strings.TrimSpace(roleName)
	if roleName == "" {
		return false, errors.New("permission checker: role name is required")
	}

	user, err := c.loadUser(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, role := range user.Roles {
		if role.Name == roleName {
			return true, nil
		}
	}
	return false, nil
}

func (c *Checker) loadUser(ctx context.Context, userID string) (*models.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("permission checker: user id is required")
	}

	var user models.User
	if err := c.db.WithContext(ctx).
		Preload("Roles.Permissions").
		First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("permission checker: load user: %w", err)
	}
	return &user, nil
}

func collectUserPermissions(user *models.User) map[string]struct{} {
	perms := make(map[string]struct{})
	for _, role := range user.Roles {
		for _, perm := range role.Permissions {
			perms[perm.Name] = struct{}{}
		}
	}
	return perms
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
