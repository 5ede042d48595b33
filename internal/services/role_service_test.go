package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/msulemvn/bloggers/internal/database/testutil"
	"github.com/msulemvn/bloggers/internal/models"
	apperrors "github.com/msulemvn/bloggers/pkg/errors"
)

func TestRoleCreateUpdateDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	svc, err := NewRoleService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "", CreateRoleInput{Name: "editor", Description: "Editors"})
	require.NoError(t, err)
	require.Equal(t, "editor", role.Name)
	require.False(t, role.IsSystem)

	_, err = svc.CreateRole(ctx, "", CreateRoleInput{Name: "editor"})
	require.Equal(t, 422, apperrors.FromError(err).StatusCode)

	updated, err := svc.UpdateRole(ctx, "", role.ID, UpdateRoleInput{Name: "reviewer"})
	require.NoError(t, err)
	require.Equal(t, "reviewer", updated.Name)

	require.NoError(t, svc.DeleteRole(ctx, "", role.ID))
	require.ErrorIs(t, svc.DeleteRole(ctx, "", role.ID), ErrRoleNotFound)
}

func TestSystemRolesAreImmutable(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	svc, err := NewRoleService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()

	var admin models.Role
	require.NoError(t, db.First(&admin, "name = ?", "admin").Error)

	_, err = svc.UpdateRole(ctx, "", admin.ID, UpdateRoleInput{Name: "superadmin"})
	require.ErrorIs(t, err, ErrSystemRoleImmutable)

	require.ErrorIs(t, svc.DeleteRole(ctx, "", admin.ID), ErrSystemRoleImmutable)

	// Description changes remain allowed
	updated, err := svc.UpdateRole(ctx, "", admin.ID, UpdateRoleInput{Description: "Full access"})
	require.NoError(t, err)
	require.Equal(t, "Full access", updated.Description)
}

func TestSetRolePermissionsReplacesSet(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	svc, err := NewRoleService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "", CreateRoleInput{Name: "editor"})
	require.NoError(t, err)

	require.NoError(t, svc.SetRolePermissions(ctx, "", role.ID, []string{"view:posts", "create:posts"}))

	var loaded models.Role
	require.NoError(t, db.Preload("Permissions").First(&loaded, "id = ?", role.ID).Error)
	require.Len(t, loaded.Permissions, 2)

	// A sync, not a merge: the new set fully replaces the old one
	require.NoError(t, svc.SetRolePermissions(ctx, "", role.ID, []string{"view:tags"}))
	require.NoError(t, db.Preload("Permissions").First(&loaded, "id = ?", role.ID).Error)
	require.Len(t, loaded.Permissions, 1)
	require.Equal(t, "view:tags", loaded.Permissions[0].Name)

	// Empty set clears everything
	require.NoError(t, svc.SetRolePermissions(ctx, "", role.ID, nil))
	require.NoError(t, db.Preload("Permissions").First(&loaded, "id = ?", role.ID).Error)
	require.Empty(t, loaded.Permissions)
}

func TestSetRolePermissionsRejectsUnknownNames(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	svc, err := NewRoleService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "", CreateRoleInput{Name: "editor"})
	require.NoError(t, err)

	err = svc.SetRolePermissions(ctx, "", role.ID, []string{"view:posts", "fly:rockets"})
	require.Error(t, err)
	require.Equal(t, 422, apperrors.FromError(err).StatusCode)

	// Nothing was applied
	var loaded models.Role
	require.NoError(t, db.Preload("Permissions").First(&loaded, "id = ?", role.ID).Error)
	require.Empty(t, loaded.Permissions)
}

func TestRoleCategorize(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	svc, err := NewRoleService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "", CreateRoleInput{Name: "editor"})
	require.NoError(t, err)
	require.NoError(t, svc.SetRolePermissions(ctx, "", role.ID, []string{"create:posts", "view:posts", "create:tags"}))

	grouped, err := svc.Categorize(ctx, role.ID)
	require.NoError(t, err)

	require.Len(t, grouped["posts"], 6)
	require.Len(t, grouped["tags"], 4)

	selectedPosts := 0
	for _, opt := range grouped["posts"] {
		if opt.Selected {
			selectedPosts++
		}
		// IDs come from the synced permission rows
		require.NotEqual(t, opt.Name, opt.ID)
	}
	require.Equal(t, 2, selectedPosts)
}

func TestAssignRolesReplacesUserRoles(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	svc, err := NewRoleService(db, nil)
	require.NoError(t, err)

	users, err := NewUserService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	user, err := users.Create(ctx, "", CreateUserInput{Name: "Jane", Email: "jane@example.com", Password: "password1"})
	require.NoError(t, err)

	var adminRole models.Role
	require.NoError(t, db.First(&adminRole, "name = ?", "admin").Error)

	require.NoError(t, svc.AssignRoles(ctx, "", user.ID, []string{adminRole.ID}))

	loaded, err := users.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Roles, 1)
	require.Equal(t, "admin", loaded.Roles[0].Name)

	err = svc.AssignRoles(ctx, "", user.ID, []string{"66666666-6666-4666-8666-666666666666"})
	require.Equal(t, 422, apperrors.FromError(err).StatusCode)
}
