package permissions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
)

func openCheckerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func seedUserWithPermissions(t *testing.T, db *gorm.DB, roleName string, permNames ...string) *models.User {
	t.Helper()

	perms := make([]models.Permission, 0, len(permNames))
	for _, name := range permNames {
		perm := models.Permission{Name: name}
		require.NoError(t, db.Where(models.Permission{Name: name}).FirstOrCreate(&perm).Error)
		perms = append(perms, perm)
	}

	role := models.Role{Name: roleName}
	require.NoError(t, db.Where(models.Role{Name: roleName}).FirstOrCreate(&role).Error)
	require.NoError(t, db.Model(&role).Association("Permissions").Replace(perms))

	user := models.User{
		Name:     roleName + " user",
		Email:    roleName + "@example.com",
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Model(&user).Association("Roles").Append(&role))

	return &user
}

func TestCheckerCheck(t *testing.T) {
	db := openCheckerTestDB(t)
	checker, err := NewChecker(db)
	require.NoError(t, err)

	user := seedUserWithPermissions(t, db, "author", "create:posts", "view:posts")

	ctx := context.Background()

	allowed, err := checker.Check(ctx, user.ID, "create:posts")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = checker.Check(ctx, user.ID, "delete:posts")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestCheckerCheckUnknownPermission(t *testing.T) {
	db := openCheckerTestDB(t)
	checker, err := NewChecker(db)
	require.NoError(t, err)

	user := seedUserWithPermissions(t, db, "author", "create:posts")

	_, err = checker.Check(context.Background(), user.ID, "teleport:posts")
	require.ErrorIs(t, err, ErrUnknownPermission)
}

func TestCheckerEffectivePermissionsUnion(t *testing.T) {
	db := openCheckerTestDB(t)
	checker, err := NewChecker(db)
	require.NoError(t, err)

	user := seedUserWithPermissions(t, db, "author", "create:posts", "view:posts")

	// Second role contributes additional permissions; overlap is deduplicated.
	extra := seedUserWithPermissions(t, db, "moderator", "view:posts", "approve:posts")
	var modRole models.Role
	require.NoError(t, db.First(&modRole, "name = ?", "moderator").Error)
	require.NoError(t, db.Model(user).Association("Roles").Append(&modRole))
	_ = extra

	perms, err := checker.EffectivePermissions(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"approve:posts", "create:posts", "view:posts"}, perms)
}

func TestCheckerHasRole(t *testing.T) {
	db := openCheckerTestDB(t)
	checker, err := NewChecker(db)
	require.NoError(t, err)

	user := seedUserWithPermissions(t, db, AdminRole, "view:users")

	ctx := context.Background()

	isAdmin, err := checker.HasRole(ctx, user.ID, AdminRole)
	require.NoError(t, err)
	require.True(t, isAdmin)

	isOther, err := checker.HasRole(ctx, user.ID, "editor")
	require.NoError(t, err)
	require.False(t, isOther)
}

func TestCheckerUnknownUser(t *testing.T) {
	db := openCheckerTestDB(t)
	checker, err := NewChecker(db)
	require.NoError(t, err)

	_, err = checker.Check(context.Background(), "missing-user", "view:posts")
	require.Error(t, err)
}
