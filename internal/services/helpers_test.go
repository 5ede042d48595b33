package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/database/testutil"
	"github.com/msulemvn/bloggers/internal/models"
	"github.com/msulemvn/bloggers/internal/permissions"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
}

func createTestUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func grantAdminRole(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()

	role := models.Role{Name: permissions.AdminRole, IsSystem: true}
	require.NoError(t, db.Where(models.Role{Name: permissions.AdminRole}).FirstOrCreate(&role).Error)
	require.NoError(t, db.Model(user).Association("Roles").Append(&role))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":            "hello-world",
		"  Already--dashed --  ": "already-dashed",
		"Mixed CASE & Symbols!?": "mixed-case-symbols",
		"":                       "",
		"---":                    "",
	}
	for input, want := range cases {
		require.Equal(t, want, slugify(input), "input %q", input)
	}
}

func TestNormaliseIDs(t *testing.T) {
	got := normaliseIDs([]string{" a ", "", "b", "a", "  "})
	require.Equal(t, []string{"a", "b"}, got)
}
