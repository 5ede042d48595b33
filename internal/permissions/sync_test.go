package permissions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/msulemvn/bloggers/internal/models"
)

func TestSyncUpsertsCatalog(t *testing.T) {
	db := openCheckerTestDB(t)

	require.NoError(t, Sync(context.Background(), db))

	var count int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&count).Error)
	require.Equal(t, int64(len(GetAll())), count)

	// A second run must not duplicate rows.
	require.NoError(t, Sync(context.Background(), db))
	require.NoError(t, db.Model(&models.Permission{}).Count(&count).Error)
	require.Equal(t, int64(len(GetAll())), count)

	var perm models.Permission
	require.NoError(t, db.First(&perm, "name = ?", "create:posts").Error)
	require.NotEmpty(t, perm.ID)
}
