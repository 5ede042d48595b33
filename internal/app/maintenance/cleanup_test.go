package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	testutil "github.com/msulemvn/bloggers/internal/database/testutil"
	"github.com/msulemvn/bloggers/internal/models"
	"github.com/msulemvn/bloggers/internal/services"
)

func seedCommentHost(t *testing.T, db *gorm.DB) (*models.User, *models.Post) {
	t.Helper()

	user := models.User{
		Name:     "Maintenance",
		Email:    "maintenance@example.com",
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)

	post := models.Post{
		Title:   "Kept post",
		Slug:    "kept-post",
		UserID:  user.ID,
		Content: "body",
		Status:  "approved",
	}
	require.NoError(t, db.Create(&post).Error)

	return &user, &post
}

func TestCleanupOrphanedComments(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user, post := seedCommentHost(t, db)

	kept := models.Comment{
		UserID:          user.ID,
		Body:            "still attached",
		CommentableType: services.CommentableKindPosts,
		CommentableID:   post.ID,
		Status:          models.StatusApproved,
	}
	orphan := models.Comment{
		UserID:          user.ID,
		Body:            "host is gone",
		CommentableType: services.CommentableKindPosts,
		CommentableID:   "00000000-0000-0000-0000-000000000000",
		Status:          models.StatusApproved,
	}
	require.NoError(t, db.Create(&kept).Error)
	require.NoError(t, db.Create(&orphan).Error)

	removed, err := CleanupOrphanedComments(context.Background(), db)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	var remaining []models.Comment
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, kept.ID, remaining[0].ID)
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	activitySvc, err := services.NewActivityService(db)
	require.NoError(t, err)

	user, _ := seedCommentHost(t, db)

	// Activity entry older than the retention window.
	require.NoError(t, activitySvc.Record(context.Background(), services.ActivityEntry{
		UserID:      &user.ID,
		Description: "stale entry",
	}))
	cutoff := time.Now().AddDate(0, 0, -40)
	require.NoError(t, db.Model(&models.ActivityLog{}).
		Where("description = ?", "stale entry").
		Update("created_at", cutoff).Error)

	require.NoError(t, activitySvc.Record(context.Background(), services.ActivityEntry{
		UserID:      &user.ID,
		Description: "recent entry",
	}))

	orphan := models.Comment{
		UserID:          user.ID,
		Body:            "host is gone",
		CommentableType: services.CommentableKindPosts,
		CommentableID:   "00000000-0000-0000-0000-000000000000",
		Status:          models.StatusApproved,
	}
	require.NoError(t, db.Create(&orphan).Error)

	cleaner := NewCleaner(db, activitySvc, WithActivityRetentionDays(30))
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var logs []models.ActivityLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, "recent entry", logs[0].Description)

	var commentCount int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&commentCount).Error)
	require.Equal(t, int64(0), commentCount)
}

func TestCleanerStartAndStop(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	activitySvc, err := services.NewActivityService(db)
	require.NoError(t, err)

	cleaner := NewCleaner(db, activitySvc,
		WithActivitySchedule("@every 1h"),
		WithCommentSchedule("@every 1h"),
	)
	require.NoError(t, cleaner.Start())

	done := cleaner.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("expected scheduler to stop promptly")
	}
}

func TestCleanerRejectsBadSchedule(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	activitySvc, err := services.NewActivityService(db)
	require.NoError(t, err)

	cleaner := NewCleaner(db, activitySvc, WithActivitySchedule("not-a-spec"))
	require.Error(t, cleaner.Start())
}
