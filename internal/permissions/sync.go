package permissions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
)

// Sync persists registered permissions to the backing database. Existing rows
// are matched by name so identifiers stay stable across restarts.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("permission: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	perms := GetAll()
	if len(perms) == 0 {
		return nil
	}

	tx := db.WithContext(ctx)
	for name, def := range perms {
		record := models.Permission{
			Name:        name,
			Description: def.Description,
		}

		if err := tx.Where(models.Permission{Name: name}).
			Attrs(record).
			FirstOrCreate(&models.Permission{}).Error; err != nil {
			return fmt.Errorf("permission: sync %s: %w", name, err)
		}
	}

	return nil
}
