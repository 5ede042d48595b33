package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
	"github.com/msulemvn/bloggers/internal/permissions"
	"github.com/msulemvn/bloggers/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.Post{},
		&models.Tag{},
		&models.Comment{},
		&models.ActivityLog{},
	)
}

// rolePermissionSets maps seeded roles to the permission names they start with.
var rolePermissionSets = map[string][]string{
	"admin": {
		"view:posts",
		"approve:posts",
		"publish:posts",
		"delete:posts",
		"view:users",
		"create:users",
		"update:users",
		"delete:users",
		"view:roles",
		"update:roles",
	},
	"user": {
		"view:posts",
		"create:posts",
		"update:posts",
		"publish:posts",
		"delete:posts",
		"view:tags",
		"create:tags",
		"update:tags",
		"delete:tags",
	},
}

// SeedData populates the permission catalog, default roles, and the initial
// admin account.
func SeedData(db *gorm.DB) error {
	if err := permissions.Sync(context.Background(), db); err != nil {
		return err
	}

	for roleName, permNames := range rolePermissionSets {
		role := models.Role{
			BaseModel: models.BaseModel{ID: roleName},
			Name:      roleName,
			IsSystem:  true,
		}
		if err := db.Where(models.Role{Name: roleName}).Attrs(role).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", roleName, err)
		}

		var perms []models.Permission
		if err := db.Where("name IN ?", permNames).Find(&perms).Error; err != nil {
			return fmt.Errorf("seed role %s: load permissions: %w", roleName, err)
		}
		if len(perms) != len(permNames) {
			return fmt.Errorf("seed role %s: expected %d permissions, found %d", roleName, len(permNames), len(perms))
		}

		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("seed role %s: attach permissions: %w", roleName, err)
		}
	}

	return seedAdminUser(db)
}

func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("seed admin: count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := crypto.HashPassword("password")
	if err != nil {
		return fmt.Errorf("seed admin: hash password: %w", err)
	}

	admin := models.User{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: hashed,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: create user: %w", err)
	}

	var adminRole models.Role
	if err := db.First(&adminRole, "name = ?", "admin").Error; err != nil {
		return fmt.Errorf("seed admin: load role: %w", err)
	}

	if err := db.Model(&admin).Association("Roles").Append(&adminRole); err != nil {
		return fmt.Errorf("seed admin: assign role: %w", err)
	}

	return nil
}
