package database

import (
	"testing"

	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
	"github.com/msulemvn/bloggers/internal/permissions"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("expected health query to succeed: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestAutoMigrateAndSeedData(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrateAndSeed(db); err != nil {
		t.Fatalf("auto migrate and seed failed: %v", err)
	}

	var permissionCount int64
	if err := db.Model(&models.Permission{}).Count(&permissionCount).Error; err != nil {
		t.Fatalf("count permissions: %v", err)
	}
	if want := int64(len(permissions.GetAll())); permissionCount != want {
		t.Fatalf("expected %d permissions, got %d", want, permissionCount)
	}

	for roleName, permNames := range rolePermissionSets {
		var role models.Role
		if err := db.Preload("Permissions").First(&role, "name = ?", roleName).Error; err != nil {
			t.Fatalf("load role %s: %v", roleName, err)
		}
		if !role.IsSystem {
			t.Fatalf("expected role %s to be a system role", roleName)
		}
		if len(role.Permissions) != len(permNames) {
			t.Fatalf("role %s: expected %d permissions, got %d", roleName, len(permNames), len(role.Permissions))
		}
	}

	var admin models.User
	if err := db.Preload("Roles").First(&admin, "email = ?", "admin@example.com").Error; err != nil {
		t.Fatalf("load seeded admin: %v", err)
	}
	if len(admin.Roles) != 1 || admin.Roles[0].Name != "admin" {
		t.Fatalf("expected seeded admin to hold the admin role, got %+v", admin.Roles)
	}
}

func TestSeedDataIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrateAndSeed(db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := AutoMigrateAndSeed(db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var roleCount int64
	if err := db.Model(&models.Role{}).Count(&roleCount).Error; err != nil {
		t.Fatalf("count roles: %v", err)
	}
	if roleCount != int64(len(rolePermissionSets)) {
		t.Fatalf("expected %d roles after reseed, got %d", len(rolePermissionSets), roleCount)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount != 1 {
		t.Fatalf("expected a single seeded admin after reseed, got %d", userCount)
	}
}

func TestSeedDataSkipsAdminWhenUsersExist(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	existing := models.User{
		Name:     "Existing",
		Email:    "existing@example.com",
		Password: "hashed",
		IsActive: true,
	}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("create existing user: %v", err)
	}

	if err := SeedData(db); err != nil {
		t.Fatalf("seed data: %v", err)
	}

	var adminCount int64
	if err := db.Model(&models.User{}).Where("email = ?", "admin@example.com").Count(&adminCount).Error; err != nil {
		t.Fatalf("count admin users: %v", err)
	}
	if adminCount != 0 {
		t.Fatalf("expected no admin to be seeded when users already exist")
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
