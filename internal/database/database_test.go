package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stayhub/stayhub-backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestSeedAdminUser(t *testing.T) {
	db := openTestDB(t)

	if err := SeedAdminUser(db); err != nil {
		t.Fatalf("SeedAdminUser: %v", err)
	}

	var admin models.User
	if err := db.Where("role = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		t.Fatalf("admin user not created: %v", err)
	}
	if admin.Email != "admin@stayhub.com" {
		t.Errorf("admin email = %q", admin.Email)
	}
	if err := admin.CheckPassword("admin123"); err != nil {
		t.Errorf("default admin password does not verify: %v", err)
	}

	// Seeding again must not create a second admin.
	if err := SeedAdminUser(db); err != nil {
		t.Fatalf("second SeedAdminUser: %v", err)
	}
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count != 1 {
		t.Errorf("admin count = %d, want 1", count)
	}
}

func TestCreateUserWithStagingPassword(t *testing.T) {
	db := openTestDB(t)

	// The plain-text staging field must never reach the insert statement.
	user := models.User{
		Username: "guest1",
		Email:    "guest1@example.com",
		Password: "secret123",
		FullName: "Guest One",
		Role:     models.RoleGuest,
		IsActive: true,
	}
	if err := user.HashPassword(); err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Create: %v", err)
	}

	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Password != "" {
		t.Errorf("staging password was persisted: %q", stored.Password)
	}
	if err := stored.CheckPassword("secret123"); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}
