// Package testutil holds shared fixtures for DB-backed tests.
package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	database "github.com/amit-3245/campus-complaint-portal/internal/db"
	"github.com/amit-3245/campus-complaint-portal/internal/models"
)

// NewDB returns a fresh, migrated in-memory sqlite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	// ":memory:" with a single connection gives every test its own empty DB.
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := d.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(d); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return d
}

// CreateUser inserts a user with the given role and password "password123".
func CreateUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()

	u := &models.User{Name: name, Email: email, Role: role}
	if role == models.RoleStudent {
		u.StudentID = "S-" + name
	}
	if err := u.SetPassword("password123"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return u
}

// CreateComplaint inserts a teacher-type complaint owned by owner.
func CreateComplaint(t *testing.T, db *gorm.DB, owner *models.User, title, category string) *models.Complaint {
	t.Helper()

	c := &models.Complaint{
		UserID:        owner.ID,
		ComplaintType: models.TypeTeacher,
		Title:         title,
		Category:      category,
		Problem:       "details for " + title,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("Failed to create complaint %q: %v", title, err)
	}
	return c
}
