package database

import (
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amit-3245/campus-complaint-portal/internal/config"
	"github.com/amit-3245/campus-complaint-portal/internal/models"
)

// Helper to create a disposable in-memory DB
func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := d.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestSeedCreatesAdminAndFileUsers(t *testing.T) {
	db := setupSeedDB(t)

	cfg := &config.Config{}
	cfg.Seed.AdminName = "Registrar"
	cfg.Seed.AdminEmail = "Admin@Campus.edu"
	cfg.Seed.AdminPassword = "s3cret!"
	cfg.Seed.UsersFile = writeSeedFile(t, `
users:
  - name: Dr. Rao
    email: rao@campus.edu
    password: teach-pass
    role: teacher
  - name: Priya
    email: priya@campus.edu
    password: stud-pass
    role: student
    student_id: S-1001
`)

	if err := Seed(db, cfg); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	var admin models.User
	if err := db.Where("email = ?", "admin@campus.edu").First(&admin).Error; err != nil {
		t.Fatalf("admin not seeded: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Errorf("admin role = %q, want admin", admin.Role)
	}
	if !admin.MatchPassword("s3cret!") {
		t.Error("admin password does not match seeded value")
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 3 {
		t.Errorf("user count = %d, want 3", count)
	}

	// Running again must not duplicate anything.
	if err := Seed(db, cfg); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}
	db.Model(&models.User{}).Count(&count)
	if count != 3 {
		t.Errorf("user count after reseed = %d, want 3", count)
	}
}

func TestSeedRejectsInvalidEntries(t *testing.T) {
	db := setupSeedDB(t)

	tests := []struct {
		name string
		user SeedUser
	}{
		{"missing password", SeedUser{Name: "X", Email: "x@campus.edu", Role: "teacher"}},
		{"student without id", SeedUser{Name: "Y", Email: "y@campus.edu", Password: "p", Role: "student"}},
		{"unknown role", SeedUser{Name: "Z", Email: "z@campus.edu", Password: "p", Role: "janitor"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := SeedUsers(db, []SeedUser{tt.user}); err == nil {
				t.Error("SeedUsers() error = nil, want failure")
			}
		})
	}
}

func TestLoadSeedFileErrors(t *testing.T) {
	if _, err := LoadSeedFile("does-not-exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}

	bad := writeSeedFile(t, "users: [ {name: ")
	if _, err := LoadSeedFile(bad); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
