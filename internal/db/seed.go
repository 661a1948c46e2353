package database

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amit-3245/campus-complaint-portal/internal/config"
	"github.com/amit-3245/campus-complaint-portal/internal/models"
)

// SeedUser is one entry of the staff seed file.
type SeedUser struct {
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
	StudentID string `yaml:"student_id"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// Seed creates the configured admin account and any users listed in the
// seed file. Registration refuses the admin role, so this is the only way
// admin accounts come into existence.
func Seed(db *gorm.DB, cfg *config.Config) error {
	var users []SeedUser
	if cfg.Seed.AdminEmail != "" {
		users = append(users, SeedUser{
			Name:     cfg.Seed.AdminName,
			Email:    cfg.Seed.AdminEmail,
			Password: cfg.Seed.AdminPassword,
			Role:     models.RoleAdmin,
		})
	}

	if cfg.Seed.UsersFile != "" {
		fromFile, err := LoadSeedFile(cfg.Seed.UsersFile)
		if err != nil {
			return err
		}
		users = append(users, fromFile...)
	}

	if len(users) == 0 {
		return nil
	}
	log.Printf("🌱 Seeding %d Users...", len(users))
	return SeedUsers(db, users)
}

// LoadSeedFile parses a YAML file with a top-level `users:` list.
func LoadSeedFile(path string) ([]SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return f.Users, nil
}

// SeedUsers inserts each user unless one with the same email exists.
func SeedUsers(db *gorm.DB, users []SeedUser) error {
	for _, su := range users {
		if su.Password == "" {
			return fmt.Errorf("seed user %s: password is required", su.Email)
		}
		u := models.User{
			Name:      su.Name,
			Email:     strings.ToLower(strings.TrimSpace(su.Email)),
			Role:      su.Role,
			StudentID: su.StudentID,
		}
		if err := u.SetPassword(su.Password); err != nil {
			return fmt.Errorf("seed user %s: %w", su.Email, err)
		}

		// UPSERT based on 'email' to prevent duplicates on restart
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true, // If it exists, leave it alone.
		}).Create(&u).Error
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.Email, err)
		}
	}
	return nil
}
