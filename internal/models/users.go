package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Roles a user account can hold.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

var Roles = []string{RoleStudent, RoleTeacher, RoleAdmin}

// User is a registered account. Users are created once and never edited.
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	StudentID    string    `gorm:"type:varchar(64)" json:"student_id,omitempty"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Hidden from JSON
	Role         string    `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func IsRole(role string) bool {
	return contains(Roles, role)
}

// SetPassword stores a bcrypt hash of plain. The plaintext is never kept.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// MatchPassword reports whether plain hashes to the stored password.
func (u *User) MatchPassword(plain string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate checks required fields and the student id rule.
func (u *User) Validate() error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	u.StudentID = strings.TrimSpace(u.StudentID)

	switch {
	case u.Name == "":
		return invalid("name", "Name is required")
	case u.Email == "":
		return invalid("email", "Email is required")
	case !IsRole(u.Role):
		return invalid("role", "Role must be one of: "+strings.Join(Roles, ", "))
	case u.Role == RoleStudent && u.StudentID == "":
		return invalid("student_id", "Student ID is required for student role")
	}
	if u.Role != RoleStudent {
		u.StudentID = ""
	}
	return nil
}

// BeforeCreate assigns a UUID when none is set and validates the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return u.Validate()
}
