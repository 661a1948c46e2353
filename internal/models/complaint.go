package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Complaint types.
const (
	TypeStudent = "student"
	TypeTeacher = "teacher"
)

// Complaint statuses.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusRejected   = "Rejected"
)

var (
	ComplaintTypes = []string{TypeStudent, TypeTeacher}
	Statuses       = []string{StatusPending, StatusInProgress, StatusResolved, StatusRejected}
	Categories     = []string{
		"Infrastructure",
		"Hostel",
		"Cafeteria",
		"Transport",
		"Library",
		"IT",
		"Administration",
		"Faculty",
		"Academic",
	}
)

func IsComplaintType(t string) bool { return contains(ComplaintTypes, t) }
func IsStatus(s string) bool        { return contains(Statuses, s) }
func IsCategory(c string) bool      { return contains(Categories, c) }

// Complaint is a single submission. Only Status changes after creation.
type Complaint struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User   *Owner `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`

	ComplaintType string `gorm:"type:varchar(20);not null" json:"complaint_type"`
	StudentID     string `gorm:"type:varchar(64)" json:"student_id,omitempty"`
	Title         string `gorm:"not null" json:"title"`
	Category      string `gorm:"type:varchar(32);not null;index" json:"category"`
	Problem       string `gorm:"type:text;not null" json:"problem"`
	Image         string `json:"image,omitempty"` // stored upload name
	Status        string `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
}

// Owner is the slice of a user joined onto complaint listings. Column tags
// mirror User so migrations see one consistent users table.
type Owner struct {
	ID    string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Role  string `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
}

func (Owner) TableName() string {
	return "users"
}

// Validate enforces required fields, the closed enumerations and the
// student id rule. The student id is cleared for teacher complaints.
func (c *Complaint) Validate() error {
	c.Title = strings.TrimSpace(c.Title)
	c.StudentID = strings.TrimSpace(c.StudentID)

	switch {
	case c.UserID == "":
		return invalid("user", "Complaint owner is required")
	case !IsComplaintType(c.ComplaintType):
		return invalid("complaint_type", "Complaint type must be one of: "+strings.Join(ComplaintTypes, ", "))
	case c.ComplaintType == TypeStudent && c.StudentID == "":
		return invalid("student_id", "Student ID is required for student complaints")
	case c.Title == "":
		return invalid("title", "Title is required")
	case c.Category == "":
		return invalid("category", "Category is required")
	case !IsCategory(c.Category):
		return invalid("category", "Category must be one of: "+strings.Join(Categories, ", "))
	case strings.TrimSpace(c.Problem) == "":
		return invalid("problem", "Problem description is required")
	case !IsStatus(c.Status):
		return invalid("status", "Status must be one of: "+strings.Join(Statuses, ", "))
	}
	if c.ComplaintType != TypeStudent {
		c.StudentID = ""
	}
	return nil
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	return nil
}

// BeforeSave runs on create and update, after BeforeCreate has filled defaults.
func (c *Complaint) BeforeSave(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = StatusPending
	}
	return c.Validate()
}
