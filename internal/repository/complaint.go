package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amit-3245/campus-complaint-portal/internal/models"
)

// ComplaintRepository defines the interface for complaint data operations.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	FindAll(ctx context.Context) ([]models.Complaint, error)
	FindByOwner(ctx context.Context, userID string) ([]models.Complaint, error)
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	UpdateStatus(ctx context.Context, complaint *models.Complaint, status string) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type complaintRepository struct {
	db *gorm.DB
}

// NewComplaintRepository creates a new ComplaintRepository instance.
func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

// withOwner joins the owner's public fields, never the password hash.
func withOwner(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "email", "role")
	})
}

func (r *complaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(complaint).Error
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", translate(err))
	}
	return nil
}

func (r *complaintRepository) FindAll(ctx context.Context) ([]models.Complaint, error) {
	var complaints []models.Complaint
	if err := withOwner(r.db.WithContext(ctx)).Find(&complaints).Error; err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

// FindByOwner returns complaints in whatever order the store yields them.
func (r *complaintRepository) FindByOwner(ctx context.Context, userID string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := withOwner(r.db.WithContext(ctx)).Where("user_id = ?", userID).Find(&complaints).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints for user %s: %w", userID, err)
	}
	return complaints, nil
}

func (r *complaintRepository) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := withOwner(r.db.WithContext(ctx)).Where("id = ?", id).First(&complaint).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find complaint %s: %w", id, translate(err))
	}
	return &complaint, nil
}

// UpdateStatus writes only the status column of an existing row. A row
// removed since it was loaded yields ErrNotFound rather than being recreated.
func (r *complaintRepository) UpdateStatus(ctx context.Context, complaint *models.Complaint, status string) error {
	complaint.Status = status
	result := r.db.WithContext(ctx).
		Model(complaint).
		Omit(clause.Associations).
		Select("Status", "UpdatedAt").
		Updates(complaint)
	if result.Error != nil {
		return fmt.Errorf("failed to update complaint %s: %w", complaint.ID, translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update complaint %s: %w", complaint.ID, ErrNotFound)
	}
	return nil
}

func (r *complaintRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Complaint{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete complaint %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete complaint %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *complaintRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Complaint{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count complaints: %w", err)
	}

	counts := make(map[string]int64, len(models.Statuses))
	for _, s := range models.Statuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
