package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/amit-3245/campus-complaint-portal/internal/models"
	"github.com/amit-3245/campus-complaint-portal/internal/repository"
)

// Uploads is the slice of storage.Client the complaint service needs.
type Uploads interface {
	Store(originalName string, body io.ReadSeeker, contentType string) (string, error)
	Remove(name string) error
}

// Attachment is an image sent along with a new complaint.
type Attachment struct {
	Filename    string
	ContentType string
	Body        io.ReadSeeker
}

type CreateInput struct {
	ComplaintType string
	StudentID     string
	Title         string
	Category      string
	Problem       string
	Image         *Attachment
}

// Summary backs the admin dashboard counters.
type Summary struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

type ComplaintService struct {
	complaints repository.ComplaintRepository
	uploads    Uploads
}

func NewComplaintService(complaints repository.ComplaintRepository, uploads Uploads) *ComplaintService {
	return &ComplaintService{complaints: complaints, uploads: uploads}
}

// Create validates the input, stores the optional image and then inserts
// the record. If the insert fails the image is removed again so no stored
// file is left without a complaint pointing at it.
func (s *ComplaintService) Create(ctx context.Context, identity *models.User, in CreateInput) (*models.Complaint, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}

	c := &models.Complaint{
		UserID:        identity.ID,
		ComplaintType: strings.TrimSpace(in.ComplaintType),
		StudentID:     in.StudentID,
		Title:         in.Title,
		Category:      strings.TrimSpace(in.Category),
		Problem:       in.Problem,
		Status:        models.StatusPending,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if in.Image != nil {
		if s.uploads == nil {
			return nil, fmt.Errorf("%w: uploads are not configured", ErrStorage)
		}
		name, err := s.uploads.Store(in.Image.Filename, in.Image.Body, in.Image.ContentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		c.Image = name
	}

	if err := s.complaints.Create(ctx, c); err != nil {
		if c.Image != "" {
			s.compensate(c.Image)
		}
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	c.User = &models.Owner{ID: identity.ID, Name: identity.Name, Email: identity.Email, Role: identity.Role}
	complaintsCreated.WithLabelValues(c.Category).Inc()
	return c, nil
}

func (s *ComplaintService) compensate(name string) {
	if err := s.uploads.Remove(name); err != nil {
		slog.Error("failed to remove orphaned upload", "file", name, "error", err)
		return
	}
	uploadsCompensated.Inc()
}

// ListAll returns every complaint with its owner joined in. Admin only.
func (s *ComplaintService) ListAll(ctx context.Context, identity *models.User) ([]models.Complaint, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	list, err := s.complaints.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return list, nil
}

// ListMine returns the caller's complaints in store order.
func (s *ComplaintService) ListMine(ctx context.Context, identity *models.User) ([]models.Complaint, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}
	list, err := s.complaints.FindByOwner(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return list, nil
}

// UpdateStatus overwrites the status of one complaint. Admin only; the
// last writer wins.
func (s *ComplaintService) UpdateStatus(ctx context.Context, identity *models.User, id, status string) (*models.Complaint, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	status = strings.TrimSpace(status)
	if status == "" {
		return nil, validation("status", "Status is required")
	}
	if !models.IsStatus(status) {
		return nil, validation("status", "Status must be one of: "+strings.Join(models.Statuses, ", "))
	}

	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.complaints.UpdateStatus(ctx, c, status); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, ErrValidation):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	statusUpdates.WithLabelValues(status).Inc()
	return c, nil
}

// Delete permanently removes a complaint. Only the owner may delete,
// admins included. The attached image is kept.
func (s *ComplaintService) Delete(ctx context.Context, identity *models.User, id string) error {
	if identity == nil {
		return ErrUnauthorized
	}

	c, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != identity.ID {
		return ErrForbidden
	}

	if err := s.complaints.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	complaintsDeleted.Inc()
	return nil
}

// Summary tallies complaints per status. Admin only.
func (s *ComplaintService) Summary(ctx context.Context, identity *models.User) (*Summary, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	counts, err := s.complaints.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	sum := &Summary{ByStatus: counts}
	for _, n := range counts {
		sum.Total += n
	}
	return sum, nil
}

func (s *ComplaintService) find(ctx context.Context, id string) (*models.Complaint, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	c, err := s.complaints.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return c, nil
}

func requireAdmin(identity *models.User) error {
	if identity == nil {
		return ErrUnauthorized
	}
	if !identity.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
