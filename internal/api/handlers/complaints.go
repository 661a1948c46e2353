package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amit-3245/campus-complaint-portal/internal/api/middleware"
	"github.com/amit-3245/campus-complaint-portal/internal/models"
	"github.com/amit-3245/campus-complaint-portal/internal/service"
)

// Multipart text fields accepted on create, each with its alias.
var complaintFormFields = map[string]string{
	"complaintType":  "complaint_type",
	"complaint_type": "complaint_type",
	"studentId":      "student_id",
	"student_id":     "student_id",
	"title":          "title",
	"category":       "category",
	"problem":        "problem",
}

const imageField = "image"

type ComplaintHandler struct {
	complaints *service.ComplaintService
	maxMemory  int64
}

func NewComplaintHandler(complaints *service.ComplaintService, maxMemory int64) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints, maxMemory: maxMemory}
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateComplaint accepts a multipart form with the complaint fields and at
// most one image.
func (h *ComplaintHandler) CreateComplaint(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(h.maxMemory); err != nil {
		respondError(c, models.NewValidationError("body", "Request must be multipart/form-data"))
		return
	}
	form := c.Request.MultipartForm
	defer form.RemoveAll()

	fields, err := readComplaintForm(form)
	if err != nil {
		respondError(c, err)
		return
	}

	in := service.CreateInput{
		ComplaintType: fields["complaint_type"],
		StudentID:     fields["student_id"],
		Title:         fields["title"],
		Category:      fields["category"],
		Problem:       fields["problem"],
	}

	if files := form.File[imageField]; len(files) == 1 {
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			respondError(c, fmt.Errorf("open upload: %w", err))
			return
		}
		defer f.Close()
		in.Image = &service.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		}
	}

	complaint, err := h.complaints.Create(c.Request.Context(), middleware.Identity(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

// readComplaintForm rejects unknown parts, repeated values and extra files.
func readComplaintForm(form *multipart.Form) (map[string]string, error) {
	fields := make(map[string]string, len(form.Value))
	for name, values := range form.Value {
		canonical, ok := complaintFormFields[name]
		if !ok {
			return nil, models.NewValidationError(name, "Unknown field: "+name)
		}
		if len(values) != 1 {
			return nil, models.NewValidationError(canonical, "Field "+name+" must be sent once")
		}
		if _, dup := fields[canonical]; dup {
			return nil, models.NewValidationError(canonical, "Field "+canonical+" was sent under two names")
		}
		fields[canonical] = values[0]
	}

	for name, files := range form.File {
		if name != imageField {
			return nil, models.NewValidationError(name, "Unexpected file field: "+name)
		}
		if len(files) > 1 {
			return nil, models.NewValidationError(imageField, "Only one image may be attached")
		}
	}
	return fields, nil
}

func (h *ComplaintHandler) ListAll(c *gin.Context) {
	list, err := h.complaints.ListAll(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ComplaintHandler) ListMine(c *gin.Context) {
	list, err := h.complaints.ListMine(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	complaint, err := h.complaints.UpdateStatus(c.Request.Context(), middleware.Identity(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

func (h *ComplaintHandler) Delete(c *gin.Context) {
	err := h.complaints.Delete(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if errors.Is(err, service.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this complaint"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Complaint deleted successfully"})
}

func (h *ComplaintHandler) Summary(c *gin.Context) {
	sum, err := h.complaints.Summary(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
