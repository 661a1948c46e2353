package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/amit-3245/campus-complaint-portal/internal/models"
	"github.com/amit-3245/campus-complaint-portal/internal/service"
)

func init() {
	// Request bodies are strict: unknown JSON fields are a 400.
	binding.EnableDecoderDisallowUnknownFields = true
}

// respondError maps a service failure onto a status code and a message.
// Unknown failures are logged and reported generically.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized, token failed"})
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindJSON decodes a strict JSON body and turns binding failures into
// validation errors.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := jsonName(fe.Field())
		switch fe.Tag() {
		case "required":
			return models.NewValidationError(field, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			return models.NewValidationError(field, "Email must be a valid address")
		default:
			return models.NewValidationError(field, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return models.NewValidationError(typeErr.Field, fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type))
	}
	return models.NewValidationError("body", "Invalid request body: "+err.Error())
}

func jsonName(field string) string {
	if field == "StudentID" {
		return "student_id"
	}
	return strings.ToLower(field)
}
