package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amit-3245/campus-complaint-portal/internal/api/middleware"
	"github.com/amit-3245/campus-complaint-portal/internal/models"
	"github.com/amit-3245/campus-complaint-portal/internal/service"
)

// AuthHandler serves registration, login and the caller's profile.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type RegisterRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role"`
	StudentID string `json:"studentId"`
	// Alias accepted for clients that send snake_case.
	StudentIDAlias string `json:"student_id"`
}

// studentID resolves the two spellings, refusing a body that sends both.
func (r RegisterRequest) studentID() (string, error) {
	if r.StudentID != "" && r.StudentIDAlias != "" {
		return "", models.NewValidationError("student_id", "Field student_id was sent under two names")
	}
	if r.StudentID != "" {
		return r.StudentID, nil
	}
	return r.StudentIDAlias, nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the user record with the issued token alongside.
type AuthResponse struct {
	*models.User
	Token string `json:"token"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	studentID, err := req.studentID()
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		StudentID: studentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{User: res.User, Token: res.Token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: res.User, Token: res.Token})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.auth.Profile(middleware.Identity(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}
