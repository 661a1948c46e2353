package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amit-3245/campus-complaint-portal/internal/auth"
	"github.com/amit-3245/campus-complaint-portal/internal/models"
	"github.com/amit-3245/campus-complaint-portal/internal/repository"
)

type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Role      string
	StudentID string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *models.User
	Token string
}

type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// NormalizeEmail is applied on every write and lookup so addresses compare
// case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = models.RoleStudent
	}

	switch {
	case strings.TrimSpace(in.Name) == "":
		return nil, validation("name", "Name is required")
	case NormalizeEmail(in.Email) == "":
		return nil, validation("email", "Email is required")
	case in.Password == "":
		return nil, validation("password", "Password is required")
	case role == models.RoleAdmin:
		return nil, validation("role", "Admin accounts cannot be self-registered")
	case !models.IsRole(role):
		return nil, validation("role", "Role must be student or teacher")
	case role == models.RoleStudent && strings.TrimSpace(in.StudentID) == "":
		return nil, validation("student_id", "Student ID is required for student role")
	}

	email := NormalizeEmail(in.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	user := &models.User{
		Name:      in.Name,
		Email:     email,
		Role:      role,
		StudentID: in.StudentID,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			// Lost a race with a concurrent registration.
			return nil, ErrDuplicateEmail
		case errors.Is(err, ErrValidation):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	return s.issue(user)
}

// Login never says whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if !user.MatchPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Profile returns the identity already loaded by Authenticate.
func (s *AuthService) Profile(identity *models.User) (*models.User, error) {
	if identity == nil {
		return nil, ErrUserNotFound
	}
	return identity, nil
}

// Authenticate resolves a bearer token to the current user record. The
// user is loaded on every call; nothing is cached between requests.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
