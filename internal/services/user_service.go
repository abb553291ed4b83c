package services

import (
	"context"
	"errors"

	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles administrator account management
type UserService struct {
	userRepo repository.UserRepository
	auditSvc *AuditService
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, auditSvc *AuditService) *UserService {
	return &UserService{
		userRepo: userRepo,
		auditSvc: auditSvc,
	}
}

// CreateUserInput carries the fields for a new administrator
type CreateUserInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// Create registers a new administrator account
func (s *UserService) Create(ctx context.Context, input CreateUserInput, createdBy uint) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleStaff
	}

	user := &models.User{
		Username:          input.Username,
		Email:             input.Email,
		EncryptedPassword: string(hashed),
		Role:              role,
		Active:            true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, createdBy, "create", "administrator", user.ID, user.Username, "")
	return user, nil
}

// Get returns one administrator
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// List returns administrators matching the query
func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, query)
}

// SetActive enables or disables an administrator account
func (s *UserService) SetActive(ctx context.Context, id uint, active bool, updatedBy uint) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	user.Active = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	action := "deactivate"
	if active {
		action = "activate"
	}
	s.auditSvc.Log(ctx, updatedBy, action, "administrator", user.ID, user.Username, "")
	return nil
}
