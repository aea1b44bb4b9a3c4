package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

// SignupInput is the body of a user registration
type SignupInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// PasswordChange is the body of a password change
type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

type UserService interface {
	// Register validates a signup and creates a regular user
	Register(ctx context.Context, in SignupInput) (*models.User, error)
	// CreateUser hashes the plain text password on user and stores it
	CreateUser(ctx context.Context, user *models.User) error
	// Authenticate returns the user owning the email and password
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context, page Page) ([]models.User, int64, error)
	SetPassword(ctx context.Context, userID uint, in PasswordChange) error
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) Register(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  in.Password,
		Role:      models.RoleUser,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) CreateUser(ctx context.Context, user *models.User) error {
	db := s.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", user.Email).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return ErrEmailTaken
	}
	if err := db.Model(&models.User{}).Where("username = ?", user.Username).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return ErrUsernameTaken
	}

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := user.HashPassword(); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	log.WithField("user_id", user.ID).Info("User registered")
	return nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email)).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *userService) ListUsers(ctx context.Context, page Page) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := db.Order("id").Scopes(page.scope).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *userService) SetPassword(ctx context.Context, userID uint, in PasswordChange) error {
	if err := validateInput(&in); err != nil {
		return err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(in.CurrentPassword) {
		verr := &ValidationError{}
		verr.Add("current_password", "current password is incorrect")
		return verr
	}

	user.Password = in.NewPassword
	if err := user.HashPassword(); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(user).Update("password", user.Password).Error
}
