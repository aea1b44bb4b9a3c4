package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

// ClientInput describes a confidential OAuth2 client registered by an admin
type ClientInput struct {
	Name   string `json:"name" validate:"required,max=100"`
	Domain string `json:"domain" validate:"omitempty,url"`
	Scopes string `json:"scopes" validate:"max=255"`
}

type ClientService interface {
	// CreateClient registers a confidential client and returns it with its plain secret.
	// The secret is only stored hashed and cannot be recovered later.
	CreateClient(ctx context.Context, ownerID uint, in ClientInput) (*models.OAuthClient, string, error)
	// EnsurePublicClient creates the secretless first-party client when it is missing
	EnsurePublicClient(ctx context.Context, id, name string) error
	GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ctx context.Context, ownerID uint, in ClientInput) (*models.OAuthClient, string, error) {
	if err := validateInput(&in); err != nil {
		return nil, "", err
	}

	secret := uuid.New().String()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash client secret: %w", err)
	}

	client := &models.OAuthClient{
		ID:         uuid.New().String(),
		Secret:     string(hashedSecret),
		Name:       in.Name,
		Domain:     in.Domain,
		Scopes:     in.Scopes,
		GrantTypes: "password",
		UserID:     ownerID,
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, "", fmt.Errorf("create client: %w", err)
	}
	return client, secret, nil
}

func (s *clientService) EnsurePublicClient(ctx context.Context, id, name string) error {
	_, err := s.GetClientByID(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	client := &models.OAuthClient{
		ID:         id,
		Name:       name,
		GrantTypes: "password",
		Public:     true,
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil && !isUniqueViolation(err) {
		return fmt.Errorf("create public client: %w", err)
	}
	log.WithField("client_id", id).Info("Public OAuth2 client registered")
	return nil
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
