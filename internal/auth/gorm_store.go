package auth

import (
	"context"
	"errors"

	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	oauth2models "github.com/go-oauth2/oauth2/v4/models"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

type GormClientStore struct {
	db *gorm.DB
}

func NewGormClientStore(db *gorm.DB) *GormClientStore {
	return &GormClientStore{db: db}
}

// GetByID returns the stored client, which also implements
// oauth2.ClientPasswordVerifier for its bcrypt hashed secret
func (s *GormClientStore) GetByID(ctx context.Context, id string) (oauth2.ClientInfo, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, oauth2errors.ErrInvalidClient
		}
		return nil, err
	}
	return &client, nil
}

// GormTokenStore persists issued access tokens. Only the password grant is
// enabled, so authorization codes are never stored.
type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *GormTokenStore) Create(ctx context.Context, info oauth2.TokenInfo) error {
	createdAt := info.GetAccessCreateAt()
	token := &models.OAuthToken{
		ClientID:     info.GetClientID(),
		UserID:       optional(info.GetUserID()),
		AccessToken:  info.GetAccess(),
		RefreshToken: optional(info.GetRefresh()),
		Scopes:       info.GetScope(),
		ExpiresAt:    createdAt.Add(info.GetAccessExpiresIn()),
		CreatedAt:    createdAt,
	}
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *GormTokenStore) RemoveByAccess(ctx context.Context, access string) error {
	return s.db.WithContext(ctx).Where("access_token = ?", access).Delete(&models.OAuthToken{}).Error
}

func (s *GormTokenStore) RemoveByRefresh(ctx context.Context, refresh string) error {
	return s.db.WithContext(ctx).Where("refresh_token = ?", refresh).Delete(&models.OAuthToken{}).Error
}

// GetByAccess returns nil for unknown tokens, which the manager reports as invalid_token
func (s *GormTokenStore) GetByAccess(ctx context.Context, access string) (oauth2.TokenInfo, error) {
	return s.find(ctx, "access_token = ?", access)
}

func (s *GormTokenStore) GetByRefresh(ctx context.Context, refresh string) (oauth2.TokenInfo, error) {
	return s.find(ctx, "refresh_token = ?", refresh)
}

func (s *GormTokenStore) GetByCode(ctx context.Context, code string) (oauth2.TokenInfo, error) {
	return nil, nil
}

func (s *GormTokenStore) RemoveByCode(ctx context.Context, code string) error {
	return nil
}

func (s *GormTokenStore) find(ctx context.Context, query string, value string) (oauth2.TokenInfo, error) {
	var token models.OAuthToken
	if err := s.db.WithContext(ctx).Where(query, value).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	info := &oauth2models.Token{
		ClientID:        token.ClientID,
		Access:          token.AccessToken,
		AccessCreateAt:  token.CreatedAt,
		AccessExpiresIn: token.ExpiresAt.Sub(token.CreatedAt),
		Scope:           token.Scopes,
	}
	if token.UserID != nil {
		info.UserID = *token.UserID
	}
	if token.RefreshToken != nil {
		info.Refresh = *token.RefreshToken
	}
	return info, nil
}
