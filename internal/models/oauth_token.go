package models

import (
	"time"
)

// OAuthToken is an issued access token. Deleting the row revokes the token.
type OAuthToken struct {
	ID           uint   `gorm:"primaryKey"`
	ClientID     string `gorm:"not null"`
	UserID       *string // Nullable for client credentials *string by default will be null, string will be ""
	AccessToken  string  `gorm:"uniqueIndex;not null"`
	RefreshToken *string `gorm:"index"`
	Scopes       string
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}
