package models

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OAuthClient is an application allowed to request tokens from the token endpoint.
// Public clients (the first-party web frontend) have no secret.
type OAuthClient struct {
	ID         string `gorm:"primaryKey"`
	Secret     string // bcrypt hash, empty for public clients
	Name       string
	Domain     string
	UserID     uint   // Owner, for admin management
	Scopes     string // Space-separated list of allowed scopes
	GrantTypes string // Space-separated list, e.g. "password"
	Public     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

func (c *OAuthClient) GetID() string     { return c.ID }
func (c *OAuthClient) GetSecret() string { return c.Secret }
func (c *OAuthClient) GetDomain() string { return c.Domain }
func (c *OAuthClient) IsPublic() bool    { return c.Public }

func (c *OAuthClient) GetUserID() string {
	if c.UserID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(c.UserID), 10)
}

// VerifyPassword checks a presented client secret against the stored bcrypt hash
func (c *OAuthClient) VerifyPassword(secret string) bool {
	if c.Secret == "" {
		return secret == ""
	}
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
