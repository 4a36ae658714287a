package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OAuthClient is an application allowed to request tokens on behalf of users.
// Public clients (the bundled web frontend) carry no secret.
type OAuthClient struct {
	ID         string `gorm:"primaryKey"`
	Secret     string
	Name       string `gorm:"not null"`
	Domain     string
	Public     bool
	GrantTypes string // Space-separated list, e.g. "password"
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

func (c *OAuthClient) GetID() string {
	return c.ID
}

func (c *OAuthClient) GetSecret() string {
	return c.Secret
}

func (c *OAuthClient) GetDomain() string {
	return c.Domain
}

func (c *OAuthClient) IsPublic() bool {
	return c.Public
}

// GetUserID is empty: clients are not bound to a user, tokens are.
func (c *OAuthClient) GetUserID() string {
	return ""
}

// VerifyPassword compares a client secret against the stored bcrypt hash
func (c *OAuthClient) VerifyPassword(secret string) bool {
	if c.Public {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
