package models

import (
	"time"
)

// OAuthToken is an issued access token. Deleting the row revokes it.
type OAuthToken struct {
	ID          uint   `gorm:"primaryKey"`
	ClientID    string `gorm:"not null"`
	UserID      string `gorm:"index"`
	AccessToken string `gorm:"uniqueIndex;size:512;not null"`
	Scopes      string
	ExpiresAt   time.Time `gorm:"not null"`
	CreatedAt   time.Time
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}
