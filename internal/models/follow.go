package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrSelfFollow is returned when a user tries to subscribe to themselves
var ErrSelfFollow = errors.New("users cannot follow themselves")

// Follow is a directed subscription from User to Following.
type Follow struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"not null;uniqueIndex:idx_follow_user_following;check:chk_follow_not_self,user_id <> following_id"`
	User        User `gorm:"constraint:OnDelete:CASCADE"`
	FollowingID uint `gorm:"not null;uniqueIndex:idx_follow_user_following;index"`
	Following   User `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.UserID == f.FollowingID {
		return ErrSelfFollow
	}
	return nil
}
