package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"gorm.io/gorm"
)

// UserService manages accounts and subscriptions between them
type UserService interface {
	// CreateUser hashes the password and stores a new account
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	// ListUsers returns one page of users ordered by ID
	ListUsers(ctx context.Context, page Page) ([]models.User, int64, error)
	// Authenticate returns the user matching email and password
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	// SetPassword replaces the password after checking the current one
	SetPassword(ctx context.Context, userID uint, current, next string) error
	// Subscribe makes userID follow authorID and returns the author
	Subscribe(ctx context.Context, userID, authorID uint) (*models.User, error)
	Unsubscribe(ctx context.Context, userID, authorID uint) error
	// Subscriptions returns one page of authors followed by userID
	Subscriptions(ctx context.Context, userID uint, page Page) ([]models.User, int64, error)
	// FollowedAmong reports which of authorIDs are followed by userID
	FollowedAmong(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.TrimSpace(user.Email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = ?", strings.ToLower(user.Email)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return newValidationError("email", "A user with that email already exists.")
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return newValidationError("username", "A user with that username already exists.")
	}

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := user.HashPassword(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newValidationError("email", "A user with that email already exists.")
		}
		return err
	}
	return nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
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
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := s.db.WithContext(ctx).Order("id").Offset(page.Offset()).Limit(page.Size).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
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

func (s *userService) SetPassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return newValidationError("current_password", "Invalid password.")
	}
	if current == next {
		return newValidationError("new_password", "The new password must differ from the current one.")
	}

	user.Password = next
	if err := user.HashPassword(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Update("password", user.Password).Error
}

func (s *userService) Subscribe(ctx context.Context, userID, authorID uint) (*models.User, error) {
	author, err := s.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if userID == authorID {
		return nil, models.ErrSelfFollow
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND following_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}

	follow := &models.Follow{UserID: userID, FollowingID: authorID}
	if err := s.db.WithContext(ctx).Omit("User", "Following").Create(follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return author, nil
}

func (s *userService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	if _, err := s.GetUserByID(ctx, authorID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND following_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

func (s *userService) Subscriptions(ctx context.Context, userID uint, page Page) ([]models.User, int64, error) {
	followed := func() *gorm.DB {
		return s.db.Model(&models.Follow{}).Select("following_id").Where("user_id = ?", userID)
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id IN (?)", followed()).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err := s.db.WithContext(ctx).
		Where("id IN (?)", followed()).
		Order("id").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

func (s *userService) FollowedAmong(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	followed := make(map[uint]bool, len(authorIDs))
	if userID == 0 || len(authorIDs) == 0 {
		return followed, nil
	}

	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND following_id IN ?", userID, authorIDs).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		followed[id] = true
	}
	return followed, nil
}
