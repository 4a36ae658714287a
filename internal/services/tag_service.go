package services

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"gorm.io/gorm"
)

// TagUpdate carries the tag fields to change; nil fields are kept
type TagUpdate struct {
	Name  *string
	Color *string
	Slug  *string
}

// TagService manages the tag catalogue. Writes are admin only.
type TagService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	CreateTag(ctx context.Context, tag *models.Tag) error
	UpdateTag(ctx context.Context, id uint, update TagUpdate) (*models.Tag, error)
	DeleteTag(ctx context.Context, id uint) error
}

type tagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) TagService {
	return &tagService{db: db}
}

func (s *tagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *tagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

func (s *tagService) CreateTag(ctx context.Context, tag *models.Tag) error {
	if err := s.checkSlugFree(ctx, tag.Slug, 0); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newValidationError("slug", "A tag with this slug already exists.")
		}
		return err
	}
	return nil
}

func (s *tagService) UpdateTag(ctx context.Context, id uint, update TagUpdate) (*models.Tag, error) {
	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Color != nil {
		updates["color"] = *update.Color
	}
	if update.Slug != nil && *update.Slug != tag.Slug {
		if err := s.checkSlugFree(ctx, *update.Slug, id); err != nil {
			return nil, err
		}
		updates["slug"] = *update.Slug
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(tag).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetTag(ctx, id)
}

func (s *tagService) DeleteTag(ctx context.Context, id uint) error {
	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(tag).Error
	})
}

func (s *tagService) checkSlugFree(ctx context.Context, slug string, exceptID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Tag{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return newValidationError("slug", "A tag with this slug already exists.")
	}
	return nil
}
