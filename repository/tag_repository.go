package repository

import (
	"context"
	"errors"

	"github.com/Garicore01/PlayBeat-Backend/model"

	"gorm.io/gorm"
)

// TagRepository defines tag persistence operations.
type TagRepository interface {
	// CreateTag inserts a new tag and returns its id.
	CreateTag(ctx context.Context, tag *model.Tag) (int64, error)

	// GetTagByID returns the tag or nil when absent.
	GetTagByID(ctx context.Context, id int64) (*model.Tag, error)

	// TagExists reports whether a tag id exists.
	TagExists(ctx context.Context, id int64) (bool, error)

	// GetAudioIDsByTag returns the reverse index entries for a tag.
	GetAudioIDsByTag(ctx context.Context, tagID int64) ([]int64, error)
}

// GormTagRepository is the GORM implementation of TagRepository.
type GormTagRepository struct {
	db *gorm.DB
}

// NewGormTagRepository creates a new GORM tag repository.
func NewGormTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

// CreateTag inserts a new tag and returns its id.
func (r *GormTagRepository) CreateTag(ctx context.Context, tag *model.Tag) (int64, error) {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return 0, err
	}
	return tag.ID, nil
}

// GetTagByID returns the tag or nil when absent.
func (r *GormTagRepository) GetTagByID(ctx context.Context, id int64) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).First(&tag, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// TagExists reports whether a tag id exists.
func (r *GormTagRepository) TagExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Tag{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetAudioIDsByTag returns the reverse index entries for a tag.
func (r *GormTagRepository) GetAudioIDsByTag(ctx context.Context, tagID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.TagLink{}).
		Where("tag_id = ?", tagID).
		Pluck("audio_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
