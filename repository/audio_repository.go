package repository

import (
	"context"
	"errors"

	"github.com/Garicore01/PlayBeat-Backend/model"

	"gorm.io/gorm"
)

// AudioRepository defines audio persistence operations.
type AudioRepository interface {
	// CreateAudio inserts a new audio and returns its id.
	CreateAudio(ctx context.Context, audio *model.Audio) (int64, error)

	// GetAudioByID returns the audio with its artist set preloaded, or nil
	// when absent.
	GetAudioByID(ctx context.Context, id int64) (*model.Audio, error)

	// GetAudioWithTags returns the audio with artists and both tag
	// collections preloaded, or nil when absent.
	GetAudioWithTags(ctx context.Context, id int64) (*model.Audio, error)

	// UpdateAudio applies a partial update. Unset patch fields are left
	// untouched.
	UpdateAudio(ctx context.Context, id int64, patch *model.AudioPatch) error

	// DeleteAudio removes the audio and its relationship rows.
	DeleteAudio(ctx context.Context, id int64) error

	// GetAudiosByArtist returns all audios a user is an artist of.
	GetAudiosByArtist(ctx context.Context, userID int64) ([]*model.Audio, error)
}

// GormAudioRepository is the GORM implementation of AudioRepository.
type GormAudioRepository struct {
	db *gorm.DB
}

// NewGormAudioRepository creates a new GORM audio repository.
func NewGormAudioRepository(db *gorm.DB) *GormAudioRepository {
	return &GormAudioRepository{db: db}
}

// CreateAudio inserts a new audio and returns its id.
func (r *GormAudioRepository) CreateAudio(ctx context.Context, audio *model.Audio) (int64, error) {
	if err := r.db.WithContext(ctx).Create(audio).Error; err != nil {
		return 0, err
	}
	return audio.ID, nil
}

// GetAudioByID returns the audio with its artist set preloaded, or nil when absent.
func (r *GormAudioRepository) GetAudioByID(ctx context.Context, id int64) (*model.Audio, error) {
	var audio model.Audio
	err := r.db.WithContext(ctx).Preload("Artists").First(&audio, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &audio, nil
}

// GetAudioWithTags returns the audio with artists and both tag collections
// preloaded, or nil when absent.
func (r *GormAudioRepository) GetAudioWithTags(ctx context.Context, id int64) (*model.Audio, error) {
	var audio model.Audio
	err := r.db.WithContext(ctx).
		Preload("Artists").
		Preload("SongTags").
		Preload("PodcastTags").
		First(&audio, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &audio, nil
}

// UpdateAudio applies a partial update. Unset patch fields are left untouched.
func (r *GormAudioRepository) UpdateAudio(ctx context.Context, id int64, patch *model.AudioPatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Audio{ID: id}).Updates(fields).Error
}

// DeleteAudio removes the audio and its relationship rows in one transaction.
func (r *GormAudioRepository) DeleteAudio(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		audio := model.Audio{ID: id}
		for _, assoc := range []string{"Artists", "SongTags", "PodcastTags"} {
			if err := tx.Model(&audio).Association(assoc).Clear(); err != nil {
				return err
			}
		}
		if err := tx.Where("audio_id = ?", id).Delete(&model.TagLink{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM list_audios WHERE audio_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Audio{}, id).Error
	})
}

// GetAudiosByArtist returns all audios a user is an artist of.
func (r *GormAudioRepository) GetAudiosByArtist(ctx context.Context, userID int64) ([]*model.Audio, error) {
	var audios []*model.Audio
	err := r.db.WithContext(ctx).
		Joins("JOIN audio_artists ON audio_artists.audio_id = audios.id").
		Where("audio_artists.user_id = ?", userID).
		Order("audios.created_at DESC").
		Find(&audios).Error
	if err != nil {
		return nil, err
	}
	return audios, nil
}
