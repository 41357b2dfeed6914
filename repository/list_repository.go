package repository

import (
	"context"
	"errors"

	"github.com/Garicore01/PlayBeat-Backend/model"

	"gorm.io/gorm"
)

// ListRepository defines list persistence operations.
type ListRepository interface {
	// CreateList inserts a new list and returns its id.
	CreateList(ctx context.Context, list *model.List) (int64, error)

	// GetListByID returns the list with owners and collaborators preloaded,
	// or nil when absent.
	GetListByID(ctx context.Context, id int64) (*model.List, error)

	// GetListFull returns the list with all associations preloaded, or nil
	// when absent.
	GetListFull(ctx context.Context, id int64) (*model.List, error)

	// UpdateList applies a partial update. Unset patch fields are left
	// untouched.
	UpdateList(ctx context.Context, id int64, patch *model.ListPatch) error

	// DeleteList removes the list and its relationship rows.
	DeleteList(ctx context.Context, id int64) error

	// GetListAudios returns the member audios of a list.
	GetListAudios(ctx context.Context, id int64) ([]*model.Audio, error)

	// GetListOwners returns the owners of a list.
	GetListOwners(ctx context.Context, id int64) ([]*model.User, error)

	// GetListFollowers returns the followers of a list.
	GetListFollowers(ctx context.Context, id int64) ([]*model.User, error)

	// GetListsByOwner returns all lists a user owns.
	GetListsByOwner(ctx context.Context, userID int64) ([]*model.List, error)

	// GetFollowedLists returns all lists a user follows.
	GetFollowedLists(ctx context.Context, userID int64) ([]*model.List, error)
}

// GormListRepository is the GORM implementation of ListRepository.
type GormListRepository struct {
	db *gorm.DB
}

// NewGormListRepository creates a new GORM list repository.
func NewGormListRepository(db *gorm.DB) *GormListRepository {
	return &GormListRepository{db: db}
}

// CreateList inserts a new list and returns its id.
func (r *GormListRepository) CreateList(ctx context.Context, list *model.List) (int64, error) {
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return 0, err
	}
	return list.ID, nil
}

// GetListByID returns the list with owners and collaborators preloaded, or
// nil when absent.
func (r *GormListRepository) GetListByID(ctx context.Context, id int64) (*model.List, error) {
	var list model.List
	err := r.db.WithContext(ctx).
		Preload("Owners").
		Preload("Collaborators").
		First(&list, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &list, nil
}

// GetListFull returns the list with all associations preloaded, or nil when absent.
func (r *GormListRepository) GetListFull(ctx context.Context, id int64) (*model.List, error) {
	var list model.List
	err := r.db.WithContext(ctx).
		Preload("Owners").
		Preload("Collaborators").
		Preload("Followers").
		Preload("Audios").
		First(&list, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &list, nil
}

// UpdateList applies a partial update. Unset patch fields are left untouched.
func (r *GormListRepository) UpdateList(ctx context.Context, id int64, patch *model.ListPatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.List{ID: id}).Updates(fields).Error
}

// DeleteList removes the list and its relationship rows in one transaction.
func (r *GormListRepository) DeleteList(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list := model.List{ID: id}
		for _, assoc := range []string{"Owners", "Collaborators", "Followers", "Audios"} {
			if err := tx.Model(&list).Association(assoc).Clear(); err != nil {
				return err
			}
		}
		return tx.Delete(&model.List{}, id).Error
	})
}

// GetListAudios returns the member audios of a list.
func (r *GormListRepository) GetListAudios(ctx context.Context, id int64) ([]*model.Audio, error) {
	var audios []*model.Audio
	err := r.db.WithContext(ctx).
		Joins("JOIN list_audios ON list_audios.audio_id = audios.id").
		Where("list_audios.list_id = ?", id).
		Find(&audios).Error
	if err != nil {
		return nil, err
	}
	return audios, nil
}

func (r *GormListRepository) listUsers(ctx context.Context, joinTable string, id int64) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN "+joinTable+" ON "+joinTable+".user_id = users.id").
		Where(joinTable+".list_id = ?", id).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetListOwners returns the owners of a list.
func (r *GormListRepository) GetListOwners(ctx context.Context, id int64) ([]*model.User, error) {
	return r.listUsers(ctx, "list_owners", id)
}

// GetListFollowers returns the followers of a list.
func (r *GormListRepository) GetListFollowers(ctx context.Context, id int64) ([]*model.User, error) {
	return r.listUsers(ctx, "list_followers", id)
}

func (r *GormListRepository) listsVia(ctx context.Context, joinTable string, userID int64) ([]*model.List, error) {
	var lists []*model.List
	err := r.db.WithContext(ctx).
		Joins("JOIN "+joinTable+" ON "+joinTable+".list_id = lists.id").
		Where(joinTable+".user_id = ?", userID).
		Order("lists.created_at DESC").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// GetListsByOwner returns all lists a user owns.
func (r *GormListRepository) GetListsByOwner(ctx context.Context, userID int64) ([]*model.List, error) {
	return r.listsVia(ctx, "list_owners", userID)
}

// GetFollowedLists returns all lists a user follows.
func (r *GormListRepository) GetFollowedLists(ctx context.Context, userID int64) ([]*model.List, error) {
	return r.listsVia(ctx, "list_followers", userID)
}
