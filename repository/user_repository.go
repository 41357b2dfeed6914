package repository

import (
	"context"
	"errors"

	"github.com/Garicore01/PlayBeat-Backend/model"

	"gorm.io/gorm"
)

// ErrDuplicateUser is returned when the username or email is already taken.
var ErrDuplicateUser = errors.New("username or email already exists")

// UserRepository defines user persistence operations.
type UserRepository interface {
	// CreateUser inserts the user and its three reserved lists
	// (MyAudios, MyFavorites, MyPodcasts) in one transaction.
	CreateUser(ctx context.Context, user *model.User) (int64, error)

	// GetUserByID returns the user or nil when absent.
	GetUserByID(ctx context.Context, id int64) (*model.User, error)

	// GetUserByUsername returns the user or nil when absent.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// GetUserByEmail returns the user or nil when absent.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// GormUserRepository is the GORM implementation of UserRepository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// CreateUser inserts the user and seeds the reserved per-user lists. The
// reserved list types are singletons per user and only creatable here.
func (r *GormUserRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		reserved := []struct {
			name string
			typ  model.ListType
		}{
			{"My Audios", model.ListTypeMyAudios},
			{"My Favorites", model.ListTypeMyFavorites},
			{"My Podcasts", model.ListTypeMyPodcasts},
		}
		for _, rl := range reserved {
			list := model.List{
				Name:      rl.name,
				Type:      rl.typ,
				IsPrivate: true,
				Owners:    []model.User{*user},
			}
			if err := tx.Create(&list).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ErrDuplicateUser
		}
		return 0, err
	}
	return user.ID, nil
}

func (r *GormUserRepository) getUser(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID returns the user or nil when absent.
func (r *GormUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

// GetUserByUsername returns the user or nil when absent.
func (r *GormUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getUser(ctx, "username = ?", username)
}

// GetUserByEmail returns the user or nil when absent.
func (r *GormUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, "email = ?", email)
}
