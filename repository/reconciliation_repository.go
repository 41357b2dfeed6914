package repository

import (
	"context"
	"time"

	"github.com/Garicore01/PlayBeat-Backend/model"

	"gorm.io/gorm"
)

// ReconciliationRepository records failed object-storage side effects so a
// later pass can replay them.
type ReconciliationRepository interface {
	// Add records a pending reconciliation entry.
	Add(ctx context.Context, rec *model.Reconciliation) error

	// Pending returns unresolved entries, oldest first.
	Pending(ctx context.Context) ([]*model.Reconciliation, error)

	// Resolve marks an entry as replayed.
	Resolve(ctx context.Context, id int64) error
}

// GormReconciliationRepository is the GORM implementation of
// ReconciliationRepository.
type GormReconciliationRepository struct {
	db *gorm.DB
}

// NewGormReconciliationRepository creates a new GORM reconciliation repository.
func NewGormReconciliationRepository(db *gorm.DB) *GormReconciliationRepository {
	return &GormReconciliationRepository{db: db}
}

// Add records a pending reconciliation entry.
func (r *GormReconciliationRepository) Add(ctx context.Context, rec *model.Reconciliation) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// Pending returns unresolved entries, oldest first.
func (r *GormReconciliationRepository) Pending(ctx context.Context) ([]*model.Reconciliation, error) {
	var recs []*model.Reconciliation
	err := r.db.WithContext(ctx).
		Where("resolved_at IS NULL").
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Resolve marks an entry as replayed.
func (r *GormReconciliationRepository) Resolve(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.Reconciliation{}).
		Where("id = ?", id).
		Update("resolved_at", &now).Error
}
