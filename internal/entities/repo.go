package entities

import (
	"context"
	"errors"

	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository manages persistence for business entities.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entity *models.BusinessEntity) error
	Save(ctx context.Context, entity *models.BusinessEntity) error
	FindByID(ctx context.Context, id int64) (*models.BusinessEntity, error)
	List(ctx context.Context, includeInactive bool) ([]models.BusinessEntity, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a business entity repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entity *models.BusinessEntity) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *repository) Save(ctx context.Context, entity *models.BusinessEntity) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.BusinessEntity, error) {
	var entity models.BusinessEntity
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

func (r *repository) List(ctx context.Context, includeInactive bool) ([]models.BusinessEntity, error) {
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var entities []models.BusinessEntity
	if err := q.Order("id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}
