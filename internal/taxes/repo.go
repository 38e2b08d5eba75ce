package taxes

import (
	"context"
	"errors"

	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	"github.com/retailpulse/retailpulse-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository manages persistence for tax policies.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByType(ctx context.Context, taxType enums.TaxType) (*models.TaxPolicy, error)
	FindByID(ctx context.Context, id int64) (*models.TaxPolicy, error)
	Create(ctx context.Context, policy *models.TaxPolicy) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a tax policy repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByType(ctx context.Context, taxType enums.TaxType) (*models.TaxPolicy, error) {
	var policy models.TaxPolicy
	if err := r.db.WithContext(ctx).
		Where("tax_type = ?", taxType).
		First(&policy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.TaxPolicy, error) {
	var policy models.TaxPolicy
	if err := r.db.WithContext(ctx).First(&policy, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (r *repository) Create(ctx context.Context, policy *models.TaxPolicy) error {
	return r.db.WithContext(ctx).Create(policy).Error
}
