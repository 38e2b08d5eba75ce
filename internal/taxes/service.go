package taxes

import (
	"context"
	"fmt"

	"github.com/retailpulse/retailpulse-backend/pkg/db"
	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	"github.com/retailpulse/retailpulse-backend/pkg/enums"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service resolves tax policies, creating them lazily on first use.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Resolve(ctx context.Context, taxType enums.TaxType) (*models.TaxPolicy, error)
	Get(ctx context.Context, id int64) (*models.TaxPolicy, error)
}

type service struct {
	repo        Repository
	defaultRate decimal.Decimal
}

// NewService wires a tax service with the repository and the default
// rate applied when a type is resolved for the first time.
func NewService(repo Repository, defaultRate decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tax repository required")
	}
	if defaultRate.IsNegative() {
		return nil, fmt.Errorf("default tax rate cannot be negative")
	}
	return &service{repo: repo, defaultRate: defaultRate}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), defaultRate: s.defaultRate}
}

// Resolve returns the persisted policy for the type, creating one with
// the default rate when none exists. Concurrent first resolutions race
// on the insert; the unique constraint picks a winner and the loser
// re-reads, so both callers end up with the same row.
func (s *service) Resolve(ctx context.Context, taxType enums.TaxType) (*models.TaxPolicy, error) {
	if !taxType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid tax type %q", taxType))
	}

	policy, err := s.repo.FindByType(ctx, taxType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load tax policy")
	}
	if policy != nil {
		return policy, nil
	}

	policy = &models.TaxPolicy{TaxType: taxType, Rate: s.defaultRate}
	if err := s.repo.Create(ctx, policy); err != nil {
		if db.IsUniqueViolation(err) {
			existing, readErr := s.repo.FindByType(ctx, taxType)
			if readErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, readErr, "db: re-read tax policy")
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert tax policy")
	}
	return policy, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.TaxPolicy, error) {
	policy, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load tax policy")
	}
	if policy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tax policy not found")
	}
	return policy, nil
}

// Tax computes the tax amount for a subtotal under the policy, rounded
// to two decimal places half-up.
func Tax(policy *models.TaxPolicy, subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(policy.Rate).Round(2)
}
