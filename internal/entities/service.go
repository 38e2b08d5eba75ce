package entities

import (
	"context"
	"fmt"

	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	"github.com/retailpulse/retailpulse-backend/pkg/enums"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
)

// Service manages the parties stock can move between.
type Service interface {
	Create(ctx context.Context, input CreateEntityInput) (*models.BusinessEntity, error)
	Get(ctx context.Context, id int64) (*models.BusinessEntity, error)
	List(ctx context.Context, includeInactive bool) ([]models.BusinessEntity, error)
	Update(ctx context.Context, id int64, input UpdateEntityInput) (*models.BusinessEntity, error)
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) (*models.BusinessEntity, error)
}

// CreateEntityInput holds the validated payload to create an entity.
type CreateEntityInput struct {
	Name     string
	Location *string
	Type     enums.BusinessEntityType
	External bool
}

// UpdateEntityInput holds optional mutation values; nil fields keep
// the stored value. Type and the external flag are fixed at creation.
type UpdateEntityInput struct {
	Name     *string
	Location *string
}

type stockChecker interface {
	HoldsPositiveStockForEntity(ctx context.Context, businessEntityID int64) (bool, error)
}

type service struct {
	repo  Repository
	stock stockChecker
}

// NewService constructs a business entity service instance.
func NewService(repo Repository, stock stockChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("business entity repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock checker required")
	}
	return &service{repo: repo, stock: stock}, nil
}

func (s *service) Create(ctx context.Context, input CreateEntityInput) (*models.BusinessEntity, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid entity type %q", input.Type))
	}

	entity := &models.BusinessEntity{
		Name:     input.Name,
		Location: input.Location,
		Type:     input.Type,
		External: input.External,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert business entity")
	}
	return entity, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.BusinessEntity, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load business entity")
	}
	if entity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("business entity %d not found", id))
	}
	return entity, nil
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]models.BusinessEntity, error) {
	entities, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list business entities")
	}
	return entities, nil
}

// Update merges the provided fields. Inactive entities are immutable
// until restored.
func (s *service) Update(ctx context.Context, id int64, input UpdateEntityInput) (*models.BusinessEntity, error) {
	entity, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("business entity %d is inactive", id))
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		entity.Name = *input.Name
	}
	if input.Location != nil {
		entity.Location = input.Location
	}

	if err := s.repo.Save(ctx, entity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update business entity")
	}
	return entity, nil
}

// SoftDelete deactivates an entity. Refused while it holds any
// positive stock.
func (s *service) SoftDelete(ctx context.Context, id int64) error {
	entity, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !entity.IsActive {
		return nil
	}

	held, err := s.stock.HoldsPositiveStockForEntity(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check entity stock")
	}
	if held {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("business entity %d still holds stock and cannot be deleted", id))
	}

	entity.IsActive = false
	if err := s.repo.Save(ctx, entity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate business entity")
	}
	return nil
}

// Restore reactivates a soft-deleted entity.
func (s *service) Restore(ctx context.Context, id int64) (*models.BusinessEntity, error) {
	entity, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity.IsActive {
		return entity, nil
	}

	entity.IsActive = true
	if err := s.repo.Save(ctx, entity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: restore business entity")
	}
	return entity, nil
}
