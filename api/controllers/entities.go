package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/retailpulse/retailpulse-backend/api/responses"
	"github.com/retailpulse/retailpulse-backend/api/validators"
	entitysvc "github.com/retailpulse/retailpulse-backend/internal/entities"
	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	"github.com/retailpulse/retailpulse-backend/pkg/enums"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/retailpulse/retailpulse-backend/pkg/logger"
)

type entityResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  *string   `json:"location,omitempty"`
	Type      string    `json:"type"`
	External  bool      `json:"external"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toEntityResponse(e *models.BusinessEntity) entityResponse {
	return entityResponse{
		ID:        e.ID,
		Name:      e.Name,
		Location:  e.Location,
		Type:      e.Type.String(),
		External:  e.External,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

type createEntityRequest struct {
	Name     string  `json:"name" validate:"required"`
	Location *string `json:"location,omitempty"`
	Type     string  `json:"type" validate:"required"`
	External bool    `json:"external"`
}

func CreateEntity(svc entitysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createEntityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entityType, err := enums.ParseBusinessEntityType(strings.TrimSpace(payload.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entity type"))
			return
		}

		entity, err := svc.Create(r.Context(), entitysvc.CreateEntityInput{
			Name:     strings.TrimSpace(payload.Name),
			Location: payload.Location,
			Type:     entityType,
			External: payload.External,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toEntityResponse(entity))
	}
}

func GetEntity(svc entitysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamInt64(r, "entityID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entity, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toEntityResponse(entity))
	}
}

func ListEntities(svc entitysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeInactive, err := validators.ParseQueryBool(r, "include_inactive")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]entityResponse, 0, len(items))
		for i := range items {
			out = append(out, toEntityResponse(&items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type updateEntityRequest struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
}

func UpdateEntity(svc entitysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamInt64(r, "entityID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateEntityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entity, err := svc.Update(r.Context(), id, entitysvc.UpdateEntityInput{
			Name:     payload.Name,
			Location: payload.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toEntityResponse(entity))
	}
}

func DeleteEntity(svc entitysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamInt64(r, "entityID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SoftDelete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func RestoreEntity(svc entitysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamInt64(r, "entityID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entity, err := svc.Restore(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toEntityResponse(entity))
	}
}
