package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/retailpulse/retailpulse-backend/api/responses"
	"github.com/retailpulse/retailpulse-backend/api/validators"
	productsvc "github.com/retailpulse/retailpulse-backend/internal/products"
	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/retailpulse/retailpulse-backend/pkg/logger"
)

type productResponse struct {
	ID          int64     `json:"id"`
	SKU         string    `json:"sku"`
	Description string    `json:"description"`
	Category    *string   `json:"category,omitempty"`
	Subcategory *string   `json:"subcategory,omitempty"`
	Brand       *string   `json:"brand,omitempty"`
	Origin      *string   `json:"origin,omitempty"`
	UOM         *string   `json:"uom,omitempty"`
	VendorCode  *string   `json:"vendor_code,omitempty"`
	Barcode     *string   `json:"barcode,omitempty"`
	RRP         string    `json:"rrp"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProductResponse(p *models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Description: p.Description,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Brand:       p.Brand,
		Origin:      p.Origin,
		UOM:         p.UOM,
		VendorCode:  p.VendorCode,
		Barcode:     p.Barcode,
		RRP:         p.RRP.StringFixed(2),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type createProductRequest struct {
	Description string  `json:"description" validate:"required"`
	Category    *string `json:"category,omitempty"`
	Subcategory *string `json:"subcategory,omitempty"`
	Brand       *string `json:"brand,omitempty"`
	Origin      *string `json:"origin,omitempty"`
	UOM         *string `json:"uom,omitempty"`
	VendorCode  *string `json:"vendor_code,omitempty"`
	Barcode     *string `json:"barcode,omitempty"`
	RRP         *string `json:"rrp,omitempty"`
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rrp := decimal.Zero
		if payload.RRP != nil {
			parsed, err := decimal.NewFromString(strings.TrimSpace(*payload.RRP))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rrp"))
				return
			}
			rrp = parsed
		}

		product, err := svc.Create(r.Context(), productsvc.CreateProductInput{
			Description: strings.TrimSpace(payload.Description),
			Category:    payload.Category,
			Subcategory: payload.Subcategory,
			Brand:       payload.Brand,
			Origin:      payload.Origin,
			UOM:         payload.UOM,
			VendorCode:  payload.VendorCode,
			Barcode:     payload.Barcode,
			RRP:         rrp,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toProductResponse(product))
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamInt64(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProductResponse(product))
	}
}

func GetProductBySKU(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku := strings.TrimSpace(chi.URLParam(r, "sku"))
		if sku == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku is required"))
			return
		}

		product, err := svc.GetBySKU(r.Context(), sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProductResponse(product))
	}
}

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		out := make([]productResponse, 0, len(items))
		for i := range items {
			out = append(out, toProductResponse(&items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type updateProductRequest struct {
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Subcategory *string `json:"subcategory,omitempty"`
	Brand       *string `json:"brand,omitempty"`
	Origin      *string `json:"origin,omitempty"`
	UOM         *string `json:"uom,omitempty"`
	VendorCode  *string `json:"vendor_code,omitempty"`
	Barcode     *string `json:"barcode,omitempty"`
	RRP         *string `json:"rrp,omitempty"`
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamInt64(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var rrp *decimal.Decimal
		if payload.RRP != nil {
			parsed, err := decimal.NewFromString(strings.TrimSpace(*payload.RRP))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rrp"))
				return
			}
			rrp = &parsed
		}

		product, err := svc.Update(r.Context(), id, productsvc.UpdateProductInput{
			Description: payload.Description,
			Category:    payload.Category,
			Subcategory: payload.Subcategory,
			Brand:       payload.Brand,
			Origin:      payload.Origin,
			UOM:         payload.UOM,
			VendorCode:  payload.VendorCode,
			Barcode:     payload.Barcode,
			RRP:         rrp,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProductResponse(product))
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamInt64(r, "productID")
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

func RestoreProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamInt64(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Restore(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProductResponse(product))
	}
}
