package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/retailpulse/retailpulse-backend/api/responses"
	"github.com/retailpulse/retailpulse-backend/api/validators"
	salessvc "github.com/retailpulse/retailpulse-backend/internal/sales"
	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/retailpulse/retailpulse-backend/pkg/logger"
)

type saleLineRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	UnitPrice string `json:"unit_price" validate:"required"`
}

func parseLines(lines []saleLineRequest) ([]salessvc.LineInput, error) {
	out := make([]salessvc.LineInput, 0, len(lines))
	for _, line := range lines {
		price, err := decimal.NewFromString(strings.TrimSpace(line.UnitPrice))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		out = append(out, salessvc.LineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: price,
		})
	}
	return out, nil
}

type saleDetailResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type saleResponse struct {
	ID               int64                `json:"id"`
	BusinessEntityID int64                `json:"business_entity_id"`
	TaxPolicyID      int64                `json:"tax_policy_id"`
	Subtotal         string               `json:"subtotal"`
	TaxAmount        string               `json:"tax_amount"`
	Total            string               `json:"total"`
	TransactionDate  time.Time            `json:"transaction_date"`
	Details          []saleDetailResponse `json:"details,omitempty"`
}

func toSaleResponse(txn *models.SalesTransaction) saleResponse {
	details := make([]saleDetailResponse, 0, len(txn.Details))
	for _, detail := range txn.Details {
		details = append(details, saleDetailResponse{
			ID:        detail.ID,
			ProductID: detail.ProductID,
			Quantity:  detail.Quantity,
			UnitPrice: detail.UnitPrice.StringFixed(2),
		})
	}
	return saleResponse{
		ID:               txn.ID,
		BusinessEntityID: txn.BusinessEntityID,
		TaxPolicyID:      txn.TaxPolicyID,
		Subtotal:         txn.Subtotal.StringFixed(2),
		TaxAmount:        txn.TaxAmount.StringFixed(2),
		Total:            txn.Total.StringFixed(2),
		TransactionDate:  txn.TransactionDate,
		Details:          details,
	}
}

type createSaleRequest struct {
	BusinessEntityID int64             `json:"business_entity_id" validate:"required,gt=0"`
	Lines            []saleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func CreateSale(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := parseLines(payload.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.Create(r.Context(), payload.BusinessEntityID, lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toSaleResponse(txn))
	}
}

type updateSaleRequest struct {
	Lines []saleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func UpdateSale(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamInt64(r, "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := parseLines(payload.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.Update(r.Context(), id, lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toSaleResponse(txn))
	}
}

func GetSale(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamInt64(r, "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toSaleResponse(txn))
	}
}

type fullDetailResponse struct {
	saleDetailResponse
	ProductSKU         string `json:"product_sku"`
	ProductDescription string `json:"product_description"`
}

type fullSaleResponse struct {
	saleResponse
	Details []fullDetailResponse `json:"details"`
}

// GetFullSale returns the transaction with detail lines joined to their
// product SKU and description, the shape receipts render from.
func GetFullSale(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamInt64(r, "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, records, err := svc.GetFull(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		base := toSaleResponse(txn)
		base.Details = nil
		out := fullSaleResponse{saleResponse: base}
		for _, record := range records {
			out.Details = append(out.Details, fullDetailResponse{
				saleDetailResponse: saleDetailResponse{
					ID:        record.Detail.ID,
					ProductID: record.Detail.ProductID,
					Quantity:  record.Detail.Quantity,
					UnitPrice: record.Detail.UnitPrice.StringFixed(2),
				},
				ProductSKU:         record.ProductSKU,
				ProductDescription: record.ProductDescription,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

func ListSalesByEntity(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityID, err := validators.URLParamInt64(r, "entityID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListByEntity(r.Context(), entityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]saleResponse, 0, len(items))
		for i := range items {
			out = append(out, toSaleResponse(&items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type calculateTaxRequest struct {
	Lines []saleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type taxPreviewResponse struct {
	Subtotal  string `json:"subtotal"`
	TaxAmount string `json:"tax_amount"`
	Total     string `json:"total"`
	TaxType   string `json:"tax_type"`
	TaxRate   string `json:"tax_rate"`
}

func CalculateTax(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload calculateTaxRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := parseLines(payload.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preview, err := svc.CalculateTax(r.Context(), lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, taxPreviewResponse{
			Subtotal:  preview.Subtotal.StringFixed(2),
			TaxAmount: preview.TaxAmount.StringFixed(2),
			Total:     preview.Total.StringFixed(2),
			TaxType:   preview.TaxType.String(),
			TaxRate:   preview.TaxRate.String(),
		})
	}
}

type suspendSaleRequest struct {
	BusinessEntityID int64             `json:"business_entity_id" validate:"required,gt=0"`
	Lines            []saleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func SuspendSale(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload suspendSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := parseLines(payload.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		suspended, err := svc.Suspend(r.Context(), payload.BusinessEntityID, lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, suspended)
	}
}

func ListSuspendedSales(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityID, err := validators.URLParamInt64(r, "entityID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, svc.ListSuspended(entityID))
	}
}

type restoreSuspendedResponse struct {
	Restored  salessvc.Memento   `json:"restored"`
	Remaining []salessvc.Memento `json:"remaining"`
}

func RestoreSuspendedSale(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityID, err := validators.URLParamInt64(r, "entityID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mementoID := strings.TrimSpace(chi.URLParam(r, "mementoID"))
		if mementoID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "memento id is required"))
			return
		}

		restored, remaining, err := svc.RestoreSuspended(entityID, mementoID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, restoreSuspendedResponse{Restored: restored, Remaining: remaining})
	}
}
