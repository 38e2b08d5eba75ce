package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailpulse/retailpulse-backend/api/responses"
	"github.com/retailpulse/retailpulse-backend/api/validators"
	"github.com/retailpulse/retailpulse-backend/internal/inventory"
	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/retailpulse/retailpulse-backend/pkg/logger"
	"github.com/retailpulse/retailpulse-backend/pkg/pagination"
)

type transferResponse struct {
	ID               string    `json:"id"`
	ProductID        int64     `json:"product_id"`
	Quantity         int       `json:"quantity"`
	CostPricePerUnit string    `json:"cost_price_per_unit"`
	SourceID         int64     `json:"source_id"`
	DestinationID    int64     `json:"destination_id"`
	InsertedAt       time.Time `json:"inserted_at"`
}

func toTransferResponse(txn *models.InventoryTransaction) transferResponse {
	return transferResponse{
		ID:               txn.ID.String(),
		ProductID:        txn.ProductID,
		Quantity:         txn.Quantity,
		CostPricePerUnit: txn.CostPricePerUnit.StringFixed(2),
		SourceID:         txn.SourceID,
		DestinationID:    txn.DestinationID,
		InsertedAt:       txn.InsertedAt,
	}
}

type historyItemResponse struct {
	transferResponse
	ProductSKU         string `json:"product_sku"`
	ProductDescription string `json:"product_description"`
	SourceName         string `json:"source_name"`
	DestinationName    string `json:"destination_name"`
}

type recordTransferRequest struct {
	ProductID        int64  `json:"product_id" validate:"required,gt=0"`
	Quantity         int    `json:"quantity" validate:"required,gt=0"`
	CostPricePerUnit string `json:"cost_price_per_unit" validate:"required"`
	SourceID         int64  `json:"source_id" validate:"required,gt=0"`
	DestinationID    int64  `json:"destination_id" validate:"required,gt=0"`
}

func RecordTransfer(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload recordTransferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cost, err := decimal.NewFromString(strings.TrimSpace(payload.CostPricePerUnit))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cost price"))
			return
		}

		txn, err := svc.RecordTransfer(r.Context(), inventory.RecordTransferInput{
			ProductID:        payload.ProductID,
			Quantity:         payload.Quantity,
			CostPricePerUnit: cost,
			SourceID:         payload.SourceID,
			DestinationID:    payload.DestinationID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toTransferResponse(txn))
	}
}

func ListTransferHistory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseQueryInt64(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entityID, err := validators.ParseQueryInt64(r, "business_entity_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, nextCursor, err := svc.ListHistory(r.Context(), inventory.HistoryFilter{
			ProductID:        productID,
			BusinessEntityID: entityID,
			From:             from,
			To:               to,
			Page: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]historyItemResponse, 0, len(records))
		for i := range records {
			out = append(out, historyItemResponse{
				transferResponse:   toTransferResponse(&records[i].Transaction),
				ProductSKU:         records[i].ProductSKU,
				ProductDescription: records[i].ProductDescription,
				SourceName:         records[i].SourceName,
				DestinationName:    records[i].DestinationName,
			})
		}
		responses.WriteList(w, out, nextCursor)
	}
}
