package controllers

import (
	"net/http"

	"github.com/retailpulse/retailpulse-backend/api/responses"
	"github.com/retailpulse/retailpulse-backend/api/validators"
	"github.com/retailpulse/retailpulse-backend/internal/stockledger"
	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	"github.com/retailpulse/retailpulse-backend/pkg/logger"
)

type balanceResponse struct {
	ProductID        int64  `json:"product_id"`
	BusinessEntityID int64  `json:"business_entity_id"`
	Quantity         int    `json:"quantity"`
	TotalCostBasis   string `json:"total_cost_basis"`
}

func toBalanceResponse(entry *models.StockLedgerEntry) balanceResponse {
	return balanceResponse{
		ProductID:        entry.ProductID,
		BusinessEntityID: entry.BusinessEntityID,
		Quantity:         entry.Quantity,
		TotalCostBasis:   entry.TotalCostBasis.StringFixed(2),
	}
}

// GetStockBalance reports the on-hand quantity for one product at one
// entity. An absent ledger row reads as a zero balance.
func GetStockBalance(svc stockledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.URLParamInt64(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entityID, err := validators.URLParamInt64(r, "entityID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.GetBalance(r.Context(), productID, entityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if entry == nil {
			responses.WriteSuccess(w, balanceResponse{
				ProductID:        productID,
				BusinessEntityID: entityID,
				TotalCostBasis:   "0.00",
			})
			return
		}

		responses.WriteSuccess(w, toBalanceResponse(entry))
	}
}

func ListStockByProduct(svc stockledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.URLParamInt64(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]balanceResponse, 0, len(entries))
		for i := range entries {
			out = append(out, toBalanceResponse(&entries[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func ListStockByEntity(svc stockledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityID, err := validators.URLParamInt64(r, "entityID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListByEntity(r.Context(), entityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]balanceResponse, 0, len(entries))
		for i := range entries {
			out = append(out, toBalanceResponse(&entries[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
