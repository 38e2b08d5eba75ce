package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/retailpulse/retailpulse-backend/api/responses"
	"github.com/retailpulse/retailpulse-backend/api/validators"
	reportsvc "github.com/retailpulse/retailpulse-backend/internal/reports"
	"github.com/retailpulse/retailpulse-backend/pkg/enums"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/retailpulse/retailpulse-backend/pkg/logger"
)

func ExportInventoryReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := parseFormat(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
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

		export, err := svc.InventoryReport(r.Context(), reportsvc.Filter{
			ProductID:        productID,
			BusinessEntityID: entityID,
			From:             from,
			To:               to,
		}, format)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeExport(w, export)
	}
}

func ExportSalesReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := parseFormat(r)
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

		export, err := svc.SalesReport(r.Context(), from, to, format)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeExport(w, export)
	}
}

func parseFormat(r *http.Request) (enums.ReportFormat, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("format"))
	if raw == "" {
		return enums.ReportFormatExcel, nil
	}
	format, err := enums.ParseReportFormat(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnsupportedFormat, err, "unsupported report format").
			WithDetails(map[string]any{"format": raw})
	}
	return format, nil
}

func writeExport(w http.ResponseWriter, export *reportsvc.Export) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Content)
}
