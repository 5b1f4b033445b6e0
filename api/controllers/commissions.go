package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marketkart/backoffice-backend/api/responses"
	"github.com/marketkart/backoffice-backend/api/validators"
	"github.com/marketkart/backoffice-backend/internal/commission"
	"github.com/marketkart/backoffice-backend/internal/reporting"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	pkgerrors "github.com/marketkart/backoffice-backend/pkg/errors"
	"github.com/marketkart/backoffice-backend/pkg/logger"
)

// DistributeCommissions pays out a delivered order. Invoked by the order
// status transition flow when an order becomes delivered.
func DistributeCommissions(svc commission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Distribute(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ReverseCommissions claws back a previously distributed order, typically on
// cancellation or return.
func ReverseCommissions(svc commission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Reverse(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CommissionSummary returns a subject's earnings overview.
func CommissionSummary(svc reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectType, subjectID, err := parseSubject(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.CommissionSummary(r.Context(), subjectType, subjectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// FinancialDashboard returns platform-wide earnings aggregates for admins.
func FinancialDashboard(svc reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := svc.FinancialDashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}

func parseSubject(r *http.Request) (enums.SubjectType, uuid.UUID, error) {
	subjectType, err := enums.ParseSubjectType(strings.TrimSpace(chi.URLParam(r, "subjectType")))
	if err != nil {
		return "", uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid subject type").
			WithDetails(map[string]any{"field": "subjectType"})
	}
	subjectID, err := validators.ParseUUID(chi.URLParam(r, "subjectId"), "subjectId")
	if err != nil {
		return "", uuid.Nil, err
	}
	return subjectType, subjectID, nil
}
