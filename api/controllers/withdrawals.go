package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marketkart/backoffice-backend/api/responses"
	"github.com/marketkart/backoffice-backend/api/validators"
	"github.com/marketkart/backoffice-backend/internal/withdrawals"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	pkgerrors "github.com/marketkart/backoffice-backend/pkg/errors"
	"github.com/marketkart/backoffice-backend/pkg/logger"
	"github.com/marketkart/backoffice-backend/pkg/pagination"
)

type processWithdrawalRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Remark string `json:"remark" validate:"max=500"`
}

type completeWithdrawalRequest struct {
	SettlementRef string `json:"settlement_ref" validate:"required,max=120"`
}

// ProcessWithdrawal applies an admin approve/reject decision to a pending
// withdrawal request.
func ProcessWithdrawal(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := validators.ParseUUID(chi.URLParam(r, "requestId"), "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body processWithdrawalRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action, err := enums.ParseWithdrawAction(body.Action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "invalid withdrawal action").
					WithDetails(map[string]any{"field": "action"}))
			return
		}

		request, err := svc.Process(r.Context(), requestID, action, body.Remark)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// CompleteWithdrawal records the external settlement reference on an approved
// request.
func CompleteWithdrawal(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := validators.ParseUUID(chi.URLParam(r, "requestId"), "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body completeWithdrawalRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Complete(r.Context(), requestID, body.SettlementRef)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// ListWithdrawals pages through withdrawal requests for admin review, with an
// optional status filter.
func ListWithdrawals(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.WithdrawStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseWithdrawStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid withdraw status").
						WithDetails(map[string]any{"field": "status"}))
				return
			}
			status = &parsed
		}

		page, err := svc.List(r.Context(), status, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
