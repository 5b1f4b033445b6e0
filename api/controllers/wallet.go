package controllers

import (
	"net/http"
	"strings"

	"github.com/marketkart/backoffice-backend/api/responses"
	"github.com/marketkart/backoffice-backend/api/validators"
	"github.com/marketkart/backoffice-backend/internal/wallet"
	"github.com/marketkart/backoffice-backend/pkg/logger"
	"github.com/marketkart/backoffice-backend/pkg/pagination"
)

// WalletTransactions returns a subject's ledger history, newest first.
func WalletTransactions(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectType, subjectID, err := parseSubject(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Transactions(r.Context(), subjectType, subjectID, pagination.Params{
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

// WalletBalance returns a subject's current balance in minor units.
func WalletBalance(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectType, subjectID, err := parseSubject(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), subjectType, subjectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"subject_type":  subjectType,
			"subject_id":    subjectID,
			"balance_cents": balance,
		})
	}
}
