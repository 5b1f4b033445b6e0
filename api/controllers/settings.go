package controllers

import (
	"net/http"

	"github.com/marketkart/backoffice-backend/api/responses"
	"github.com/marketkart/backoffice-backend/api/validators"
	"github.com/marketkart/backoffice-backend/internal/settings"
	"github.com/marketkart/backoffice-backend/pkg/logger"
)

// GetSettings returns the platform settings singleton, creating it with
// defaults on first read.
func GetSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, current)
	}
}

// UpdateSettings replaces the admin-editable settings fields.
func UpdateSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input settings.UpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
