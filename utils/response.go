package utils

import (
	"encoding/json"
	"net/http"

	"outings/models"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, models.ErrorResponse{
		Message: msg,
		Errors:  []models.ValidationError{},
	})
}

// RespondWithValidationErrors sends the full field-error list.
func RespondWithValidationErrors(w http.ResponseWriter, msg string, errs []models.ValidationError) {
	if errs == nil {
		errs = []models.ValidationError{}
	}
	RespondWithJSON(w, http.StatusBadRequest, models.ErrorResponse{
		Message: msg,
		Errors:  errs,
	})
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
