package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case valueobject.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, valueobject.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, valueobject.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, valueobject.ErrConcurrencyConflict):
		writeError(w, http.StatusConflict, err.Error())
	case valueobject.IsGateway(err):
		writeError(w, http.StatusBadGateway, "payment gateway unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
