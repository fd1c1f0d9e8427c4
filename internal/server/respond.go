package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"tubevault/internal/errs"
	"tubevault/internal/utils/logging"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.E("Failed to encode JSON response: %v", err)
	}
}

// respondError maps domain errors onto HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var resErr *errs.ResolutionError
	switch {
	case errors.Is(err, errs.ErrVideoNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrDuplicateVideo),
		errors.Is(err, errs.ErrAlreadyDownloading):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrNoSuitableFormat):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrTooManyTransfers):
		status = http.StatusTooManyRequests
	case errors.Is(err, errs.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrTransferStalled):
		status = http.StatusBadGateway
	case errors.As(err, &resErr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		status = 499 // client closed request
	}

	respondJSON(w, status, map[string]string{"error": err.Error()})
}
