package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"genealogy-service/store"
)

// respondWithError sends a JSON error response.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Error marshalling JSON: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondStoreError maps data-access failures onto the API's error contract:
// NotFound becomes 404 with its own message; everything else, constraint
// violations included, becomes a generic 500 with the detail logged
// server-side only.
func respondStoreError(w http.ResponseWriter, logger *zap.Logger, err error, notFoundMsg, failMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	if errors.Is(err, store.ErrConstraint) {
		logger.Warn(failMsg, zap.Error(err))
	} else {
		logger.Error(failMsg, zap.Error(err))
	}
	respondWithError(w, http.StatusInternalServerError, failMsg)
}

// parseIDParam extracts a numeric chi URL parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
