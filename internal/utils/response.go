package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"BoltWatch.dashboard/internal/models"
)

// RespondWithError sends a JSON error response using the APIError model.
// The status code comes from the APIError.
func RespondWithError(writer http.ResponseWriter, apiErr models.APIError) {
	writer.Header().Set("Content-Type", "application/json")
	writer.Header().Set("Cache-Control", "no-store")
	writer.WriteHeader(apiErr.StatusCode)

	if err := json.NewEncoder(writer).Encode(apiErr); err != nil {
		log.Error().Err(err).Msg("failed to encode error response")
	}
}

// RespondWithJSON sends a JSON success response.
func RespondWithJSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.Header().Set("Cache-Control", "no-store")
	writer.WriteHeader(statusCode)
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}
