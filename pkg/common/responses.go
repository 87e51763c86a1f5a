// Package common holds the response envelope and request context helpers
// shared by the HTTP layer.
package common

import (
	"encoding/json"
	"net/http"

	apperrors "notekeeper/pkg/errors"
)

// ErrorEnvelope is the uniform error body: a message plus optional data.
type ErrorEnvelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondJSON writes v as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RespondError maps an application error to its HTTP status and writes the
// uniform error envelope. Unclassified failures are reported as internal.
func RespondError(w http.ResponseWriter, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		appErr = apperrors.NewInternal("internal server error", err)
	}

	envelope := ErrorEnvelope{Message: appErr.Message}
	if len(appErr.Details) > 0 {
		envelope.Data = appErr.Details
	}
	RespondJSON(w, appErr.HTTPStatus, envelope)
}

// ParseJSONBody decodes a JSON request body into v with a size limit.
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
