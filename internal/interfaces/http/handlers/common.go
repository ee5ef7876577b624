// Package handlers implements the HTTP handlers of the LienPilot API.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/pkg/errors"
)

// DefaultMaxBodySize bounds request bodies when the handler is given none.
const DefaultMaxBodySize = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeError writes err with an explicit status.
func writeError(w http.ResponseWriter, statusCode int, err *errors.AppError) {
	writeJSON(w, statusCode, ErrorResponse{
		Code:    err.Code.String(),
		Message: err.Message,
		Detail:  err.Detail,
	})
}

// writeAppError maps err's code to an HTTP status. Internal failures are
// logged and masked; client errors are returned verbatim.
func writeAppError(w http.ResponseWriter, log logging.Logger, err error) {
	var ae *errors.AppError
	if !stderrors.As(err, &ae) {
		log.Error("unclassified handler error", logging.Err(err))
		writeError(w, http.StatusInternalServerError, errors.Internal("internal server error"))
		return
	}

	status := errors.HTTPStatusForCode(ae.Code)
	if status == http.StatusInternalServerError {
		log.Error("request failed", logging.String("code", ae.Code.String()), logging.Err(err))
		writeError(w, status, errors.New(ae.Code, errors.DefaultMessageForCode(ae.Code)))
		return
	}
	if status >= 500 {
		log.Warn("request failed on a dependency", logging.String("code", ae.Code.String()), logging.Err(err))
	}
	writeError(w, status, ae)
}

// decodeJSON reads at most maxBody bytes of JSON into dst and reports
// whether it succeeded; on failure the error response is already written.
// Unknown fields are rejected so that misspelled dates do not silently
// default.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBody int64, dst interface{}) bool {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errors.InvalidParam("request body too large"))
			return false
		}
		writeError(w, http.StatusBadRequest, errors.InvalidParam("invalid request body").WithDetail(err.Error()))
		return false
	}
	return true
}

//Personal.AI order the ending
