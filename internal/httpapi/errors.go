package httpapi

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/depgraph/pkg/errors"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusCode maps an error code to its HTTP status.
func StatusCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeEmptyText,
		errors.ErrCodeMalformedInput,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeSelfDependency,
		errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeUnknownTask, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCycleDetected, errors.ErrCodeDuplicateID:
		return http.StatusConflict
	case errors.ErrCodeUnknownDependency:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as JSON. Errors without a code, and internal errors,
// are reported without their detail. A body cut off at its size limit is
// reported as 413 whichever decoder hit the limit.
func writeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Code:    errors.ErrCodeMalformedInput,
			Message: fmt.Sprintf("%s: request body is larger than %d bytes", errors.Summary(errors.ErrCodeMalformedInput), tooLarge.Limit),
		})
		return
	}

	code := errors.GetCode(err)
	status := StatusCode(code)
	resp := errorResponse{Code: code, Message: errors.UserMessage(err)}
	if status == http.StatusInternalServerError {
		resp = errorResponse{
			Code:    errors.ErrCodeInternal,
			Message: errors.Summary(errors.ErrCodeInternal),
		}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
