// Package httputil provides JSON response helpers for the HTTP API.
//
// Every error response has the same shape:
//
//	{"error": {"code": "UNRESOLVED_LINK_ENDPOINT", "message": "link 0: target \"Z\" not found"}}
//
// The status code follows [errors.HTTPStatus].
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/forcelayout/pkg/errors"
)

// ErrorBody is the payload of an error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and the user message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// WriteError writes err as an error response and returns the status used.
// Errors without a code are reported as INTERNAL_ERROR.
func WriteError(w http.ResponseWriter, err error) int {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(err)
	WriteJSON(w, status, ErrorBody{Error: ErrorDetail{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
	return status
}

// LimitBody caps the request body at maxBytes. Reads past the limit fail.
func LimitBody(w http.ResponseWriter, r *http.Request, maxBytes int64) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
}
