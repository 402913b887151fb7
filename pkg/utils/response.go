package utils

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSON writes data as a JSON body with the given status
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// ErrorBody is the JSON shape of every failed API call
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// StatusFor maps an error code to the HTTP status the dashboard expects
func StatusFor(code string) int {
	switch code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidTransition, ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeTransport, ErrCodeDatabase:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as an ErrorBody. Errors without an AppError in their
// chain are logged and reported as internal errors without leaking details.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		GetLogger().WithError(err).Error("unhandled error")
		JSON(w, http.StatusInternalServerError, ErrorBody{Code: ErrCodeInternal, Message: "internal server error"})
		return
	}

	status := StatusFor(appErr.Code)
	if status >= http.StatusInternalServerError {
		GetLogger().WithError(err).WithField("code", appErr.Code).Error("request failed")
	}

	JSON(w, status, ErrorBody{Code: appErr.Code, Message: appErr.Message, Fields: appErr.Fields})
}
