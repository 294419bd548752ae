package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"hrms.org/internal/auth"
	"hrms.org/internal/obs"
	"hrms.org/internal/records"
	"hrms.org/internal/validation"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// message is the JSON shape of acknowledgements.
type message struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, detail string) {
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, code, errorBody{Detail: detail, RequestID: RequestIDFromContext(r)})
}

// respondError maps a service error to its status and client facing detail.
// Unclassified errors are logged and reported as 500 without detail.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code, detail := classify(err)
	if code == http.StatusInternalServerError {
		obs.Logger().Error("request failed",
			"request_id", RequestIDFromContext(r),
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
	}
	writeError(w, r, code, detail)
}

func classify(err error) (int, string) {
	var (
		recErr   *records.Error
		valErr   *validation.Error
		maxBytes *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "Request body too large"
	case errors.As(err, &valErr):
		return http.StatusBadRequest, valErr.Error()
	case errors.Is(err, auth.ErrAccessDenied):
		return http.StatusForbidden, "Access denied"
	case errors.As(err, &recErr):
		return statusOf(recErr.Kind), recErr.Msg
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, records.ErrConflict):
		return http.StatusConflict, "Already exists"
	case errors.Is(err, records.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid input"
	case errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, "Token has expired"
	case errors.Is(err, auth.ErrMalformedToken):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, auth.ErrIdentityNotFound):
		return http.StatusUnauthorized, "User not found"
	case errors.Is(err, auth.ErrDuplicateEmail):
		return http.StatusBadRequest, "Email already registered"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, auth.ErrInvalidInput):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), auth.ErrInvalidInput.Error()+": ")
	}
	return http.StatusInternalServerError, "Internal server error"
}

func statusOf(kind error) int {
	switch {
	case errors.Is(kind, records.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, records.ErrConflict):
		return http.StatusConflict
	case errors.Is(kind, records.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decodeJSON reads exactly one JSON value into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			return err
		case errors.Is(err, io.EOF):
			return &validation.Error{Fields: []string{"request body is required"}}
		}
		return &validation.Error{Fields: []string{"malformed JSON: " + err.Error()}}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &validation.Error{Fields: []string{"unexpected data after JSON body"}}
	}
	return nil
}

// decodeValid decodes and validates a request payload.
func decodeValid(r *http.Request, dst any) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return validation.Struct(dst)
}
