// Package auth holds the HTTP-facing credential and error helpers shared by
// the middleware and handler packages.
package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// Sentinel errors for token extraction failures.
// They are meant for logs and must not be echoed to clients.
var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthScheme = errors.New("invalid authorization scheme: expected Bearer")
	ErrEmptyToken        = errors.New("empty bearer token")
)

// Error types carried in the "type" field of error responses.
const (
	TypeAuthentication = "authentication_error"
	TypeInvalidRequest = "invalid_request_error"
	TypeInternal       = "server_error"
)

// ExtractBearerToken returns the credential from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func ExtractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidAuthScheme
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// HasBearerToken reports whether the request presents a well-formed bearer credential.
func HasBearerToken(r *http.Request) bool {
	_, err := ExtractBearerToken(r)
	return err == nil
}

// APIError is the JSON error envelope returned by every endpoint.
type APIError struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error message and type.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// WriteJSONError writes {"error": {"message": ..., "type": ...}} with the given status.
func WriteJSONError(w http.ResponseWriter, status int, message, errorType string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIError{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
		},
	}); err != nil {
		slog.Error("failed to write JSON error response", "error", err)
	}
}

// WriteUnauthorized writes a 401 response.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="documite"`)
	WriteJSONError(w, http.StatusUnauthorized, "unauthorized", TypeAuthentication)
}

// WriteBadRequest writes a 400 response with a client-facing message.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteJSONError(w, http.StatusBadRequest, message, TypeInvalidRequest)
}

// WriteInternalError writes a 500 response. Details belong in the logs, not here.
func WriteInternalError(w http.ResponseWriter) {
	WriteJSONError(w, http.StatusInternalServerError, "internal server error", TypeInternal)
}
