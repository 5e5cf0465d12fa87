package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
)

// HeaderUserID carries the acting user, set by the upstream auth gateway
const HeaderUserID = "X-User-ID"

// DecodeAndValidateRequest decodes a JSON request body, validates it, and returns appropriate errors.
// It logs the operation and returns a standardized error response to the client.
//
// If this function returns an error, the HTTP response has already been written and the handler should return.
//
// Example usage:
//
//	var req GroundRequest
//	if err := DecodeAndValidateRequest(r, w, &req, "Submit ground"); err != nil {
//	    return
//	}
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	log := logger.FromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Warn(fmt.Sprintf("Failed to decode %s request", actionName), "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return err
	}

	log.Debug(fmt.Sprintf("%s request decoded", actionName))

	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}

	return nil
}

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// GetActorID reads the acting user from the X-User-ID header.
// If ok is false, a 401 has already been written.
func GetActorID(r *http.Request, w http.ResponseWriter) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.Header.Get(HeaderUserID))
	if err != nil {
		logger.FromContext(r.Context()).Warn("Missing or invalid actor header")
		respondError(w, http.StatusUnauthorized, ErrMsgMissingActor)
		return uuid.Nil, false
	}
	return id, true
}

// GetDuelID parses the {id} path parameter.
// If ok is false, a 400 has already been written.
func GetDuelID(r *http.Request, w http.ResponseWriter) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidDuelID)
		return uuid.Nil, false
	}
	return id, true
}

// GetOptionalQueryParam retrieves an optional query parameter from the request.
//
// Example usage:
//
//	status := GetOptionalQueryParam(r, "status", "")
func GetOptionalQueryParam(r *http.Request, paramName string, defaultValue string) string {
	value := r.URL.Query().Get(paramName)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetOptionalUUIDParam parses an optional UUID query parameter.
// A present but malformed value writes a 400 and returns ok=false.
func GetOptionalUUIDParam(r *http.Request, w http.ResponseWriter, paramName string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(paramName)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidQueryParam, paramName))
		return nil, false
	}
	return &id, true
}

// GetPagination parses limit and offset, clamping limit to [1, maxLimit].
// A malformed value writes a 400 and returns ok=false.
func GetPagination(r *http.Request, w http.ResponseWriter, defaultLimit, maxLimit int) (limit, offset int, ok bool) {
	limit, offset = defaultLimit, 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidQueryParam, "limit"))
			return 0, 0, false
		}
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidQueryParam, "offset"))
			return 0, 0, false
		}
		offset = v
	}
	return limit, offset, true
}

type adminKey struct{}

// WithAdmin marks ctx as carrying a verified admin API key
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey{}, true)
}

// IsAdmin reports whether the request was authenticated with the admin API key
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(adminKey{}).(bool)
	return v
}
