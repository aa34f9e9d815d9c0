package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/middleware"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent.
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error onto an HTTP response. Errors that
// are not domain errors are logged and reported as 500 without detail.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().Err(err).Msg("unexpected service error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "internal server error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch de.Kind {
	case model.KindValidation:
		status = http.StatusBadRequest
	case model.KindInsufficientStock:
		status = http.StatusConflict
	case model.KindNotFound:
		status = http.StatusNotFound
	case model.KindUnauthorized:
		status = http.StatusForbidden
	}
	writeError(w, status, de.Code, de.Message, logger)
}

// decodeJSON reads the request body into dst and runs struct validation.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) *model.DomainError {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return model.NewValidationError(model.ErrCodeInvalidJSON, "invalid request body: %v", err)
	}

	if err := validate.Struct(dst); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			fields := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
			}
			return model.NewValidationError(model.ErrCodeValidationFailed, "validation failed: %s", strings.Join(fields, ", "))
		}
		return model.NewValidationError(model.ErrCodeValidationFailed, "validation failed: %v", err)
	}
	return nil
}

// principal returns the authenticated caller or writes 401.
func principal(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (model.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", logger)
	}
	return p, ok
}

// int64Param parses a positive integer path parameter.
func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}
