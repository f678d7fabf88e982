package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/service"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, err error) {
	errs := make(map[string]string)
	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range ve {
			fieldName := toJSONFieldName(fe.Field())
			errs[fieldName] = formatValidationError(fe)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: "One or more fields failed validation",
		Errors: errs,
	})
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", toJSONFieldName(fe.Field()))
	case "email":
		return "Must be a valid email address"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "uuid":
		return "Must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	case "url":
		return "Must be a valid URL"
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// toJSONFieldName converts a Go struct field name to its JSON equivalent (camelCase)
func toJSONFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondTypedError(w, status, getErrorType(status), message)
}

func respondTypedError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   errorType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

// respondServiceError maps service sentinel errors to their HTTP
// renderings. Transition and assignee rejections carry distinct problem
// types so the console can react to each.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondTypedError(w, http.StatusNotFound, domain.ErrorTypeNotFound, "Resource not found")
	case errors.Is(err, service.ErrInvalidTransition):
		respondTypedError(w, http.StatusConflict, domain.ErrorTypeInvalidTransition, err.Error())
	case errors.Is(err, service.ErrInvalidAssignee):
		respondTypedError(w, http.StatusUnprocessableEntity, domain.ErrorTypeInvalidAssignee, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		respondTypedError(w, http.StatusBadRequest, domain.ErrorTypeBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		respondTypedError(w, http.StatusConflict, domain.ErrorTypeConflict, err.Error())
	case errors.Is(err, service.ErrTransient):
		w.Header().Set("Retry-After", "5")
		respondTypedError(w, http.StatusServiceUnavailable, domain.ErrorTypeTransient, "Service temporarily unavailable, please retry")
	default:
		respondTypedError(w, http.StatusInternalServerError, domain.ErrorTypeInternal, fallback)
	}
}

// parseFloor parses a floor number from a query or path value
func parseFloor(s string) (int, error) {
	floor, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if floor < 1 {
		return 0, fmt.Errorf("floor must be >= 1")
	}
	return floor, nil
}

// getErrorType returns the appropriate error type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return domain.ErrorTypeUnauthorized
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	case http.StatusUnprocessableEntity:
		return domain.ErrorTypeValidation
	case http.StatusServiceUnavailable:
		return domain.ErrorTypeTransient
	default:
		return domain.ErrorTypeInternal
	}
}
