package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is the shared request validator. Tag handling beyond the built-ins
// lives in formatValidationError.
var validate = validator.New()

// ValidateStruct runs struct-tag validation over a request body.
func ValidateStruct(body interface{}) error {
	return validate.Struct(body)
}

// ValidationMessages flattens a validator error into human-readable messages.
func ValidationMessages(err error) []string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		messages := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			messages = append(messages, formatValidationError(fieldError))
		}
		return messages
	}
	return []string{err.Error()}
}

// formatValidationError formats a validation error into a human-readable message
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()
	param := err.Param()

	switch tag {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + param + " characters"
	case "max":
		return field + " must be at most " + param + " characters"
	case "oneof":
		return field + " must be one of: " + param
	case "numeric":
		return field + " must be numeric"
	case "timezone":
		return field + " must be a valid IANA timezone"
	default:
		return field + " is invalid"
	}
}

// ParseCommaSeparated parses a comma-separated string into a slice
func ParseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ResponseWrapper wraps http.ResponseWriter to capture status codes
type ResponseWrapper struct {
	http.ResponseWriter
	StatusCode int
	Written    bool
}

// NewResponseWrapper creates a new response wrapper
func NewResponseWrapper(w http.ResponseWriter) *ResponseWrapper {
	return &ResponseWrapper{
		ResponseWriter: w,
		StatusCode:     http.StatusOK,
		Written:        false,
	}
}

// WriteHeader captures the status code
func (rw *ResponseWrapper) WriteHeader(statusCode int) {
	if !rw.Written {
		rw.StatusCode = statusCode
		rw.Written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

// Write ensures WriteHeader is called
func (rw *ResponseWrapper) Write(data []byte) (int, error) {
	if !rw.Written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(data)
}

// LogRequest logs HTTP request details
func LogRequest(r *http.Request, statusCode int, duration time.Duration, metadata map[string]interface{}) {
	// Skip health check logging to reduce noise
	if r.URL.Path == "/health" {
		return
	}

	fields := []interface{}{
		"method", r.Method,
		"path", r.URL.Path,
		"status", statusCode,
		"duration", duration.String(),
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	}

	// Add metadata fields
	for key, value := range metadata {
		fields = append(fields, key, value)
	}

	if statusCode >= 400 {
		// Log errors as warnings
		fields = append(fields, "query", r.URL.RawQuery)
		slog.Warn("HTTP request error", fields...)
	} else {
		slog.Info("HTTP request", fields...)
	}
}
