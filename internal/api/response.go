// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/fifthquarter/bandstand/internal/logging"
)

// APIResponse is the envelope every endpoint returns. A consistent shape
// keeps client handling uniform across success and error paths.
type APIResponse struct {
	// Success indicates whether the request was successful.
	Success bool `json:"success"`

	// Data contains the response payload (null on error).
	Data interface{} `json:"data,omitempty"`

	// Error contains error details (null on success).
	Error *APIError `json:"error,omitempty"`

	// Meta contains response metadata.
	Meta *APIMeta `json:"meta,omitempty"`
}

// APIError is the error half of the envelope.
type APIError struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details contains additional error details (optional).
	Details interface{} `json:"details,omitempty"`

	// RequestID is the request ID for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// APIMeta carries per-response metadata.
type APIMeta struct {
	// RequestID is the unique request identifier for tracing.
	RequestID string `json:"request_id,omitempty"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`

	// DurationMs is the request processing time in milliseconds.
	DurationMs int64 `json:"duration_ms,omitempty"`
}

// Error codes for API responses.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
)

// ResponseWriter writes standardized API responses for one request.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a response writer for the given request.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data interface{}) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			RequestID:  logging.RequestIDFromContext(rw.r.Context()),
			Timestamp:  time.Now(),
			DurationMs: time.Since(rw.startTime).Milliseconds(),
		},
	}
	rw.writeJSON(http.StatusOK, response)
}

// Accepted writes a 202 response for work that continues after the reply.
func (rw *ResponseWriter) Accepted(data interface{}) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			RequestID:  logging.RequestIDFromContext(rw.r.Context()),
			Timestamp:  time.Now(),
			DurationMs: time.Since(rw.startTime).Milliseconds(),
		},
	}
	rw.writeJSON(http.StatusAccepted, response)
}

// Error writes an error response with the given status code.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error response with additional details.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details interface{}) {
	requestID := logging.RequestIDFromContext(rw.r.Context())

	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
		Meta: &APIMeta{
			RequestID:  requestID,
			Timestamp:  time.Now(),
			DurationMs: time.Since(rw.startTime).Milliseconds(),
		},
	}

	rw.writeJSON(statusCode, response)
}

// BadRequest writes a 400 Bad Request error.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

// ValidationError writes a 400 response with per-field validation details.
func (rw *ResponseWriter) ValidationError(message string, details interface{}) {
	rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, message, details)
}

// NotFound writes a 404 Not Found error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

// InternalError writes a 500 Internal Server Error.
func (rw *ResponseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable writes a 503 Service Unavailable error.
func (rw *ResponseWriter) ServiceUnavailable(message string) {
	rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// writeJSON serializes and writes the response. Encoding failures are logged;
// headers are already committed at that point so nothing further can be sent.
func (rw *ResponseWriter) writeJSON(statusCode int, data interface{}) {
	rw.w.Header().Set("Content-Type", "application/json")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(data); err != nil {
		logging.Error().
			Err(err).
			Str("path", rw.r.URL.Path).
			Msg("Failed to encode API response")
	}
}
