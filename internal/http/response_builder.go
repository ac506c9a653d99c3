// Package http exposes the ledger and the course reports over a JSON API.
//
// This file implements the Builder Pattern for constructing JSON responses
// and maps domain errors to status codes in one place.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"cuotas/internal/amqp"
	"cuotas/internal/apiclient"
	"cuotas/internal/core"
	"cuotas/internal/export"
	cuotaslog "cuotas/internal/log"
	"cuotas/internal/services"
	"cuotas/internal/sheets/google"
)

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(ErrorBody{Error: message})
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError() *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal error")
}

// ValidationError lists the failing fields with the rule each one broke.
func ValidationError(ve validator.ValidationErrors) *ResponseBuilder {
	details := make(map[string]string, len(ve))
	for _, fe := range ve {
		details[fe.Field()] = fe.Tag()
	}
	return NewResponse().Status(http.StatusBadRequest).JSON(ErrorBody{Error: "validation failed", Details: details})
}

var badInput = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
	core.ErrInvalidPeriod,
	core.ErrInvalidPaymentStatus,
	core.ErrInvalidCourse,
	core.ErrInvalidStudent,
	core.ErrInvalidCategory,
	core.ErrEmptyDescription,
	core.ErrEmptyName,
	export.ErrUnsupportedFormat,
	errBadRequest,
}

// errorStatus maps an error to its status code and whether the message is
// safe to show to the client.
func errorStatus(err error) (int, bool) {
	for _, target := range badInput {
		if errors.Is(err, target) {
			return http.StatusBadRequest, true
		}
	}
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, core.ErrDuplicateCategory), errors.Is(err, core.ErrCategoryInUse):
		return http.StatusConflict, true
	case errors.Is(err, core.ErrReadOnly):
		return http.StatusForbidden, true
	case errors.Is(err, services.ErrSyncUnavailable),
		errors.Is(err, amqp.ErrCircuitOpen),
		errors.Is(err, google.ErrUnavailable):
		return http.StatusServiceUnavailable, true
	case errors.Is(err, apiclient.ErrUpstream):
		return http.StatusBadGateway, false
	default:
		return http.StatusInternalServerError, false
	}
}

// writeError logs server-side failures and sends the mapped response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		ValidationError(ve).Write(w)
		return
	}

	status, public := errorStatus(err)
	if status >= 500 {
		cuotaslog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			cuotaslog.FieldError, err.Error(),
			cuotaslog.FieldPath, r.URL.Path,
			cuotaslog.FieldStatusCode, status)
	}

	msg := http.StatusText(status)
	if public {
		msg = err.Error()
	}
	ErrorResponse(status, msg).Write(w)
}
