package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BaseError is the single error envelope every endpoint returns.
// Code is machine oriented snake_case, Message is short and human readable,
// Details carries an optional explanation and Fields lists per-field violations.
type BaseError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError is one violation on a request field.
// Tag is the validator tag (required, email, min) when the violation came from binding.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

// Semantic aliases for swagger @Failure documentation. They all share the BaseError shape.

// ValidationErrorResponse 400, code "validation_error".
type ValidationErrorResponse BaseError

// BadRequestErrorResponse 400, code "bad_request". A rule of the shop rejected the request.
type BadRequestErrorResponse BaseError

// UnauthorizedErrorResponse 401, code "unauthorized".
type UnauthorizedErrorResponse BaseError

// ForbiddenErrorResponse 403, code "forbidden".
type ForbiddenErrorResponse BaseError

// NotFoundErrorResponse 404, code "not_found".
type NotFoundErrorResponse BaseError

// ConflictErrorResponse 409, code "conflict".
type ConflictErrorResponse BaseError

// RateLimitedErrorResponse 429, code "rate_limited".
type RateLimitedErrorResponse BaseError

// InternalErrorResponse 500, code "internal_error".
type InternalErrorResponse BaseError

func NewValidationError(msg string, fields []FieldError) ValidationErrorResponse {
	return ValidationErrorResponse(BaseError{Code: "validation_error", Message: msg, Fields: fields})
}

// NewFieldsValidationError reports each named field as missing or invalid.
func NewFieldsValidationError(msg string, names []string) ValidationErrorResponse {
	fields := make([]FieldError, 0, len(names))
	for _, n := range names {
		fields = append(fields, FieldError{Field: n, Message: "missing or invalid"})
	}
	return NewValidationError(msg, fields)
}

// NewBindingError turns gin binding failures into field errors. Errors that are not
// validator errors (malformed JSON, wrong types) come back without fields.
func NewBindingError(err error) ValidationErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewValidationError("invalid request body", nil)
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   jsonFieldName(fe),
			Message: fieldMessage(fe),
			Tag:     fe.Tag(),
		})
	}
	return NewValidationError("validation failed", fields)
}

// jsonFieldName converts the struct namespace (CreateOrderRequest.Items[0].ProductID)
// to a lower snake path (items[0].product_id).
func jsonFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		parts[i] = toSnake(p)
	}
	return strings.Join(parts, ".")
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] != '[' && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must match the format " + fe.Param()
	case "gt", "gte":
		return "must be greater than " + fe.Param()
	}
	return "is invalid"
}

func NewBadRequestError(msg string) BadRequestErrorResponse {
	return BadRequestErrorResponse(BaseError{Code: "bad_request", Message: msg})
}
func NewConflictError(msg string) ConflictErrorResponse {
	return ConflictErrorResponse(BaseError{Code: "conflict", Message: msg})
}
func NewUnauthorizedError(msg string) UnauthorizedErrorResponse {
	return UnauthorizedErrorResponse(BaseError{Code: "unauthorized", Message: msg})
}
func NewForbiddenError(msg string) ForbiddenErrorResponse {
	return ForbiddenErrorResponse(BaseError{Code: "forbidden", Message: msg})
}
func NewNotFoundError(msg string) NotFoundErrorResponse {
	return NotFoundErrorResponse(BaseError{Code: "not_found", Message: msg})
}
func NewRateLimitedError(msg string) RateLimitedErrorResponse {
	return RateLimitedErrorResponse(BaseError{Code: "rate_limited", Message: msg})
}
func NewInternalError(details string) InternalErrorResponse {
	return InternalErrorResponse(BaseError{Code: "internal_error", Message: "internal server error", Details: details})
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func NewSuccessResponse(msg string) SuccessResponse { return SuccessResponse{Message: msg} }

// Page is the envelope of every paginated list.
type Page[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}

func NewPage[T any](items []T, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Count: total, Results: items}
}
