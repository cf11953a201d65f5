package errors

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnauthenticated is returned when the request carries no usable credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidToken is returned when a bearer token fails signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a bearer token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique field is already taken.
	ErrConflict = errors.New("already exists")
	// ErrPersistence wraps document store failures.
	ErrPersistence = errors.New("persistence error")
	// ErrChannel is returned for malformed or unknown real-time events.
	ErrChannel = errors.New("channel error")
)

// Envelope is the JSON wrapper of every API response.
type Envelope struct {
	Status  string      `json:"status"`
	Payload interface{} `json:"payload,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Success wraps payload in a success envelope.
func Success(payload interface{}) Envelope {
	return Envelope{Status: "success", Payload: payload}
}

// Failure wraps message in an error envelope.
func Failure(message string) Envelope {
	return Envelope{Status: "error", Message: message}
}

// ValidationError carries field-level messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// NewValidator returns a validator that reports fields by their wire names: the json
// tag, else the form or query tag, else the Go field name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// FromValidator converts validator output into a ValidationError. Other errors are
// reported under the "body" field.
func FromValidator(err error) *ValidationError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return NewValidationError("body", err.Error())
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fields[strings.ToLower(fe.Field())] = msg
	}
	return &ValidationError{Fields: fields}
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// ToEnvelope converts an HTTPError to an error envelope.
func (e *HTTPError) ToEnvelope() Envelope {
	return Failure(e.Message)
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, rootMessage(err))
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrChannel):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, ErrPersistence.Error())
	}
}

// rootMessage returns the sentinel text for auth failures so wrapped causes
// (parser details, store keys) never reach the client.
func rootMessage(err error) string {
	for _, sentinel := range []error{ErrTokenExpired, ErrInvalidToken, ErrInvalidCredentials, ErrUnauthenticated} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ErrUnauthenticated.Error()
}
