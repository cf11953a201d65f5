package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", fmt.Errorf("find product: %w", ErrNotFound), http.StatusNotFound, "not found"},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"expired", fmt.Errorf("parse: %w", ErrTokenExpired), http.StatusUnauthorized, "token expired"},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized, "invalid token"},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{"conflict", fmt.Errorf("email: %w", ErrConflict), http.StatusConflict, "email: already exists"},
		{"validation", NewValidationError("price", "required"), http.StatusBadRequest, "validation failed: price: required"},
		{"persistence", fmt.Errorf("save: %w", ErrPersistence), http.StatusInternalServerError, "persistence error"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "persistence error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.message, httpErr.Message)
			assert.Equal(t, Envelope{Status: "error", Message: tt.message}, httpErr.ToEnvelope())
		})
	}
}

func TestFromValidator(t *testing.T) {
	type input struct {
		Name  string `validate:"required"`
		Stock int    `validate:"gte=0"`
	}
	err := validator.New().Struct(input{Stock: -1})
	require.Error(t, err)

	ve := FromValidator(err)
	assert.Equal(t, map[string]string{"name": "required", "stock": "gte=0"}, ve.Fields)
	assert.Equal(t, "validation failed: name: required; stock: gte=0", ve.Error())
}

func TestFromValidator_WireNames(t *testing.T) {
	type input struct {
		FirstName string `json:"first_name" validate:"required"`
		ProductID string `json:"product_id,omitempty" validate:"required"`
		Price     string `form:"price" validate:"required"`
		Sort      string `query:"sort" validate:"required"`
	}
	err := NewValidator().Struct(input{})
	require.Error(t, err)

	ve := FromValidator(err)
	assert.Equal(t, map[string]string{
		"first_name": "required",
		"product_id": "required",
		"price":      "required",
		"sort":       "required",
	}, ve.Fields)
}

func TestFromValidator_NonValidatorError(t *testing.T) {
	ve := FromValidator(fmt.Errorf("unexpected EOF"))
	assert.Equal(t, "unexpected EOF", ve.Fields["body"])
}
