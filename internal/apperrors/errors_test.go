package apperrors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Run("typed error", func(t *testing.T) {
		err := NotFound("transaction")
		assert.Equal(t, CodeNotFound, CodeOf(err))
		assert.Equal(t, "transaction not found", err.Error())
	})

	t.Run("wrapped typed error", func(t *testing.T) {
		err := fmt.Errorf("extend: %w", New(CodeInvalidStateTransition, "transaction is completed"))
		assert.Equal(t, CodeInvalidStateTransition, CodeOf(err))
		assert.True(t, Is(err, CodeInvalidStateTransition))
	})

	t.Run("untyped error", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("boom")))
	})
}

func TestError_Unwrap(t *testing.T) {
	err := Wrap(CodeNotFound, "customer not found", sql.ErrNoRows)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Contains(t, err.Error(), "customer not found")
}

func TestHTTPStatus(t *testing.T) {
	cases := map[string]int{
		CodeValidation:             http.StatusUnprocessableEntity,
		CodeNotFound:               http.StatusNotFound,
		CodeDuplicateKey:           http.StatusConflict,
		CodeForeignKeyViolation:    http.StatusUnprocessableEntity,
		CodeUnauthenticated:        http.StatusUnauthorized,
		CodeUnauthorized:           http.StatusForbidden,
		CodeInvalidStateTransition: http.StatusConflict,
		CodeTransientConflict:      http.StatusServiceUnavailable,
		CodeInternal:               http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, HTTPStatus(code), code)
	}
}
