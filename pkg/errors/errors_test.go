package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[int]int{
		ErrCodeInvalidParams:    http.StatusBadRequest,
		ErrCodeISBNDuplicate:    http.StatusBadRequest,
		ErrCodeAlreadyReviewed:  http.StatusBadRequest,
		ErrCodeUnauthorized:     http.StatusUnauthorized,
		ErrCodeAccountInactive:  http.StatusUnauthorized,
		ErrCodeForbidden:        http.StatusForbidden,
		ErrCodeAdminRequired:    http.StatusForbidden,
		ErrCodeSelfDeactivation: http.StatusBadRequest,
		ErrCodeBookNotFound:     http.StatusNotFound,
		ErrCodeInternal:         http.StatusInternalServerError,
		ErrCodeStorageError:     http.StatusInternalServerError,
		ErrCodeTooManyRequests:  http.StatusTooManyRequests,
		ErrCodeServerBusy:       http.StatusServiceUnavailable,
		ErrCodeTimeout:          http.StatusGatewayTimeout,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), "code %d", code)
	}
}

func TestGetAppError(t *testing.T) {
	t.Run("AppError原样返回", func(t *testing.T) {
		wrapped := fmt.Errorf("context: %w", ErrBookNotFound)
		assert.Same(t, ErrBookNotFound, GetAppError(wrapped))
	})

	t.Run("普通错误包装为内部错误且不泄露细节", func(t *testing.T) {
		appErr := GetAppError(errors.New("dial tcp 10.0.0.1:3306: connection refused"))
		assert.Equal(t, ErrCodeInternal, appErr.Code)
		assert.Equal(t, "Server error", appErr.Message)
		assert.NotContains(t, appErr.Message, "10.0.0.1")
	})
}

func TestValidation(t *testing.T) {
	err := InvalidField("title", "Title is required")

	assert.Equal(t, ErrCodeInvalidParams, err.Code)
	assert.Equal(t, []FieldError{{Field: "title", Message: "Title is required"}}, err.Details)
	assert.True(t, errors.Is(err, ErrInvalidParams))
	assert.False(t, errors.Is(err, ErrBookNotFound))
}
