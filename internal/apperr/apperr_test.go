package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeValidation))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(CodeForbidden))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodeConflict))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Code("SOMETHING_ELSE")))
}

func TestAsThroughWrapping(t *testing.T) {
	base := Conflict("isim kullanılıyor").WithDetail("name", "Croissant")
	wrapped := fmt.Errorf("rename: %w", base)

	got := As(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, CodeConflict, got.Code())
	assert.Equal(t, "Croissant", got.Details()["name"])
	assert.True(t, Is(wrapped, CodeConflict))
	assert.False(t, Is(wrapped, CodeNotFound))
	assert.Nil(t, As(errors.New("plain")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeInternal, cause, "kayıt başarısız")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestNilReceiver(t *testing.T) {
	var e *Error
	assert.Equal(t, CodeInternal, e.Code())
	assert.Equal(t, "", e.Error())
	assert.Nil(t, e.WithDetail("k", 1))
}
