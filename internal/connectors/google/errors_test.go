package google

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := WrapError(fmt.Errorf("call: %w", &googleapi.Error{Code: tt.code, Message: "boom"}))
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "boom")
		})
	}
}

func TestWrapError_Passthrough(t *testing.T) {
	assert.NoError(t, WrapError(nil))

	plain := errors.New("dial tcp: refused")
	assert.Same(t, plain, WrapError(plain))

	server := &googleapi.Error{Code: http.StatusInternalServerError}
	assert.Equal(t, error(server), WrapError(server))
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsUnauthorized(&googleapi.Error{Code: http.StatusUnauthorized}))
	assert.True(t, IsUnauthorized(ErrUnauthorized))
	assert.False(t, IsUnauthorized(&googleapi.Error{Code: http.StatusForbidden}))

	assert.True(t, IsRateLimited(&googleapi.Error{Code: http.StatusTooManyRequests}))
	assert.True(t, IsRateLimited(fmt.Errorf("x: %w", ErrRateLimited)))
	assert.False(t, IsRateLimited(errors.New("other")))
}
