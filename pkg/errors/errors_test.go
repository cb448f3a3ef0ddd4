package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error wins", New(ErrInternal, http.StatusTeapot, "brew"), http.StatusTeapot},
		{"invalid input", fmt.Errorf("parsing: %w", ErrInvalidInput), http.StatusBadRequest},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(Newf(ErrInvalidInput, 0, "damping %v", 1.5)))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("loading: %w", ErrDocumentRead)))
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrCollectionRead, 0, "opening %s", "collection.txt")
	assert.True(t, Is(err, ErrCollectionRead))
	assert.Equal(t, "collection listing unreadable: opening collection.txt", err.Error())
}
