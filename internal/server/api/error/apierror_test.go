package apierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	nf := ErrNotFound("no route")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"value", nf, 404},
		{"pointer", &nf, 404},
		{"wrapped value", fmt.Errorf("lookup: %w", ErrUnavailable("dsu disabled")), 503},
		{"plain error", errors.New("boom"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapError(tt.err).Status)
		})
	}
	assert.Equal(t, "boom", WrapError(errors.New("boom")).Detail)
}
