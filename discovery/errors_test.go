package discovery

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, "success"},
		{"configuration missing", fmt.Errorf("%w: KUBERNETES_SERVICE_HOST unset", ErrConfigurationMissing), "configuration_missing"},
		{"forbidden", ErrForbidden, "forbidden"},
		{"timeout", fmt.Errorf("pods query: %w", ErrTimeout), "timeout"},
		{"network", ErrNetwork, "network_failure"},
		{"non-success status", &StatusError{Code: 503}, "non_success_status"},
		{"unmarshal", &UnmarshalError{Excerpt: "{}", Err: errors.New("missing items")}, "unmarshal_failure"},
		{"address", &AddressError{IP: "not-an-ip"}, "address_resolution_failure"},
		{"unclassified", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestStatusErrorCarriesCode(t *testing.T) {
	err := fmt.Errorf("lookup failed: %w", &StatusError{Code: 418})

	var statusErr *StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 418, statusErr.Code)
	assert.Contains(t, err.Error(), "418")
}

func TestUnmarshalErrorPreservesBody(t *testing.T) {
	err := &UnmarshalError{Excerpt: `["unexpected"]`, Err: errors.New("json: cannot unmarshal array")}

	var unmarshalErr *UnmarshalError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &unmarshalErr))
	assert.Equal(t, `["unexpected"]`, unmarshalErr.Excerpt)
}
