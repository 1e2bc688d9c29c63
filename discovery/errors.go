package discovery

import (
	"errors"
	"fmt"
)

// Failure classification for lookups. Callers distinguish the sentinel
// errors via errors.Is and the carrier types via errors.As; all of them
// surface out of Lookup unwrapped by any retry logic.
var (
	ErrConfigurationMissing = errors.New("discovery configuration missing")
	ErrForbidden            = errors.New("kubernetes api access forbidden")
	ErrTimeout              = errors.New("lookup timed out")
	ErrNetwork              = errors.New("kubernetes api unreachable")
)

// StatusError reports a non-200, non-403 response from the API server.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("kubernetes api returned non-success status %d", e.Code)
}

// UnmarshalError reports a 200 response whose body did not match the
// expected pod-list shape. Excerpt preserves the offending body for
// diagnostics.
type UnmarshalError struct {
	Excerpt string
	Err     error
}

func (e *UnmarshalError) Error() string {
	return fmt.Sprintf("unmarshalling pod list failed: %v", e.Err)
}

func (e *UnmarshalError) Unwrap() error {
	return e.Err
}

// AddressError reports a pod IP literal that could not be parsed into a
// network address. Unexpected for API-server data, so it fails the
// whole lookup rather than dropping a single target.
type AddressError struct {
	IP string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("cannot resolve pod IP literal %q to an address", e.IP)
}

// KindOf maps a lookup error to a stable label, for metrics and logs.
func KindOf(err error) string {
	if err == nil {
		return "success"
	}

	switch {
	case errors.Is(err, ErrConfigurationMissing):
		return "configuration_missing"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNetwork):
		return "network_failure"
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return "non_success_status"
	}
	var unmarshalErr *UnmarshalError
	if errors.As(err, &unmarshalErr) {
		return "unmarshal_failure"
	}
	var addressErr *AddressError
	if errors.As(err, &addressErr) {
		return "address_resolution_failure"
	}

	return "unknown"
}
