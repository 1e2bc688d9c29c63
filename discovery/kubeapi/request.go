package kubeapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/kubelookup/kubelookup/config"
	"github.com/kubelookup/kubelookup/discovery"
)

// buildRequest assembles the authenticated pods query. The API host and
// port are read from the environment on every call, per the platform's
// service-link contract; a missing or unparseable value means the
// process is not running where it thinks it is.
func buildRequest(ctx context.Context, cfg config.DiscoveryConfig, token, namespace, labelSelector string) (*http.Request, error) {
	host := os.Getenv(cfg.ApiServiceHostEnvName)
	portValue := os.Getenv(cfg.ApiServicePortEnvName)
	if host == "" || portValue == "" {
		return nil, fmt.Errorf("%w: both %s and %s must be set",
			discovery.ErrConfigurationMissing, cfg.ApiServiceHostEnvName, cfg.ApiServicePortEnvName)
	}

	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, fmt.Errorf("%w: %s value %q is not a valid port",
			discovery.ErrConfigurationMissing, cfg.ApiServicePortEnvName, portValue)
	}

	query := url.Values{}
	query.Set("labelSelector", labelSelector)

	u := url.URL{
		Scheme:   "https",
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     fmt.Sprintf("/api/v1/namespaces/%s/pods", namespace),
		RawQuery: query.Encode(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building pods request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return req, nil
}
