package kubeapi

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/kubelookup/kubelookup/discovery"
	"github.com/rs/zerolog/log"
)

// newHTTPClient builds the shared TLS client, trusting the cluster CA
// when the mounted certificate exists. Missing CA degrades to the
// system roots with a warning; timeouts are applied per lookup via
// context, never here.
func newHTTPClient(caPath string) *http.Client {
	tlsConfig := &tls.Config{}

	pem, err := os.ReadFile(caPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msgf("Could not read CA certificate [%s], using system roots", caPath)
		}
	} else {
		pool := x509.NewCertPool()
		if pool.AppendCertsFromPEM(pem) {
			tlsConfig.RootCAs = pool
		} else {
			log.Warn().Msgf("No usable certificates in [%s], using system roots", caPath)
		}
	}

	return &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
	}
}

// fetchPodList performs the single round trip and classifies the
// outcome. The context deadline bounds the request and the full body
// read.
func (r *Resolver) fetchPodList(ctx context.Context, req *http.Request) (*PodList, error) {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		list, unmarshalErr := unmarshalPodList(body)
		if unmarshalErr != nil {
			log.Error().Int("status", resp.StatusCode).Str("body", excerpt(body)).Err(unmarshalErr).
				Msg("Pod list response did not match the expected shape")
			return nil, unmarshalErr
		}
		return list, nil

	case http.StatusForbidden:
		log.Warn().Str("body", string(body)).
			Msg("Forbidden by the Kubernetes API, check the service account's RBAC bindings")
		return nil, fmt.Errorf("%w: %s", discovery.ErrForbidden, req.URL.Path)

	default:
		log.Warn().Int("status", resp.StatusCode).Str("body", string(body)).
			Msg("Non-success response from the Kubernetes API")
		return nil, &discovery.StatusError{Code: resp.StatusCode}
	}
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", discovery.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", discovery.ErrNetwork, err)
}
