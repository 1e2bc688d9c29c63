// Package kubeapi resolves services by querying the Kubernetes REST API
// directly: a single authenticated GET of the namespace's pods filtered
// by label selector, parsed into a deliberately loose model. It carries
// no client-go dependency, which keeps it usable from minimal images
// and makes every byte on the wire visible to this package.
package kubeapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kubelookup/kubelookup/config"
	"github.com/kubelookup/kubelookup/discovery"
	gotel "github.com/kubelookup/kubelookup/otel"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

type Resolver struct {
	cfg        config.DiscoveryConfig
	httpClient *http.Client
	selector   *SelectorTemplate

	// resolved once at construction, immutable afterwards
	token     string
	namespace string
}

type Option func(*Resolver)

// WithHTTPClient replaces the TLS client, mainly so tests can point the
// resolver at an httptest server.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = client
	}
}

func New(cfg config.DiscoveryConfig, opts ...Option) (*Resolver, error) {
	cfg.ApplyDefaults()

	selector, err := CompileSelectorTemplate(cfg.LabelSelectorTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", discovery.ErrConfigurationMissing, err)
	}

	r := &Resolver{
		cfg:        cfg,
		httpClient: newHTTPClient(cfg.CaPath),
		selector:   selector,
		token:      readToken(cfg),
		namespace:  ReadNamespace(cfg),
	}

	for _, opt := range opts {
		opt(r)
	}

	log.Info().Str("namespace", r.namespace).Msg("Kubernetes API resolver ready")
	return r, nil
}

func (r *Resolver) Lookup(ctx context.Context, query discovery.Query) (discovery.Resolved, error) {
	timeout := query.Timeout
	if timeout <= 0 {
		timeout = r.cfg.DefaultTimeout()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := gotel.GetTracer(ctx).Start(ctx, "lookup", gotel.ClientOptions)
	span.SetAttributes(attribute.String("service.name", query.ServiceName))
	defer span.End()

	labelSelector, err := r.selector.Render(query.ServiceName)
	if err != nil {
		return discovery.Resolved{}, fmt.Errorf("%w: %v", discovery.ErrConfigurationMissing, err)
	}

	portName := query.PortName
	if portName == "" {
		portName = r.cfg.DefaultPortName
	}

	req, err := buildRequest(ctx, r.cfg, r.token, r.namespace, labelSelector)
	if err != nil {
		return discovery.Resolved{}, err
	}

	list, err := r.fetchPodList(ctx, req)
	if err != nil {
		return discovery.Resolved{}, err
	}

	targets, err := DeriveTargets(list, portName, r.namespace, r.cfg.PodDomain)
	if err != nil {
		return discovery.Resolved{}, err
	}

	if len(targets) == 0 && len(list.Items) > 0 {
		log.Warn().Str("service", query.ServiceName).Str("portName", portName).
			Msgf("Pods matched the selector [%s] but none expose the requested port name; names present: [%s]",
				labelSelector, strings.Join(PortNames(list), ", "))
	}

	return discovery.Resolved{ServiceName: query.ServiceName, Targets: targets}, nil
}
