package setup

import (
	"fmt"

	"github.com/kubelookup/kubelookup/config"
	"github.com/kubelookup/kubelookup/discovery"
	"github.com/kubelookup/kubelookup/discovery/clientset"
	"github.com/kubelookup/kubelookup/discovery/kubeapi"
	"github.com/rs/zerolog/log"
)

// Resolver builds the configured resolver implementation.
func Resolver(appConfig config.ApplicationConfiguration) (discovery.Resolver, error) {
	switch appConfig.Discovery.Mode {
	case "", config.ModeAPI:
		log.Info().Msg("Enabling raw Kubernetes API resolver")
		return kubeapi.New(appConfig.Discovery)

	case config.ModeClientset:
		log.Info().Msg("Enabling clientset resolver")
		return clientset.New(appConfig.Discovery)

	default:
		return nil, fmt.Errorf("unknown discovery mode %q (want %q or %q)",
			appConfig.Discovery.Mode, config.ModeAPI, config.ModeClientset)
	}
}
