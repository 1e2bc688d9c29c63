package kubeapi

import (
	"os"
	"strings"

	"github.com/kubelookup/kubelookup/config"
	"github.com/rs/zerolog/log"
)

// readFileValue reads a service-account file as text. Absence is
// normal outside a cluster; any other read error is logged and treated
// the same way so that construction always has a fallback value.
func readFileValue(path string) (string, bool) {
	bs, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msgf("Could not read [%s], falling back to default", path)
		}
		return "", false
	}
	return strings.TrimSpace(string(bs)), true
}

func readToken(cfg config.DiscoveryConfig) string {
	token, ok := readFileValue(cfg.TokenPath)
	if !ok {
		return ""
	}
	return token
}

// ReadNamespace resolves the pod namespace from the mounted
// service-account file, falling back to the configured default.
func ReadNamespace(cfg config.DiscoveryConfig) string {
	namespace, ok := readFileValue(cfg.NamespacePath)
	if !ok || namespace == "" {
		return cfg.DefaultNamespace
	}
	return namespace
}
