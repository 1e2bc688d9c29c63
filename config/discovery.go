package config

import "time"

const (
	ModeAPI       = "api"       // raw HTTPS calls against the pods API
	ModeClientset = "clientset" // official client-go clientset
)

type DiscoveryConfig struct {
	Mode       string // ModeAPI (default) or ModeClientset
	Kubeconfig string // ModeClientset only; empty = in-cluster auth

	ApiServiceHostEnvName string
	ApiServicePortEnvName string

	TokenPath     string
	NamespacePath string
	CaPath        string

	LabelSelectorTemplate string
	DefaultPortName       string
	DefaultNamespace      string
	PodDomain             string

	DefaultTimeoutMillis int
}

type ProbeConfig struct {
	Enabled        bool
	ServiceName    string
	PortName       string
	IntervalMillis int
}

// ApplyDefaults fills in the platform's well-known service-account paths
// and environment variable names for anything the config file left unset.
func (c *DiscoveryConfig) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeAPI
	}
	if c.ApiServiceHostEnvName == "" {
		c.ApiServiceHostEnvName = "KUBERNETES_SERVICE_HOST"
	}
	if c.ApiServicePortEnvName == "" {
		c.ApiServicePortEnvName = "KUBERNETES_SERVICE_PORT"
	}
	if c.TokenPath == "" {
		c.TokenPath = "/var/run/secrets/kubernetes.io/serviceaccount/token"
	}
	if c.NamespacePath == "" {
		c.NamespacePath = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"
	}
	if c.CaPath == "" {
		c.CaPath = "/var/run/secrets/kubernetes.io/serviceaccount/ca.crt"
	}
	if c.LabelSelectorTemplate == "" {
		c.LabelSelectorTemplate = "app={{ .ServiceName }}"
	}
	if c.DefaultNamespace == "" {
		c.DefaultNamespace = "default"
	}
	if c.PodDomain == "" {
		c.PodDomain = "cluster.local"
	}
	if c.DefaultTimeoutMillis <= 0 {
		c.DefaultTimeoutMillis = 5000
	}
}

func (c *DiscoveryConfig) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutMillis) * time.Millisecond
}
