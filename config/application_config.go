package config

type Configuration struct {
	ApplicationConfigFileYmlPath string `env:"APP_CONFIG_FILE_YML_PATH" envDefault:"kubelookup.yml"`
}

// ApplicationConfiguration Must use full names for `sigs.k8s.io/yaml`
type ApplicationConfiguration struct {
	Server     Server
	Prometheus Prometheus
	Discovery  DiscoveryConfig
	Probe      ProbeConfig
	Defaults   Defaults
	Tracing    Tracing
}

type Defaults struct {
	LogResponses    bool
	PrettyPrintJson bool
}

type Server struct {
	Port int
}

type Tracing struct {
	Enabled         bool
	Endpoint        string
	SamplerFraction float64
}

type Prometheus struct {
	Path string
}
