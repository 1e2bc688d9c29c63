package discovery

import (
	"context"
	"net"
	"time"
)

// Query identifies a single point-in-time service resolution.
type Query struct {
	ServiceName string
	PortName    string // optional; empty means use the configured default
	Timeout     time.Duration
}

// Target is one resolvable network endpoint of a service.
type Target struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	IP   net.IP `json:"ip,omitempty"`
}

type Resolved struct {
	ServiceName string   `json:"serviceName"`
	Targets     []Target `json:"targets"`
}

// Resolver resolves a logical service name to its live endpoints. Each
// Lookup is a single attempt with no caching and no internal retries;
// implementations must be safe for concurrent use.
type Resolver interface {
	Lookup(ctx context.Context, query Query) (Resolved, error)
}
