package probe

import (
	"context"
	"testing"

	"github.com/kubelookup/kubelookup/config"
	"github.com/kubelookup/kubelookup/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	resolved discovery.Resolved
	err      error
	queries  []discovery.Query
}

func (s *stubResolver) Lookup(_ context.Context, query discovery.Query) (discovery.Resolved, error) {
	s.queries = append(s.queries, query)
	return s.resolved, s.err
}

func TestStartDisabled(t *testing.T) {
	p, err := Start(&stubResolver{}, config.ProbeConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, p)

	p.Stop() // nil-safe
}

func TestRunPassesConfiguredQuery(t *testing.T) {
	stub := &stubResolver{resolved: discovery.Resolved{
		ServiceName: "canary",
		Targets:     []discovery.Target{{Host: "10-0-0-1.ns1.pod.cluster.local", Port: 8080}},
	}}
	p := &Probe{resolver: stub, cfg: config.ProbeConfig{ServiceName: "canary", PortName: "http"}}

	p.run(context.Background())

	require.Len(t, stub.queries, 1)
	assert.Equal(t, "canary", stub.queries[0].ServiceName)
	assert.Equal(t, "http", stub.queries[0].PortName)
}

func TestRunSurvivesLookupFailure(t *testing.T) {
	stub := &stubResolver{err: discovery.ErrForbidden}
	p := &Probe{resolver: stub, cfg: config.ProbeConfig{ServiceName: "canary"}}

	assert.NotPanics(t, func() {
		p.run(context.Background())
		p.run(context.Background())
	})
	assert.Len(t, stub.queries, 2)
}
