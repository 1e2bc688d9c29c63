package kubeapi

import (
	"errors"
	"net"
	"testing"

	"github.com/kubelookup/kubelookup/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func podWithPorts(ip string, ports ...ContainerPort) Pod {
	return Pod{
		Spec:   &PodSpec{Containers: []Container{{Ports: ports}}},
		Status: &PodStatus{PodIP: ip},
	}
}

func TestDeriveTargetsHostnameDerivation(t *testing.T) {
	list := &PodList{Items: []Pod{
		podWithPorts("10.0.1.5", ContainerPort{Name: "http", ContainerPort: 8080}),
	}}

	targets, err := DeriveTargets(list, "http", "ns1", "cluster.local")
	require.NoError(t, err)
	require.Len(t, targets, 1)

	assert.Equal(t, "10-0-1-5.ns1.pod.cluster.local", targets[0].Host)
	assert.Equal(t, 8080, targets[0].Port)
	assert.Equal(t, net.ParseIP("10.0.1.5"), targets[0].IP)
}

func TestDeriveTargetsSkipsTerminatingPods(t *testing.T) {
	deleted := podWithPorts("10.0.1.5", ContainerPort{Name: "http", ContainerPort: 8080})
	deleted.Metadata = &PodMetadata{DeletionTimestamp: "2026-08-30T10:00:00Z"}

	list := &PodList{Items: []Pod{deleted}}

	targets, err := DeriveTargets(list, "http", "ns1", "cluster.local")
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestDeriveTargetsPortNameMatching(t *testing.T) {
	list := &PodList{Items: []Pod{
		podWithPorts("10.0.1.5",
			ContainerPort{Name: "http", ContainerPort: 8080},
			ContainerPort{Name: "metrics", ContainerPort: 9090},
		),
	}}

	tests := []struct {
		portName     string
		expectedPort int
		expectedLen  int
	}{
		{"http", 8080, 1},
		{"metrics", 9090, 1},
		{"grpc", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.portName, func(t *testing.T) {
			targets, err := DeriveTargets(list, tt.portName, "ns1", "cluster.local")
			require.NoError(t, err)
			require.Len(t, targets, tt.expectedLen)
			if tt.expectedLen > 0 {
				assert.Equal(t, tt.expectedPort, targets[0].Port)
			}
		})
	}
}

func TestDeriveTargetsUnnamedPortNeverMatches(t *testing.T) {
	list := &PodList{Items: []Pod{
		podWithPorts("10.0.1.5", ContainerPort{ContainerPort: 8080}),
	}}

	for _, portName := range []string{"", "http"} {
		targets, err := DeriveTargets(list, portName, "ns1", "cluster.local")
		require.NoError(t, err)
		assert.Empty(t, targets, "port name %q must not match an unnamed port", portName)
	}
}

func TestDeriveTargetsRequiresPodIP(t *testing.T) {
	noStatus := Pod{Spec: &PodSpec{Containers: []Container{
		{Ports: []ContainerPort{{Name: "http", ContainerPort: 8080}}},
	}}}
	emptyIP := podWithPorts("", ContainerPort{Name: "http", ContainerPort: 8080})

	list := &PodList{Items: []Pod{noStatus, emptyIP}}

	targets, err := DeriveTargets(list, "http", "ns1", "cluster.local")
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestDeriveTargetsSkipsPodsWithoutSpec(t *testing.T) {
	list := &PodList{Items: []Pod{
		{Status: &PodStatus{PodIP: "10.0.1.5"}},
	}}

	targets, err := DeriveTargets(list, "http", "ns1", "cluster.local")
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestDeriveTargetsMultipleContainersAndPods(t *testing.T) {
	multiContainer := Pod{
		Spec: &PodSpec{Containers: []Container{
			{Ports: []ContainerPort{{Name: "http", ContainerPort: 8080}}},
			{Ports: []ContainerPort{{Name: "http", ContainerPort: 8081}}},
		}},
		Status: &PodStatus{PodIP: "10.0.1.5"},
	}
	other := podWithPorts("10.0.2.9", ContainerPort{Name: "http", ContainerPort: 8080})

	list := &PodList{Items: []Pod{multiContainer, other}}

	targets, err := DeriveTargets(list, "http", "ns1", "cluster.local")
	require.NoError(t, err)
	require.Len(t, targets, 3)

	assert.Equal(t, "10-0-1-5.ns1.pod.cluster.local", targets[0].Host)
	assert.Equal(t, 8080, targets[0].Port)
	assert.Equal(t, 8081, targets[1].Port)
	assert.Equal(t, "10-0-2-9.ns1.pod.cluster.local", targets[2].Host)
}

func TestDeriveTargetsInvalidIPFailsLookup(t *testing.T) {
	list := &PodList{Items: []Pod{
		podWithPorts("not-an-ip", ContainerPort{Name: "http", ContainerPort: 8080}),
	}}

	targets, err := DeriveTargets(list, "http", "ns1", "cluster.local")
	assert.Nil(t, targets)

	var addressErr *discovery.AddressError
	require.True(t, errors.As(err, &addressErr))
	assert.Equal(t, "not-an-ip", addressErr.IP)
}

func TestPortNames(t *testing.T) {
	list := &PodList{Items: []Pod{
		podWithPorts("10.0.1.5",
			ContainerPort{Name: "metrics", ContainerPort: 9090},
			ContainerPort{Name: "http", ContainerPort: 8080},
			ContainerPort{ContainerPort: 7070}, // unnamed, excluded
		),
		podWithPorts("10.0.1.6", ContainerPort{Name: "http", ContainerPort: 8080}),
		{},
	}}

	assert.Equal(t, []string{"http", "metrics"}, PortNames(list))
}
