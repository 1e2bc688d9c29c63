package kubeapi

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/kubelookup/kubelookup/discovery"
)

// DeriveTargets turns a pod list into resolvable endpoints. Terminating
// pods contribute nothing; only ports whose name equals portName match,
// and unnamed ports never match; a pod without a known IP emits no
// target. The hostname follows the pod DNS convention:
// 10.0.1.5 in ns1 under cluster.local -> 10-0-1-5.ns1.pod.cluster.local.
//
// An unparseable pod IP fails the whole derivation. The API server is
// the source of these literals, so a bad one means corrupt data, not a
// target worth silently dropping.
func DeriveTargets(list *PodList, portName, namespace, domain string) ([]discovery.Target, error) {
	targets := make([]discovery.Target, 0)

	for _, pod := range list.Items {
		if pod.Metadata != nil && pod.Metadata.DeletionTimestamp != "" {
			continue
		}
		if pod.Spec == nil || pod.Status == nil || pod.Status.PodIP == "" {
			continue
		}

		ip := pod.Status.PodIP
		for _, container := range pod.Spec.Containers {
			for _, port := range container.Ports {
				if port.Name == "" || port.Name != portName {
					continue
				}

				address := net.ParseIP(ip)
				if address == nil {
					return nil, &discovery.AddressError{IP: ip}
				}

				targets = append(targets, discovery.Target{
					Host: fmt.Sprintf("%s.%s.pod.%s", strings.ReplaceAll(ip, ".", "-"), namespace, domain),
					Port: port.ContainerPort,
					IP:   address,
				})
			}
		}
	}

	return targets, nil
}

// PortNames collects the distinct container port names present across
// all pods, for the "nothing matched" diagnostic.
func PortNames(list *PodList) []string {
	seen := hashset.New()
	for _, pod := range list.Items {
		if pod.Spec == nil {
			continue
		}
		for _, container := range pod.Spec.Containers {
			for _, port := range container.Ports {
				if port.Name != "" {
					seen.Add(port.Name)
				}
			}
		}
	}

	names := make([]string, 0, seen.Size())
	for _, v := range seen.Values() {
		names = append(names, v.(string))
	}
	sort.Strings(names)
	return names
}
