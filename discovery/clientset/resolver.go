// Package clientset implements the same resolution contract as
// kubeapi, over the official client-go clientset. Useful out of
// cluster, where kubeconfig auth does the heavy lifting. Target
// derivation is shared with kubeapi so both modes resolve identically.
package clientset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kubelookup/kubelookup/config"
	"github.com/kubelookup/kubelookup/discovery"
	"github.com/kubelookup/kubelookup/discovery/kubeapi"
	"github.com/rs/zerolog/log"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

type Resolver struct {
	client    kubernetes.Interface
	cfg       config.DiscoveryConfig
	selector  *kubeapi.SelectorTemplate
	namespace string
}

func New(cfg config.DiscoveryConfig) (*Resolver, error) {
	var restConfig *rest.Config
	var err error

	if cfg.Kubeconfig != "" {
		// Out-of-cluster: use kubeconfig file
		restConfig, err = clientcmd.BuildConfigFromFlags("", cfg.Kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to build config from kubeconfig: %w", err)
		}
		log.Info().Str("kubeconfig", cfg.Kubeconfig).Msg("Using kubeconfig for K8s authentication")
	} else {
		// In-cluster: use service account
		restConfig, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
		log.Info().Msg("Using in-cluster K8s authentication")
	}

	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	return NewWithClient(cfg, client)
}

// NewWithClient wires an existing clientset, which is also how tests
// inject a fake one.
func NewWithClient(cfg config.DiscoveryConfig, client kubernetes.Interface) (*Resolver, error) {
	cfg.ApplyDefaults()

	selector, err := kubeapi.CompileSelectorTemplate(cfg.LabelSelectorTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", discovery.ErrConfigurationMissing, err)
	}

	return &Resolver{
		client:    client,
		cfg:       cfg,
		selector:  selector,
		namespace: kubeapi.ReadNamespace(cfg),
	}, nil
}

func (r *Resolver) Lookup(ctx context.Context, query discovery.Query) (discovery.Resolved, error) {
	timeout := query.Timeout
	if timeout <= 0 {
		timeout = r.cfg.DefaultTimeout()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	labelSelector, err := r.selector.Render(query.ServiceName)
	if err != nil {
		return discovery.Resolved{}, fmt.Errorf("%w: %v", discovery.ErrConfigurationMissing, err)
	}

	portName := query.PortName
	if portName == "" {
		portName = r.cfg.DefaultPortName
	}

	pods, err := r.client.CoreV1().Pods(r.namespace).List(ctx, metav1.ListOptions{LabelSelector: labelSelector})
	if err != nil {
		return discovery.Resolved{}, classifyListError(err)
	}

	list := toPodList(pods.Items)
	targets, err := kubeapi.DeriveTargets(list, portName, r.namespace, r.cfg.PodDomain)
	if err != nil {
		return discovery.Resolved{}, err
	}

	if len(targets) == 0 && len(list.Items) > 0 {
		log.Warn().Str("service", query.ServiceName).Str("portName", portName).
			Msgf("Pods matched the selector [%s] but none expose the requested port name", labelSelector)
	}

	return discovery.Resolved{ServiceName: query.ServiceName, Targets: targets}, nil
}

func classifyListError(err error) error {
	switch {
	case apierrors.IsForbidden(err):
		return fmt.Errorf("%w: %v", discovery.ErrForbidden, err)
	case apierrors.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", discovery.ErrTimeout, err)
	}

	var statusErr *apierrors.StatusError
	if errors.As(err, &statusErr) {
		return &discovery.StatusError{Code: int(statusErr.ErrStatus.Code)}
	}

	return fmt.Errorf("%w: %v", discovery.ErrNetwork, err)
}

// toPodList narrows the typed API objects down to the loose model the
// shared derivation works on.
func toPodList(pods []corev1.Pod) *kubeapi.PodList {
	list := &kubeapi.PodList{Items: make([]kubeapi.Pod, 0, len(pods))}

	for _, pod := range pods {
		item := kubeapi.Pod{
			Metadata: &kubeapi.PodMetadata{},
			Spec:     &kubeapi.PodSpec{},
			Status:   &kubeapi.PodStatus{PodIP: pod.Status.PodIP},
		}
		if pod.DeletionTimestamp != nil {
			item.Metadata.DeletionTimestamp = pod.DeletionTimestamp.UTC().Format(time.RFC3339)
		}
		for _, container := range pod.Spec.Containers {
			ports := make([]kubeapi.ContainerPort, 0, len(container.Ports))
			for _, port := range container.Ports {
				ports = append(ports, kubeapi.ContainerPort{
					Name:          port.Name,
					ContainerPort: int(port.ContainerPort),
				})
			}
			item.Spec.Containers = append(item.Spec.Containers, kubeapi.Container{Ports: ports})
		}
		list.Items = append(list.Items, item)
	}

	return list
}
