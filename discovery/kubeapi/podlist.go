package kubeapi

import (
	"encoding/json"

	"github.com/kubelookup/kubelookup/discovery"
)

// Deliberately loose pod model: only the fields resolution needs, with
// everything optional the way the REST API actually serves it. Unknown
// fields are ignored.
type PodList struct {
	Items []Pod `json:"items"`
}

type Pod struct {
	Metadata *PodMetadata `json:"metadata"`
	Spec     *PodSpec     `json:"spec"`
	Status   *PodStatus   `json:"status"`
}

type PodMetadata struct {
	DeletionTimestamp string `json:"deletionTimestamp"`
}

type PodSpec struct {
	Containers []Container `json:"containers"`
}

type Container struct {
	Ports []ContainerPort `json:"ports"`
}

type ContainerPort struct {
	Name          string `json:"name"`
	ContainerPort int    `json:"containerPort"`
}

type PodStatus struct {
	PodIP string `json:"podIP"`
}

const excerptLimit = 1024

// unmarshalPodList parses a 200 response body. A JSON object without
// `items` is an empty list; anything that is not a JSON object fails
// with the offending body preserved for diagnostics.
func unmarshalPodList(body []byte) (*PodList, error) {
	var list PodList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &discovery.UnmarshalError{Excerpt: excerpt(body), Err: err}
	}
	if list.Items == nil {
		list.Items = []Pod{}
	}
	return &list, nil
}

func excerpt(body []byte) string {
	if len(body) > excerptLimit {
		return string(body[:excerptLimit])
	}
	return string(body)
}
