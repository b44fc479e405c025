package clients

import "strings"

// Dial constructs a NodeClient appropriate for agentURL's scheme: a CoAP
// client for coap://, a gRPC client otherwise (spec.md §4.1/§6).
func Dial(agentURL string) (NodeClient, error) {
	if strings.HasPrefix(agentURL, "coap://") {
		return newCoAPNodeClient(agentURL)
	}
	return newGRPCNodeClient(agentURL)
}

// DialCluster constructs a ClusterClient for a peer cluster's controller URL.
func DialCluster(controllerURL string) (ClusterClient, error) {
	return newGRPCClusterClient(controllerURL)
}
