package entity

import "time"

// NetworkStatus is the outcome of checking a configured network against its remote node.
type NetworkStatus struct {
	Name             string           `json:"name"`
	NetworkID        uint64           `json:"networkId"`
	Endpoint         string           `json:"endpoint"` // scheme and host only
	ClientVersion    string           `json:"clientVersion,omitempty"`
	RemoteNetworkID  string           `json:"remoteNetworkId,omitempty"`
	RemoteChainID    uint64           `json:"remoteChainId,omitempty"`
	NetworkIDMatches bool             `json:"networkIdMatches"`
	Latency          time.Duration    `json:"latency"`
	Balances         []AccountBalance `json:"balances,omitempty"`
	CheckedAt        time.Time        `json:"checkedAt"`
	Error            string           `json:"error,omitempty"`
}

// NetworkError is a per-network failure reported by bulk operations.
type NetworkError struct {
	NetworkName string `json:"networkName"`
	Message     string `json:"message"`
}

// ProbeResult is what a JSON-RPC endpoint reports about itself.
type ProbeResult struct {
	ClientVersion  string        `json:"clientVersion"`
	NetworkVersion string        `json:"networkVersion"`
	Latency        time.Duration `json:"latency"`
}
