package port

import (
	"context"
	"math/big"

	"deploy_networks/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ProviderFactory builds a new, independent Provider each time it is called.
type ProviderFactory func() (Provider, error)

// NetworkEntry is the resolved form of a configured network.
type NetworkEntry struct {
	Name      string
	NetworkID uint64
	Factory   ProviderFactory
}

// NetworkConfig exposes the immutable mapping from network name to provider factory.
type NetworkConfig interface {
	// Resolve looks up a network by name. Absent names fail with entity.ErrUnknownNetwork.
	Resolve(name string) (NetworkEntry, error)

	// Names returns the configured network names in sorted order.
	Names() []string

	// Definition returns the static definition of a configured network.
	Definition(name string) (entity.NetworkDefinition, bool)
}

// BlockchainClient defines the interface for interacting with a remote EVM node.
type BlockchainClient interface {
	// NetworkVersion returns the value reported by net_version.
	NetworkVersion(ctx context.Context) (string, error)

	// ChainID returns the value reported by eth_chainId.
	ChainID(ctx context.Context) (*big.Int, error)

	// GetBalances fetches native balances for several addresses in one batch call.
	GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error)

	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error

	Close()
}

// ClientDialer opens a BlockchainClient for an endpoint.
type ClientDialer interface {
	Dial(ctx context.Context, def entity.NetworkDefinition, endpoint string) (BlockchainClient, error)
}

// EndpointProber performs a lightweight JSON-RPC health check against an endpoint.
type EndpointProber interface {
	Probe(ctx context.Context, endpoint string) (entity.ProbeResult, error)
}
