package port

import (
	"context"
	"math/big"
	"net/url"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Provider mediates transaction signing and network transport for one network.
// Each Provider owns its keys and its transport; providers never share state.
type Provider interface {
	// SignTx signs tx with the first derived account.
	SignTx(tx *types.Transaction) (*types.Transaction, error)

	// SignTxFrom signs tx with the given derived account.
	SignTxFrom(from common.Address, tx *types.Transaction) (*types.Transaction, error)

	// Endpoint returns the remote node URL the provider talks to.
	Endpoint() *url.URL

	// Accounts returns the derived addresses, first one is the default sender.
	Accounts() []common.Address

	// ChainID returns the chain id used for signing.
	ChainID() *big.Int

	// Client returns the transport to the remote node, dialing it on first use.
	Client(ctx context.Context) (BlockchainClient, error)

	// Close releases the transport, if one was dialed.
	Close()
}
