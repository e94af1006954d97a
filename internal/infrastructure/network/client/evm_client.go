package client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"deploy_networks/internal/app/port"
	"deploy_networks/internal/domain/entity"
	"deploy_networks/internal/pkg/metrics"
	"deploy_networks/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

// EVMClient implements the port.BlockchainClient interface for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	network        string
	rpcCallTimeout time.Duration
	limiter        *rate.Limiter
	maxBatchSize   int
}

var _ port.BlockchainClient = (*EVMClient)(nil)

// NewEVMClient wraps an already dialed rpc client.
// A nil limiter disables rate limiting.
func NewEVMClient(rpcClient *rpc.Client, network string, rpcCallTimeout time.Duration, limiter *rate.Limiter, maxBatchSize int) *EVMClient {
	return &EVMClient{
		ethClient:      ethclient.NewClient(rpcClient),
		network:        network,
		rpcCallTimeout: rpcCallTimeout,
		limiter:        limiter,
		maxBatchSize:   maxBatchSize,
	}
}

// call waits for the limiter, bounds fn by the per-call timeout and records its duration.
// Transport errors name the node by scheme and host only: providers keep access keys in the path.
func (c *EVMClient) call(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait for %s: %w", method, err)
		}
	}
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	start := time.Now()
	err := fn(callCtx)
	metrics.ObserveRPC(c.network, method, start, err)
	return utils.RedactError(err)
}

// NetworkVersion returns the net_version of the remote node.
func (c *EVMClient) NetworkVersion(ctx context.Context) (string, error) {
	var version string
	err := c.call(ctx, "net_version", func(ctx context.Context) error {
		return c.ethClient.Client().CallContext(ctx, &version, "net_version")
	})
	if err != nil {
		return "", fmt.Errorf("net_version on %s: %w", c.network, err)
	}
	return version, nil
}

// ChainID returns the eth_chainId of the remote node.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := c.call(ctx, "eth_chainId", func(ctx context.Context) error {
		var err error
		id, err = c.ethClient.ChainID(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("eth_chainId on %s: %w", c.network, err)
	}
	return id, nil
}

// GetBalances fetches native balances using JSON-RPC batch requests of at most maxBatchSize elements.
func (c *EVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	results := make([]entity.BalanceResultItem, 0, len(requests))
	for _, batch := range utils.Batch(requests, c.maxBatchSize) {
		batchResults, err := c.getBalancesBatch(ctx, batch)
		results = append(results, batchResults...)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (c *EVMClient) getBalancesBatch(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	batchElems := make([]rpc.BatchElem, len(requests))
	results := make([]entity.BalanceResultItem, len(requests))

	for i, reqItem := range requests {
		results[i] = entity.BalanceResultItem{
			RequestID:     reqItem.ID,
			WalletAddress: reqItem.WalletAddress,
			Decimals:      reqItem.Decimals,
		}
		batchElems[i] = rpc.BatchElem{
			Method: "eth_getBalance",
			Args:   []interface{}{common.HexToAddress(reqItem.WalletAddress), "latest"},
			Result: new(*hexutil.Big),
		}
	}

	err := c.call(ctx, "eth_getBalance", func(ctx context.Context) error {
		return c.ethClient.Client().BatchCallContext(ctx, batchElems)
	})
	if err != nil {
		return results, fmt.Errorf("RPC batch call failed: %w", err)
	}

	for i, elem := range batchElems {
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("failed to fetch balance of %s: %w", requests[i].WalletAddress, elem.Error)
			continue
		}
		result, ok := elem.Result.(**hexutil.Big)
		if !ok || result == nil || *result == nil {
			results[i].Balance = big.NewInt(0)
		} else {
			results[i].Balance = (*big.Int)(*result)
		}

		formatted, err := utils.FormatBigInt(results[i].Balance, results[i].Decimals)
		if err != nil {
			results[i].Error = fmt.Errorf("failed to format balance of %s: %w", requests[i].WalletAddress, err)
			continue
		}
		results[i].FormattedBalance = formatted
	}
	return results, nil
}

// PendingNonceAt returns the pending nonce of account.
func (c *EVMClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	var nonce uint64
	err := c.call(ctx, "eth_getTransactionCount", func(ctx context.Context) error {
		var err error
		nonce, err = c.ethClient.PendingNonceAt(ctx, account)
		return err
	})
	return nonce, err
}

// SuggestGasPrice returns eth_gasPrice.
func (c *EVMClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var price *big.Int
	err := c.call(ctx, "eth_gasPrice", func(ctx context.Context) error {
		var err error
		price, err = c.ethClient.SuggestGasPrice(ctx)
		return err
	})
	return price, err
}

// SendTransaction broadcasts a signed transaction.
func (c *EVMClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.call(ctx, "eth_sendRawTransaction", func(ctx context.Context) error {
		return c.ethClient.SendTransaction(ctx, tx)
	})
}

// Close closes the underlying rpc client.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}
