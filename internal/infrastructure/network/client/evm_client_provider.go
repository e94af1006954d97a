package client

import (
	"context"
	"fmt"
	"time"

	"deploy_networks/internal/app/port"
	"deploy_networks/internal/domain/entity"
	"deploy_networks/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

const (
	defaultConnectionTimeout = 10 * time.Second
	defaultRPCCallTimeout    = 10 * time.Second
	defaultMaxBatchSize      = 100
)

// EVMClientDialer implements port.ClientDialer. Every Dial returns a new client,
// so providers never share a transport.
type EVMClientDialer struct {
	connectionTimeout time.Duration
	defaultRPCTimeout time.Duration
	maxBatchSize      int
	logger            port.Logger
}

// NewEVMClientDialer creates a dialer. Zero durations fall back to package defaults.
func NewEVMClientDialer(connectionTimeout, defaultRPCTimeout time.Duration, maxBatchSize int, logger port.Logger) *EVMClientDialer {
	if connectionTimeout <= 0 {
		connectionTimeout = defaultConnectionTimeout
	}
	if defaultRPCTimeout <= 0 {
		defaultRPCTimeout = defaultRPCCallTimeout
	}
	if maxBatchSize <= 0 {
		maxBatchSize = defaultMaxBatchSize
	}
	return &EVMClientDialer{
		connectionTimeout: connectionTimeout,
		defaultRPCTimeout: defaultRPCTimeout,
		maxBatchSize:      maxBatchSize,
		logger:            logger,
	}
}

// Dial connects to endpoint using the timeouts and rate limit of def.
func (d *EVMClientDialer) Dial(ctx context.Context, def entity.NetworkDefinition, endpoint string) (port.BlockchainClient, error) {
	dialCtx, cancel := context.WithTimeout(ctx, d.connectionTimeout)
	defer cancel()

	d.logger.Debug("Dialing EVM node", "network", def.Name)
	rpcClient, err := rpc.DialContext(dialCtx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC for network %s: %w", def.Name, utils.RedactError(err))
	}

	rpcTimeout := def.RPCTimeout
	if rpcTimeout <= 0 {
		rpcTimeout = d.defaultRPCTimeout
	}

	var limiter *rate.Limiter
	if def.LimiterPeriod > 0 {
		burst := def.LimiterBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Every(def.LimiterPeriod), burst)
	}

	d.logger.Info("Connected to EVM node", "network", def.Name, "rpc_timeout", rpcTimeout.String())
	return NewEVMClient(rpcClient, def.Name, rpcTimeout, limiter, d.maxBatchSize), nil
}
