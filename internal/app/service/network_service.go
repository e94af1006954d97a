package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"deploy_networks/internal/app/port"
	"deploy_networks/internal/domain/entity"
	"deploy_networks/internal/infrastructure/configloader"
	"deploy_networks/internal/pkg/logger"
	"deploy_networks/internal/pkg/metrics"
	"deploy_networks/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTransferGasLimit = 21000
	defaultStatusCacheTTL   = 30 * time.Second
)

// accountDetailer is implemented by providers that know the derivation paths of their accounts.
type accountDetailer interface {
	AccountDetails() []entity.Account
}

// networkServiceImpl implements port.NetworkService.
type networkServiceImpl struct {
	networks      port.NetworkConfig
	prober        port.EndpointProber
	logger        port.Logger
	statusCache   *cache.Cache
	maxConcurrent int
	probeTimeout  time.Duration
	now           func() time.Time
}

// NewNetworkService creates a new instance of networkServiceImpl.
// A nil prober skips the pre-dial endpoint probe.
func NewNetworkService(
	networks port.NetworkConfig,
	prober port.EndpointProber,
	l port.Logger,
	cfg configloader.NetworkServiceConfig,
) port.NetworkService {
	// go-cache never expires entries with a zero TTL
	ttl := time.Duration(cfg.StatusCacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultStatusCacheTTL
	}
	if l == nil {
		l = logger.Nop()
	}
	return &networkServiceImpl{
		networks:      networks,
		prober:        prober,
		logger:        l,
		statusCache:   cache.New(ttl, 2*ttl),
		maxConcurrent: cfg.MaxConcurrentChecks,
		probeTimeout:  time.Duration(cfg.ProbeTimeoutMs) * time.Millisecond,
		now:           time.Now,
	}
}

func (s *networkServiceImpl) summary(def entity.NetworkDefinition) entity.NetworkSummary {
	path := def.DerivationPath
	if path == "" {
		path = "m/44'/60'/0'/0/"
	}
	num := def.NumAddresses
	if num == 0 {
		num = 1
	}
	return entity.NetworkSummary{
		Name:             def.Name,
		NetworkID:        def.NetworkID,
		ChainID:          def.EffectiveChainID(),
		NativeSymbol:     def.NativeSymbol,
		Endpoint:         utils.RedactEndpoint(def.EndpointTemplate),
		DerivationPath:   path,
		AddressIndex:     def.AddressIndex,
		NumAddresses:     num,
		BlockExplorerURL: def.BlockExplorerURL,
	}
}

// ListNetworks returns summaries of all configured networks sorted by name.
func (s *networkServiceImpl) ListNetworks() []entity.NetworkSummary {
	names := s.networks.Names()
	out := make([]entity.NetworkSummary, 0, len(names))
	for _, name := range names {
		if def, ok := s.networks.Definition(name); ok {
			out = append(out, s.summary(def))
		}
	}
	return out
}

// Describe returns the summary of one network.
func (s *networkServiceImpl) Describe(name string) (entity.NetworkSummary, error) {
	if _, err := s.networks.Resolve(name); err != nil {
		return entity.NetworkSummary{}, err
	}
	def, _ := s.networks.Definition(name)
	return s.summary(def), nil
}

// newProvider resolves name and runs its factory. The caller must Close the provider.
func (s *networkServiceImpl) newProvider(name string) (port.NetworkEntry, port.Provider, error) {
	entry, err := s.networks.Resolve(name)
	if err != nil {
		return port.NetworkEntry{}, nil, err
	}
	provider, err := entry.Factory()
	if err != nil {
		return entry, nil, err
	}
	return entry, provider, nil
}

// Accounts derives the accounts of a network.
func (s *networkServiceImpl) Accounts(name string) ([]entity.Account, error) {
	_, provider, err := s.newProvider(name)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	if d, ok := provider.(accountDetailer); ok {
		return d.AccountDetails(), nil
	}
	addrs := provider.Accounts()
	out := make([]entity.Account, len(addrs))
	for i, a := range addrs {
		out[i] = entity.Account{Index: uint32(i), Address: a}
	}
	return out, nil
}

// Check verifies a network: probe, dial, compare network id and read balances of the derived accounts.
// The returned status is filled as far as the check got, also on error.
func (s *networkServiceImpl) Check(ctx context.Context, name string) (entity.NetworkStatus, error) {
	if cached, ok := s.statusCache.Get(name); ok {
		s.logger.Debug("Returning cached network status", "network", name)
		return cached.(entity.NetworkStatus), nil
	}

	status, err := s.check(ctx, name)
	up := err == nil && status.NetworkIDMatches
	if !errors.Is(err, entity.ErrUnknownNetwork) {
		metrics.SetNetworkUp(name, up)
	}
	if err != nil {
		status.Error = err.Error()
		s.logger.Warn("Network check failed", "network", name, "error", err)
		return status, err
	}
	s.statusCache.SetDefault(name, status)
	s.logger.Info("Network check succeeded", "network", name, "latency", status.Latency.String(), "client", status.ClientVersion)
	return status, nil
}

func (s *networkServiceImpl) check(ctx context.Context, name string) (entity.NetworkStatus, error) {
	status := entity.NetworkStatus{Name: name, CheckedAt: s.now()}

	entry, provider, err := s.newProvider(name)
	status.NetworkID = entry.NetworkID
	if err != nil {
		return status, err
	}
	defer provider.Close()

	endpoint := provider.Endpoint()
	status.Endpoint = utils.RedactURL(endpoint)

	start := time.Now()
	if s.prober != nil && (endpoint.Scheme == "http" || endpoint.Scheme == "https") {
		probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
		res, err := s.prober.Probe(probeCtx, endpoint.String())
		cancel()
		if err != nil {
			return status, fmt.Errorf("endpoint probe for %s failed: %w", name, err)
		}
		status.ClientVersion = res.ClientVersion
	}

	client, err := provider.Client(ctx)
	if err != nil {
		return status, err
	}

	version, err := client.NetworkVersion(ctx)
	if err != nil {
		return status, err
	}
	status.RemoteNetworkID = version
	status.NetworkIDMatches = version == strconv.FormatUint(entry.NetworkID, 10)

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return status, err
	}
	if chainID.IsUint64() {
		status.RemoteChainID = chainID.Uint64()
	}
	status.Latency = time.Since(start)

	def, _ := s.networks.Definition(name)
	status.Balances, err = s.balances(ctx, client, def, provider.Accounts())
	if err != nil {
		return status, err
	}

	if !status.NetworkIDMatches {
		return status, fmt.Errorf("%w: %s expects %d, node reports %s", entity.ErrNetworkMismatch, name, entry.NetworkID, version)
	}
	return status, nil
}

func (s *networkServiceImpl) balances(ctx context.Context, client port.BlockchainClient, def entity.NetworkDefinition, accounts []common.Address) ([]entity.AccountBalance, error) {
	requests := make([]entity.BalanceRequestItem, len(accounts))
	for i, a := range accounts {
		requests[i] = entity.BalanceRequestItem{ID: strconv.Itoa(i), WalletAddress: a.Hex(), Decimals: def.Decimals}
	}
	results, err := client.GetBalances(ctx, requests)
	if err != nil {
		return nil, err
	}

	out := make([]entity.AccountBalance, 0, len(results))
	for _, r := range results {
		b := entity.AccountBalance{
			Address:          r.WalletAddress,
			NetworkName:      def.Name,
			Symbol:           def.NativeSymbol,
			Decimals:         r.Decimals,
			Amount:           r.Balance,
			FormattedBalance: r.FormattedBalance,
		}
		if r.Error != nil {
			b.Error = r.Error.Error()
		}
		out = append(out, b)
	}
	return out, nil
}

// CheckAll checks names concurrently, bounded by the configured limit. An empty names slice checks every network.
func (s *networkServiceImpl) CheckAll(ctx context.Context, names []string) ([]entity.NetworkStatus, []entity.NetworkError) {
	if len(names) == 0 {
		names = s.networks.Names()
	}

	var (
		mu       sync.Mutex
		statuses = make([]entity.NetworkStatus, 0, len(names))
		failures []entity.NetworkError
	)

	eg, childCtx := errgroup.WithContext(ctx)
	if s.maxConcurrent > 0 {
		eg.SetLimit(s.maxConcurrent)
	}
	for _, name := range names {
		name := name
		eg.Go(func() error {
			status, err := s.Check(childCtx, name)
			mu.Lock()
			defer mu.Unlock()
			statuses = append(statuses, status)
			if err != nil {
				failures = append(failures, entity.NetworkError{NetworkName: name, Message: err.Error()})
			}
			// failures are collected, not propagated, so siblings keep running
			return nil
		})
	}
	_ = eg.Wait()

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	sort.Slice(failures, func(i, j int) bool { return failures[i].NetworkName < failures[j].NetworkName })
	s.logger.Info("Network checks complete", "checked", len(statuses), "failed", len(failures))
	return statuses, failures
}

// SignTransfer builds and signs a legacy value transfer, broadcasting it when req.Send is set.
func (s *networkServiceImpl) SignTransfer(ctx context.Context, req entity.TransferRequest) (entity.TransferResult, error) {
	if !common.IsHexAddress(req.To) {
		return entity.TransferResult{}, fmt.Errorf("invalid recipient address %q", req.To)
	}
	if req.From != "" && !common.IsHexAddress(req.From) {
		return entity.TransferResult{}, fmt.Errorf("invalid sender address %q", req.From)
	}
	if req.GasPrice != nil && req.GasPrice.Sign() < 0 {
		return entity.TransferResult{}, fmt.Errorf("negative gas price %s", req.GasPrice)
	}

	_, provider, err := s.newProvider(req.Network)
	if err != nil {
		return entity.TransferResult{}, err
	}
	defer provider.Close()

	def, _ := s.networks.Definition(req.Network)
	value, err := utils.ParseDecimal(req.Value, def.Decimals)
	if err != nil {
		return entity.TransferResult{}, fmt.Errorf("invalid value: %w", err)
	}

	from := provider.Accounts()[0]
	if req.From != "" {
		from = common.HexToAddress(req.From)
	}
	to := common.HexToAddress(req.To)

	gasLimit := req.GasLimit
	if gasLimit == 0 {
		gasLimit = defaultTransferGasLimit
	}

	var client port.BlockchainClient
	needsNode := req.Nonce == nil || req.GasPrice == nil || req.Send
	if needsNode {
		client, err = provider.Client(ctx)
		if err != nil {
			return entity.TransferResult{}, err
		}
	}

	var nonce uint64
	if req.Nonce != nil {
		nonce = *req.Nonce
	} else if nonce, err = client.PendingNonceAt(ctx, from); err != nil {
		return entity.TransferResult{}, fmt.Errorf("failed to fetch nonce for %s: %w", from.Hex(), err)
	}

	gasPrice := req.GasPrice
	if gasPrice == nil {
		if gasPrice, err = client.SuggestGasPrice(ctx); err != nil {
			return entity.TransferResult{}, fmt.Errorf("failed to fetch gas price: %w", err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: new(big.Int).Set(gasPrice),
	})
	signed, err := provider.SignTxFrom(from, tx)
	if err != nil {
		return entity.TransferResult{}, err
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return entity.TransferResult{}, fmt.Errorf("failed to encode signed transaction: %w", err)
	}

	result := entity.TransferResult{
		Network:  req.Network,
		ChainID:  provider.ChainID().String(),
		From:     from.Hex(),
		To:       to.Hex(),
		Value:    strings.TrimSpace(req.Value),
		Nonce:    nonce,
		GasPrice: gasPrice.String(),
		GasLimit: gasLimit,
		Hash:     signed.Hash().Hex(),
		RawTx:    hexutil.Encode(raw),
	}

	if req.Send {
		if err := client.SendTransaction(ctx, signed); err != nil {
			return result, fmt.Errorf("failed to broadcast transaction %s: %w", result.Hash, err)
		}
		result.Sent = true
		s.logger.Info("Transaction broadcast", "network", req.Network, "hash", result.Hash, "from", result.From)
	}
	return result, nil
}
