package hdwallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"sync"

	"deploy_networks/internal/app/port"
	"deploy_networks/internal/domain/entity"
	"deploy_networks/internal/pkg/logger"
	"deploy_networks/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var supportedSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
	"ws":    {},
	"wss":   {},
}

// Provider is an HD wallet backed port.Provider. Keys are derived once at construction,
// the transport is dialed on first use of Client.
type Provider struct {
	network  string
	def      entity.NetworkDefinition
	endpoint *url.URL
	chainID  *big.Int
	signer   types.Signer
	accounts []entity.Account
	keys     map[common.Address]*ecdsa.PrivateKey
	dialer   port.ClientDialer
	logger   port.Logger

	mu     sync.Mutex
	client port.BlockchainClient
}

var _ port.Provider = (*Provider)(nil)

// NewProvider derives accounts from mnemonic and binds them to endpoint.
// Malformed input fails with entity.ErrProviderConstruction.
func NewProvider(mnemonic, endpoint string, opts ...Option) (*Provider, error) {
	o := options{
		derivationPath: DefaultDerivationPath,
		numAddresses:   1,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	fail := func(reason string, err error) error {
		return &entity.ProviderConstructionError{Network: o.network, Reason: reason, Err: err}
	}

	if err := checkAddressRange(o.addressIndex, o.numAddresses); err != nil {
		return nil, fail("invalid address range", err)
	}
	if o.chainID == nil || o.chainID.Sign() <= 0 {
		return nil, fail("chain id is required", nil)
	}

	u, err := ParseEndpoint(endpoint)
	if err != nil {
		return nil, fail("invalid endpoint", err)
	}

	seed, err := seedFromMnemonic(NormalizeMnemonic(mnemonic), o.passphrase)
	if err != nil {
		return nil, fail("invalid mnemonic", err)
	}

	derived, err := deriveKeys(seed, o.derivationPath, o.addressIndex, o.numAddresses)
	if err != nil {
		return nil, fail("key derivation failed", err)
	}

	p := &Provider{
		network:  o.network,
		def:      o.def,
		endpoint: u,
		chainID:  new(big.Int).Set(o.chainID),
		signer:   types.LatestSignerForChainID(o.chainID),
		accounts: make([]entity.Account, 0, len(derived)),
		keys:     make(map[common.Address]*ecdsa.PrivateKey, len(derived)),
		dialer:   o.dialer,
		logger:   o.logger,
	}
	for _, d := range derived {
		p.accounts = append(p.accounts, d.account)
		p.keys[d.account.Address] = d.key
	}

	p.logger.Debug("HD wallet provider constructed",
		"network", p.network,
		"endpoint", utils.RedactURL(u),
		"accounts", len(p.accounts),
		"first_account", p.accounts[0].Address.Hex())
	return p, nil
}

// ParseEndpoint validates a node URL: supported scheme, non-empty host and no leftover template text.
func ParseEndpoint(endpoint string) (*url.URL, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("empty endpoint")
	}
	if strings.ContainsAny(endpoint, "<>{} \t") {
		return nil, errors.New("endpoint contains unsubstituted placeholder text")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		// the parse error quotes the whole endpoint, secrets included
		return nil, errors.New("malformed endpoint URL")
	}
	if _, ok := supportedSchemes[strings.ToLower(u.Scheme)]; !ok {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

// SignTx signs tx with the first derived account.
func (p *Provider) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	return p.SignTxFrom(p.accounts[0].Address, tx)
}

// SignTxFrom signs tx with the key of from.
func (p *Provider) SignTxFrom(from common.Address, tx *types.Transaction) (*types.Transaction, error) {
	key, ok := p.keys[from]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownAccount, from.Hex())
	}
	signed, err := types.SignTx(tx, p.signer, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction from %s: %w", from.Hex(), err)
	}
	return signed, nil
}

// Endpoint returns a copy of the node URL.
func (p *Provider) Endpoint() *url.URL {
	u := *p.endpoint
	if p.endpoint.User != nil {
		user := *p.endpoint.User
		u.User = &user
	}
	return &u
}

// Accounts returns the derived addresses in derivation order.
func (p *Provider) Accounts() []common.Address {
	out := make([]common.Address, len(p.accounts))
	for i, a := range p.accounts {
		out[i] = a.Address
	}
	return out
}

// AccountDetails returns the derived accounts with their paths.
func (p *Provider) AccountDetails() []entity.Account {
	out := make([]entity.Account, len(p.accounts))
	copy(out, p.accounts)
	return out
}

// ChainID returns the chain id used for signing.
func (p *Provider) ChainID() *big.Int {
	return new(big.Int).Set(p.chainID)
}

// Client dials the endpoint on first use and returns the same client afterwards.
func (p *Provider) Client(ctx context.Context) (port.BlockchainClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	if p.dialer == nil {
		return nil, errors.New("provider has no transport dialer")
	}

	def := p.def
	if def.Name == "" {
		def.Name = p.network
	}
	c, err := p.dialer.Dial(ctx, def, p.endpoint.String())
	if err != nil {
		p.logger.Error("Failed to dial node", "network", p.network, "endpoint", utils.RedactURL(p.endpoint), "error", err)
		return nil, fmt.Errorf("failed to dial %s: %w", utils.RedactURL(p.endpoint), err)
	}
	p.client = c
	return c, nil
}

// Close releases the transport. The provider can dial again afterwards.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}
