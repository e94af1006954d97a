package hdwallet

import (
	"math/big"

	"deploy_networks/internal/app/port"
	"deploy_networks/internal/domain/entity"
)

type options struct {
	network        string
	def            entity.NetworkDefinition
	passphrase     string
	derivationPath string
	addressIndex   uint32
	numAddresses   uint32
	chainID        *big.Int
	dialer         port.ClientDialer
	logger         port.Logger
}

// Option configures a Provider.
type Option func(*options)

// WithNetwork applies the derivation and chain settings of def.
func WithNetwork(def entity.NetworkDefinition) Option {
	return func(o *options) {
		o.network = def.Name
		o.def = def
		if def.DerivationPath != "" {
			o.derivationPath = def.DerivationPath
		}
		o.addressIndex = def.AddressIndex
		if def.NumAddresses > 0 {
			o.numAddresses = def.NumAddresses
		}
		if id := def.EffectiveChainID(); id != 0 {
			o.chainID = new(big.Int).SetUint64(id)
		}
	}
}

// WithPassphrase sets the optional BIP-39 passphrase.
func WithPassphrase(passphrase string) Option {
	return func(o *options) { o.passphrase = passphrase }
}

// WithDerivationPath overrides the path prefix the address index is appended to.
func WithDerivationPath(prefix string) Option {
	return func(o *options) { o.derivationPath = prefix }
}

// WithAddresses derives count addresses starting at index.
func WithAddresses(index, count uint32) Option {
	return func(o *options) {
		o.addressIndex = index
		o.numAddresses = count
	}
}

// WithChainID sets the chain id used for signing.
func WithChainID(id uint64) Option {
	return func(o *options) { o.chainID = new(big.Int).SetUint64(id) }
}

// WithDialer sets the dialer used by Provider.Client.
func WithDialer(d port.ClientDialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithLogger sets the provider logger.
func WithLogger(l port.Logger) Option {
	return func(o *options) { o.logger = l }
}
