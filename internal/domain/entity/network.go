package entity

import "time"

// NetworkDefinition holds the static description of a deployment target.
// This structure is defined at the domain level to be used across application and infrastructure layers.
type NetworkDefinition struct {
	Name      string `json:"name" yaml:"name"`
	NetworkID uint64 `json:"networkId" yaml:"networkId"`
	// ChainID is used for EIP-155 signing. Zero means "same as NetworkID".
	ChainID          uint64 `json:"chainId" yaml:"chainId"`
	NativeSymbol     string `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals         uint8  `json:"decimals" yaml:"decimals"`
	EndpointTemplate string `json:"-" yaml:"endpoint"` // may contain ${VAR} placeholders
	MnemonicSecret   string `json:"-" yaml:"mnemonicSecret"`
	PassphraseSecret string `json:"-" yaml:"passphraseSecret,omitempty"`
	DerivationPath   string `json:"derivationPath" yaml:"derivationPath"`
	AddressIndex     uint32 `json:"addressIndex" yaml:"addressIndex"`
	NumAddresses     uint32 `json:"numAddresses" yaml:"numAddresses"`
	BlockExplorerURL string `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`

	RPCTimeout    time.Duration `json:"-" yaml:"-"`
	LimiterPeriod time.Duration `json:"-" yaml:"-"`
	LimiterBurst  int           `json:"-" yaml:"-"`
}

// EffectiveChainID returns the chain id used for transaction signing.
func (d NetworkDefinition) EffectiveChainID() uint64 {
	if d.ChainID != 0 {
		return d.ChainID
	}
	return d.NetworkID
}
