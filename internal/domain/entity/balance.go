package entity

import "math/big"

// AccountBalance represents the native balance of a derived account on a network.
type AccountBalance struct {
	Address          string   `json:"address" yaml:"address"`
	NetworkName      string   `json:"networkName" yaml:"networkName"`
	Symbol           string   `json:"symbol" yaml:"symbol"`
	Decimals         uint8    `json:"decimals" yaml:"decimals"`
	Amount           *big.Int `json:"-" yaml:"amount"`
	FormattedBalance string   `json:"formattedBalance" yaml:"formattedBalance"`
	Error            string   `json:"error,omitempty" yaml:"error,omitempty"`
}
