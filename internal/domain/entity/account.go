package entity

import "github.com/ethereum/go-ethereum/common"

// Account is a single address derived from the configured mnemonic.
type Account struct {
	Index          uint32         `json:"index"`
	Address        common.Address `json:"address"`
	DerivationPath string         `json:"derivationPath"`
}
