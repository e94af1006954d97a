package entity

import "math/big"

// NetworkSummary is the secret-free public view of a configured network.
type NetworkSummary struct {
	Name             string `json:"name"`
	NetworkID        uint64 `json:"networkId"`
	ChainID          uint64 `json:"chainId"`
	NativeSymbol     string `json:"nativeSymbol"`
	Endpoint         string `json:"endpoint"` // scheme and host only
	DerivationPath   string `json:"derivationPath"`
	AddressIndex     uint32 `json:"addressIndex"`
	NumAddresses     uint32 `json:"numAddresses"`
	BlockExplorerURL string `json:"blockExplorerUrl,omitempty"`
}

// TransferRequest describes a native value transfer to sign with a configured provider.
// Nil Nonce and GasPrice are filled from the remote node.
type TransferRequest struct {
	Network  string
	From     string // empty means the first derived account
	To       string
	Value    string // decimal amount in native units, e.g. "0.01"
	Nonce    *uint64
	GasPrice *big.Int
	GasLimit uint64
	Send     bool
}

// TransferResult is a signed (and possibly broadcast) transfer.
type TransferResult struct {
	Network  string `json:"network"`
	ChainID  string `json:"chainId"`
	From     string `json:"from"`
	To       string `json:"to"`
	Value    string `json:"value"`
	Nonce    uint64 `json:"nonce"`
	GasPrice string `json:"gasPrice"`
	GasLimit uint64 `json:"gasLimit"`
	Hash     string `json:"hash"`
	RawTx    string `json:"rawTx"`
	Sent     bool   `json:"sent"`
}
