package entity

import "math/big"

// BalanceRequestItem represents a single item in a batch request for balances.
type BalanceRequestItem struct {
	ID            string
	WalletAddress string
	Decimals      uint8
}

// BalanceResultItem represents the result of a single balance request from a batch.
type BalanceResultItem struct {
	RequestID        string
	WalletAddress    string
	Decimals         uint8
	Balance          *big.Int
	FormattedBalance string
	Error            error
}
