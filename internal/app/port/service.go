package port

import (
	"context"

	"deploy_networks/internal/domain/entity"
)

// NetworkService is the application facade used by the CLI and the REST API.
type NetworkService interface {
	ListNetworks() []entity.NetworkSummary
	Describe(name string) (entity.NetworkSummary, error)
	Accounts(name string) ([]entity.Account, error)

	// Check verifies a network against its remote node. Results are cached for a short time.
	Check(ctx context.Context, name string) (entity.NetworkStatus, error)

	// CheckAll checks several networks concurrently; a failing network never cancels the others.
	CheckAll(ctx context.Context, names []string) ([]entity.NetworkStatus, []entity.NetworkError)

	SignTransfer(ctx context.Context, req entity.TransferRequest) (entity.TransferResult, error)
}
