package main

import (
	"fmt"

	"deploy_networks/internal/domain/entity"
	"deploy_networks/internal/pkg/utils"

	"github.com/spf13/cobra"
)

type resolveOutput struct {
	Name      string   `json:"name"`
	NetworkID uint64   `json:"networkId"`
	ChainID   string   `json:"chainId"`
	Endpoint  string   `json:"endpoint"`
	Accounts  []string `json:"accounts"`
}

type checkOutput struct {
	Networks []entity.NetworkStatus `json:"networks"`
	Errors   []entity.NetworkError  `json:"errors,omitempty"`
}

func newNetworksCmd(config *baseConfiguration) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "Lists the configured networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.printJSON(config.service.ListNetworks())
		},
	}
}

func newResolveCmd(config *baseConfiguration) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name>",
		Short: "Resolves a network and builds its provider",
		Long:  `Resolves a network by name, invokes its provider factory and prints the network id, chain id, redacted endpoint and derived accounts.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := config.networks.Resolve(args[0])
			if err != nil {
				return err
			}
			provider, err := entry.Factory()
			if err != nil {
				return err
			}
			defer provider.Close()

			out := resolveOutput{
				Name:      entry.Name,
				NetworkID: entry.NetworkID,
				ChainID:   provider.ChainID().String(),
				Endpoint:  utils.RedactURL(provider.Endpoint()),
			}
			for _, a := range provider.Accounts() {
				out.Accounts = append(out.Accounts, a.Hex())
			}
			return config.printJSON(out)
		},
	}
}

func newAccountsCmd(config *baseConfiguration) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts <name>",
		Short: "Prints the HD wallet accounts derived for a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := config.service.Accounts(args[0])
			if err != nil {
				return err
			}
			return config.printJSON(accounts)
		},
	}
}

func newCheckCmd(config *baseConfiguration) *cobra.Command {
	return &cobra.Command{
		Use:   "check [name...]",
		Short: "Checks network nodes",
		Long:  `Checks that the node of each named network (all networks when none is named) is reachable, reports the expected network id and serves balances of the derived accounts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, failures := config.service.CheckAll(cmd.Context(), args)
			if err := config.printJSON(checkOutput{Networks: statuses, Errors: failures}); err != nil {
				return err
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d of %d network checks failed", len(failures), len(statuses))
			}
			return nil
		},
	}
}
