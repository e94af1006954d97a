package main

import (
	"fmt"
	"math/big"

	"deploy_networks/internal/domain/entity"

	"github.com/spf13/cobra"
)

type signFlags struct {
	From     string
	To       string
	Value    string
	Nonce    int64
	GasPrice string
	GasLimit uint64
	Send     bool
}

func newSignCmd(config *baseConfiguration) *cobra.Command {
	flags := &signFlags{}
	var cmd = &cobra.Command{
		Use:   "sign <name>",
		Short: "Signs a value transfer with a derived account",
		Long:  `Builds a legacy value transfer on the named network, signs it with the first derived account (or --from) and prints the raw transaction. Nonce and gas price are read from the node unless given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(args[0])
			if err != nil {
				return err
			}
			res, err := config.service.SignTransfer(cmd.Context(), req)
			if err != nil {
				return err
			}
			return config.printJSON(res)
		},
	}
	cmd.Flags().StringVar(&flags.From, "from", "", "sender address, defaults to the first derived account")
	cmd.Flags().StringVar(&flags.To, "to", "", "recipient address")
	cmd.Flags().StringVar(&flags.Value, "value", "0", "amount in the native currency, e.g. 0.5")
	cmd.Flags().Int64Var(&flags.Nonce, "nonce", -1, "transaction nonce, read from the node when negative")
	cmd.Flags().StringVar(&flags.GasPrice, "gas-price", "", "gas price in wei, read from the node when empty")
	cmd.Flags().Uint64Var(&flags.GasLimit, "gas-limit", 0, "gas limit (default 21000)")
	cmd.Flags().BoolVar(&flags.Send, "send", false, "broadcast the signed transaction")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (f *signFlags) request(network string) (entity.TransferRequest, error) {
	req := entity.TransferRequest{
		Network:  network,
		From:     f.From,
		To:       f.To,
		Value:    f.Value,
		GasLimit: f.GasLimit,
		Send:     f.Send,
	}
	if f.Nonce >= 0 {
		nonce := uint64(f.Nonce)
		req.Nonce = &nonce
	}
	if f.GasPrice != "" {
		gasPrice, ok := new(big.Int).SetString(f.GasPrice, 10)
		if !ok || gasPrice.Sign() < 0 {
			return entity.TransferRequest{}, fmt.Errorf("invalid gas price %q", f.GasPrice)
		}
		req.GasPrice = gasPrice
	}
	return req, nil
}
