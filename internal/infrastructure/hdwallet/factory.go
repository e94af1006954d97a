package hdwallet

import (
	"fmt"

	"deploy_networks/internal/app/port"
	"deploy_networks/internal/domain/entity"
	"deploy_networks/internal/infrastructure/secrets"
	"deploy_networks/internal/pkg/logger"
	"deploy_networks/internal/pkg/metrics"
)

// NewFactory returns a ProviderFactory for def. Secrets are looked up, and the endpoint
// template expanded, only when the factory is invoked.
func NewFactory(def entity.NetworkDefinition, src port.SecretSource, dialer port.ClientDialer, log port.Logger) port.ProviderFactory {
	if log == nil {
		log = logger.Nop()
	}
	return func() (port.Provider, error) {
		p, err := build(def, src, dialer, log)
		metrics.ProviderConstructions.WithLabelValues(def.Name, metrics.Result(err)).Inc()
		if err != nil {
			log.Warn("Provider construction failed", "network", def.Name, "error", err)
			return nil, err
		}
		return p, nil
	}
}

func build(def entity.NetworkDefinition, src port.SecretSource, dialer port.ClientDialer, log port.Logger) (*Provider, error) {
	mnemonic, ok := src.Lookup(def.MnemonicSecret)
	if !ok {
		return nil, &entity.ProviderConstructionError{
			Network: def.Name,
			Reason:  fmt.Sprintf("invalid mnemonic: secret %q is not set", def.MnemonicSecret),
		}
	}

	endpoint, err := secrets.Expand(def.EndpointTemplate, src)
	if err != nil {
		return nil, &entity.ProviderConstructionError{Network: def.Name, Reason: "invalid endpoint", Err: err}
	}

	opts := []Option{WithNetwork(def), WithDialer(dialer), WithLogger(log)}
	if def.PassphraseSecret != "" {
		passphrase, ok := src.Lookup(def.PassphraseSecret)
		if !ok {
			return nil, &entity.ProviderConstructionError{
				Network: def.Name,
				Reason:  fmt.Sprintf("passphrase secret %q is not set", def.PassphraseSecret),
			}
		}
		opts = append(opts, WithPassphrase(passphrase))
	}

	return NewProvider(mnemonic, endpoint, opts...)
}
