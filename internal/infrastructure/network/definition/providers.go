package networkdefinition

import (
	"fmt"
	"sort"
	"strings"

	"deploy_networks/internal/app/port"
	"deploy_networks/internal/domain/entity"
	"deploy_networks/internal/infrastructure/configloader"
	"deploy_networks/internal/pkg/logger"
	"deploy_networks/internal/pkg/metrics"
)

// FactoryBuilder turns a definition into the factory stored in the network mapping.
type FactoryBuilder func(def entity.NetworkDefinition) port.ProviderFactory

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Mainnet = entity.NetworkDefinition{
		Name:             "mainnet",
		NetworkID:        1,
		NativeSymbol:     "ETH",
		Decimals:         18,
		EndpointTemplate: "https://mainnet.infura.io/v3/${INFURA_API_KEY}",
		BlockExplorerURL: "https://etherscan.io",
	}
	Ropsten = entity.NetworkDefinition{
		Name:             "ropsten",
		NetworkID:        3,
		NativeSymbol:     "ETH",
		Decimals:         18,
		EndpointTemplate: "https://ropsten.infura.io/v3/${INFURA_API_KEY}",
		BlockExplorerURL: "https://ropsten.etherscan.io",
	}
	Rinkeby = entity.NetworkDefinition{
		Name:             "rinkeby",
		NetworkID:        4,
		NativeSymbol:     "ETH",
		Decimals:         18,
		EndpointTemplate: "https://rinkeby.infura.io/v3/${INFURA_API_KEY}",
		BlockExplorerURL: "https://rinkeby.etherscan.io",
	}
	Goerli = entity.NetworkDefinition{
		Name:             "goerli",
		NetworkID:        5,
		NativeSymbol:     "ETH",
		Decimals:         18,
		EndpointTemplate: "https://goerli.infura.io/v3/${INFURA_API_KEY}",
		BlockExplorerURL: "https://goerli.etherscan.io",
	}
	Kovan = entity.NetworkDefinition{
		Name:             "kovan",
		NetworkID:        42,
		NativeSymbol:     "ETH",
		Decimals:         18,
		EndpointTemplate: "https://kovan.infura.io/v3/${INFURA_API_KEY}",
		BlockExplorerURL: "https://kovan.etherscan.io",
	}
	Sepolia = entity.NetworkDefinition{
		Name:             "sepolia",
		NetworkID:        11155111,
		NativeSymbol:     "ETH",
		Decimals:         18,
		EndpointTemplate: "https://sepolia.infura.io/v3/${INFURA_API_KEY}",
		BlockExplorerURL: "https://sepolia.etherscan.io",
	}
	Holesky = entity.NetworkDefinition{
		Name:             "holesky",
		NetworkID:        17000,
		NativeSymbol:     "ETH",
		Decimals:         18,
		EndpointTemplate: "https://holesky.infura.io/v3/${INFURA_API_KEY}",
		BlockExplorerURL: "https://holesky.etherscan.io",
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[string]entity.NetworkDefinition{
	Mainnet.Name: Mainnet,
	Ropsten.Name: Ropsten,
	Rinkeby.Name: Rinkeby,
	Goerli.Name:  Goerli,
	Kovan.Name:   Kovan,
	Sepolia.Name: Sepolia,
	Holesky.Name: Holesky,
}

// KnownDefinition returns the built-in definition of a well-known network.
func KnownDefinition(name string) (entity.NetworkDefinition, bool) {
	def, ok := allKnownDefinitions[strings.ToLower(name)]
	return def, ok
}

// DefinitionsFromConfig merges configured networks over the built-in table.
// Only networks listed in cfg are returned; unknown names must carry a network id and an endpoint.
func DefinitionsFromConfig(cfg *configloader.Config) ([]entity.NetworkDefinition, error) {
	defs := make([]entity.NetworkDefinition, 0, len(cfg.Networks))
	for _, n := range cfg.Networks {
		def, known := KnownDefinition(n.Name)
		def.Name = n.Name

		if n.NetworkID != 0 {
			def.NetworkID = n.NetworkID
		}
		if n.ChainID != 0 {
			def.ChainID = n.ChainID
		}
		if n.Endpoint != "" {
			def.EndpointTemplate = n.Endpoint
		}
		if n.NativeSymbol != "" {
			def.NativeSymbol = n.NativeSymbol
		}
		if def.NativeSymbol == "" {
			def.NativeSymbol = "ETH"
		}
		if def.Decimals == 0 {
			def.Decimals = 18
		}
		def.MnemonicSecret = n.MnemonicSecret
		def.PassphraseSecret = n.PassphraseSecret
		def.DerivationPath = n.DerivationPath
		def.AddressIndex = n.AddressIndex
		def.NumAddresses = n.NumAddresses
		def.RPCTimeout = n.RPCTimeout()
		def.LimiterPeriod = n.LimiterPeriodDuration()
		def.LimiterBurst = n.LimiterBurst

		if !known && def.EndpointTemplate == "" {
			return nil, fmt.Errorf("network %q is not a known network and has no endpoint configured", n.Name)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// NetworkConfig is the immutable mapping from network name to definition and provider factory.
// It is safe for concurrent use: nothing is mutated after NewNetworkConfig returns.
type NetworkConfig struct {
	logger  port.Logger
	defs    map[string]entity.NetworkDefinition
	entries map[string]port.NetworkEntry
	names   []string
}

var _ port.NetworkConfig = (*NetworkConfig)(nil)

// NewNetworkConfig validates defs and binds a factory to each of them.
func NewNetworkConfig(defs []entity.NetworkDefinition, build FactoryBuilder, log port.Logger) (*NetworkConfig, error) {
	if build == nil {
		return nil, fmt.Errorf("factory builder is required")
	}
	if log == nil {
		log = logger.Nop()
	}

	c := &NetworkConfig{
		logger:  log,
		defs:    make(map[string]entity.NetworkDefinition, len(defs)),
		entries: make(map[string]port.NetworkEntry, len(defs)),
		names:   make([]string, 0, len(defs)),
	}
	for i, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("network definition %d has no name", i)
		}
		if def.NetworkID == 0 {
			return nil, fmt.Errorf("network %q has no network id", def.Name)
		}
		if _, dup := c.defs[def.Name]; dup {
			return nil, fmt.Errorf("duplicate network name %q", def.Name)
		}
		c.defs[def.Name] = def
		c.entries[def.Name] = port.NetworkEntry{
			Name:      def.Name,
			NetworkID: def.NetworkID,
			Factory:   build(def),
		}
		c.names = append(c.names, def.Name)
		log.Debug(fmt.Sprintf("Network '%s' configured (network id %d, chain id %d)", def.Name, def.NetworkID, def.EffectiveChainID()))
	}
	sort.Strings(c.names)

	log.Info("Network configuration initialized", "networks", strings.Join(c.names, ","))
	return c, nil
}

// Resolve looks up name. It has no side effects besides metrics.
func (c *NetworkConfig) Resolve(name string) (port.NetworkEntry, error) {
	entry, ok := c.entries[name]
	if !ok {
		metrics.ResolveTotal.WithLabelValues("unknown", "error").Inc()
		return port.NetworkEntry{}, &entity.UnknownNetworkError{Name: name}
	}
	metrics.ResolveTotal.WithLabelValues(name, "ok").Inc()
	return entry, nil
}

// Names returns the configured network names, sorted.
func (c *NetworkConfig) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Definition returns the definition of a configured network.
func (c *NetworkConfig) Definition(name string) (entity.NetworkDefinition, bool) {
	def, ok := c.defs[name]
	return def, ok
}

// Definitions returns all configured definitions ordered by name.
func (c *NetworkConfig) Definitions() []entity.NetworkDefinition {
	out := make([]entity.NetworkDefinition, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.defs[name])
	}
	return out
}
