package networkdefinition

import (
	"errors"
	"testing"
	"time"

	"deploy_networks/internal/app/port"
	"deploy_networks/internal/domain/entity"
	"deploy_networks/internal/infrastructure/configloader"
	"deploy_networks/internal/infrastructure/hdwallet"
	"deploy_networks/internal/infrastructure/secrets"
	"deploy_networks/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "test test test test test test test test test test test junk"

func newTestConfig(t *testing.T, src port.SecretSource) *NetworkConfig {
	t.Helper()
	defs, err := DefinitionsFromConfig(configloader.Default())
	require.NoError(t, err)
	cfg, err := NewNetworkConfig(defs, func(def entity.NetworkDefinition) port.ProviderFactory {
		return hdwallet.NewFactory(def, src, nil, logger.Nop())
	}, logger.Nop())
	require.NoError(t, err)
	return cfg
}

func TestResolveRopsten(t *testing.T) {
	cfg := newTestConfig(t, secrets.MapSource{})

	entry, err := cfg.Resolve("ropsten")
	require.NoError(t, err)
	assert.Equal(t, "ropsten", entry.Name)
	assert.Equal(t, uint64(3), entry.NetworkID)
	require.NotNil(t, entry.Factory)
}

func TestResolveUnknown(t *testing.T) {
	cfg := newTestConfig(t, secrets.MapSource{})

	_, err := cfg.Resolve("nonexistent")
	require.ErrorIs(t, err, entity.ErrUnknownNetwork)
	var une *entity.UnknownNetworkError
	require.True(t, errors.As(err, &une))
	assert.Equal(t, "nonexistent", une.Name)

	// built-in but not activated by the configuration
	_, err = cfg.Resolve("mainnet")
	require.ErrorIs(t, err, entity.ErrUnknownNetwork)
}

func TestResolveIsLazy(t *testing.T) {
	src := secrets.MapSource{}
	cfg := newTestConfig(t, src)

	// no secrets yet: resolving works, invoking the factory does not
	entry, err := cfg.Resolve("ropsten")
	require.NoError(t, err)
	_, err = entry.Factory()
	require.ErrorIs(t, err, entity.ErrProviderConstruction)

	src["MNEMONIC"] = testMnemonic
	src["INFURA_API_KEY"] = "key"
	p1, err := entry.Factory()
	require.NoError(t, err)
	p2, err := entry.Factory()
	require.NoError(t, err)
	assert.NotSame(t, p1, p2)
	assert.Equal(t, p1.Accounts(), p2.Accounts())
	assert.Equal(t, "https://ropsten.infura.io/v3/key", p1.Endpoint().String())
}

func TestMappingIsImmutable(t *testing.T) {
	cfg := newTestConfig(t, secrets.MapSource{})

	names := cfg.Names()
	require.Equal(t, []string{"ropsten"}, names)
	names[0] = "tampered"
	assert.Equal(t, []string{"ropsten"}, cfg.Names())

	defs := cfg.Definitions()
	defs[0].NetworkID = 99
	def, ok := cfg.Definition("ropsten")
	require.True(t, ok)
	assert.Equal(t, uint64(3), def.NetworkID)

	first, err := cfg.Resolve("ropsten")
	require.NoError(t, err)
	second, err := cfg.Resolve("ropsten")
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.NetworkID, second.NetworkID)
}

func TestNewNetworkConfigValidation(t *testing.T) {
	build := func(entity.NetworkDefinition) port.ProviderFactory { return nil }

	_, err := NewNetworkConfig([]entity.NetworkDefinition{Ropsten, Ropsten}, build, logger.Nop())
	require.ErrorContains(t, err, "duplicate network name")

	_, err = NewNetworkConfig([]entity.NetworkDefinition{{NetworkID: 1}}, build, logger.Nop())
	require.ErrorContains(t, err, "no name")

	_, err = NewNetworkConfig([]entity.NetworkDefinition{{Name: "x"}}, build, logger.Nop())
	require.ErrorContains(t, err, "no network id")

	_, err = NewNetworkConfig([]entity.NetworkDefinition{Ropsten}, nil, logger.Nop())
	require.Error(t, err)
}

func TestDefinitionsFromConfig(t *testing.T) {
	cfg, err := configloader.Parse([]byte(`
networks:
  - name: sepolia
    numAddresses: 2
  - name: local
    networkId: 5777
    chainId: 1337
    endpoint: http://127.0.0.1:7545
    mnemonicSecret: GANACHE_MNEMONIC
    rpcTimeoutMs: 1500
`))
	require.NoError(t, err)

	defs, err := DefinitionsFromConfig(cfg)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, uint64(11155111), defs[0].NetworkID)
	assert.Equal(t, uint64(11155111), defs[0].EffectiveChainID())
	assert.Equal(t, "https://sepolia.infura.io/v3/${INFURA_API_KEY}", defs[0].EndpointTemplate)
	assert.Equal(t, uint32(2), defs[0].NumAddresses)
	assert.Equal(t, "MNEMONIC", defs[0].MnemonicSecret)

	assert.Equal(t, uint64(5777), defs[1].NetworkID)
	assert.Equal(t, uint64(1337), defs[1].EffectiveChainID())
	assert.Equal(t, "GANACHE_MNEMONIC", defs[1].MnemonicSecret)
	assert.Equal(t, 1500*time.Millisecond, defs[1].RPCTimeout)
	assert.Equal(t, "ETH", defs[1].NativeSymbol)
	assert.Equal(t, uint8(18), defs[1].Decimals)
}

func TestDefinitionsFromConfigUnknownWithoutEndpoint(t *testing.T) {
	cfg, err := configloader.Parse([]byte("networks:\n  - name: mystery\n    networkId: 9\n"))
	require.NoError(t, err)
	_, err = DefinitionsFromConfig(cfg)
	require.ErrorContains(t, err, "mystery")
}

func TestKnownDefinition(t *testing.T) {
	def, ok := KnownDefinition("Ropsten")
	require.True(t, ok)
	assert.Equal(t, uint64(3), def.NetworkID)
	_, ok = KnownDefinition("nope")
	assert.False(t, ok)
}

func TestNewNetworkConfigWithoutLogger(t *testing.T) {
	cfg, err := NewNetworkConfig([]entity.NetworkDefinition{Ropsten}, func(def entity.NetworkDefinition) port.ProviderFactory {
		return hdwallet.NewFactory(def, secrets.MapSource{}, nil, nil)
	}, nil)
	require.NoError(t, err)

	_, err = cfg.Resolve("nonexistent")
	require.ErrorIs(t, err, entity.ErrUnknownNetwork)
	entry, err := cfg.Resolve("ropsten")
	require.NoError(t, err)
	_, err = entry.Factory()
	require.ErrorIs(t, err, entity.ErrProviderConstruction)
}
