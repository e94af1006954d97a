package hdwallet

import (
	"context"
	"errors"
	"math"
	"math/big"
	"sync/atomic"
	"testing"

	"deploy_networks/internal/app/port"
	"deploy_networks/internal/domain/entity"
	"deploy_networks/internal/infrastructure/secrets"
	"deploy_networks/internal/pkg/logger"
	"deploy_networks/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMnemonic = "test test test test test test test test test test test junk"
	testEndpoint = "https://ropsten.infura.io/v3/0123456789abcdef"

	testAccount0    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testAccount1    = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	testAccount2    = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	testPrivKey0Hex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

func ropstenDefinition() entity.NetworkDefinition {
	return entity.NetworkDefinition{
		Name:             "ropsten",
		NetworkID:        3,
		EndpointTemplate: "https://ropsten.infura.io/v3/${INFURA_API_KEY}",
		MnemonicSecret:   "MNEMONIC",
	}
}

type fakeClient struct {
	port.BlockchainClient
	closed atomic.Bool
}

func (c *fakeClient) Close() { c.closed.Store(true) }

type countingDialer struct {
	dials     atomic.Int32
	lastURL   string
	lastDef   entity.NetworkDefinition
	err       error
	lastAlloc *fakeClient
}

func (d *countingDialer) Dial(_ context.Context, def entity.NetworkDefinition, endpoint string) (port.BlockchainClient, error) {
	d.dials.Add(1)
	d.lastURL = endpoint
	d.lastDef = def
	if d.err != nil {
		return nil, d.err
	}
	d.lastAlloc = &fakeClient{}
	return d.lastAlloc, nil
}

func TestNewProviderDerivesKnownAccounts(t *testing.T) {
	p, err := NewProvider(testMnemonic, testEndpoint, WithChainID(3), WithAddresses(0, 3))
	require.NoError(t, err)

	assert.Equal(t, []common.Address{
		common.HexToAddress(testAccount0),
		common.HexToAddress(testAccount1),
		common.HexToAddress(testAccount2),
	}, p.Accounts())

	details := p.AccountDetails()
	require.Len(t, details, 3)
	assert.Equal(t, "m/44'/60'/0'/0/2", details[2].DerivationPath)
	assert.Equal(t, uint32(2), details[2].Index)

	key := p.keys[common.HexToAddress(testAccount0)]
	require.NotNil(t, key)
	assert.Equal(t, testPrivKey0Hex, common.Bytes2Hex(crypto.FromECDSA(key)))
}

func TestNewProviderAddressIndexOffset(t *testing.T) {
	p, err := NewProvider(testMnemonic, testEndpoint, WithChainID(3), WithAddresses(1, 1))
	require.NoError(t, err)
	assert.Equal(t, []common.Address{common.HexToAddress(testAccount1)}, p.Accounts())
}

func TestNewProviderNormalizesWhitespace(t *testing.T) {
	p, err := NewProvider("  test test test test test test\n test test test test test   junk ", testEndpoint, WithChainID(3))
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAccount0), p.Accounts()[0])
}

func TestNewProviderPassphraseChangesKeys(t *testing.T) {
	p, err := NewProvider(testMnemonic, testEndpoint, WithChainID(3), WithPassphrase("extra"))
	require.NoError(t, err)
	assert.NotEqual(t, common.HexToAddress(testAccount0), p.Accounts()[0])
}

func TestNewProviderConstructionErrors(t *testing.T) {
	cases := []struct {
		name     string
		mnemonic string
		endpoint string
		opts     []Option
	}{
		{"empty mnemonic", "", testEndpoint, nil},
		{"invalid mnemonic", "not a valid bip39 phrase at all", testEndpoint, nil},
		{"bad checksum", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", testEndpoint, nil},
		{"empty endpoint", testMnemonic, "", nil},
		{"template placeholder", testMnemonic, "https://ropsten.infura.io/v3/<infura API key here>", nil},
		{"unsupported scheme", testMnemonic, "ftp://example.com", nil},
		{"missing host", testMnemonic, "https://", nil},
		{"not a url", testMnemonic, "://nope", nil},
		{"zero addresses", testMnemonic, testEndpoint, []Option{WithAddresses(0, 0)}},
		{"too many addresses", testMnemonic, testEndpoint, []Option{WithAddresses(0, MaxAddresses+1)}},
		{"hardened index", testMnemonic, testEndpoint, []Option{WithAddresses(1<<31, 1)}},
		{"index range crosses hardened start", testMnemonic, testEndpoint, []Option{WithAddresses(1<<31-1, 2)}},
		{"index wraps uint32", testMnemonic, testEndpoint, []Option{WithAddresses(math.MaxUint32, 2)}},
		{"malformed url", testMnemonic, "https://node.example:bad%zz/v3/SECRETKEY", nil},
		{"bad derivation path", testMnemonic, testEndpoint, []Option{WithDerivationPath("x/y/")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := append([]Option{WithChainID(3)}, tc.opts...)
			_, err := NewProvider(tc.mnemonic, tc.endpoint, opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, entity.ErrProviderConstruction), "got %v", err)
			var pce *entity.ProviderConstructionError
			assert.True(t, errors.As(err, &pce))
		})
	}
}

func TestNewProviderRequiresChainID(t *testing.T) {
	_, err := NewProvider(testMnemonic, testEndpoint)
	require.ErrorIs(t, err, entity.ErrProviderConstruction)
}

func TestSignTx(t *testing.T) {
	p, err := NewProvider(testMnemonic, testEndpoint, WithNetwork(ropstenDefinition()), WithAddresses(0, 2))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), p.ChainID())

	to := common.HexToAddress(testAccount2)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    7,
		To:       &to,
		Value:    big.NewInt(1000),
		Gas:      21000,
		GasPrice: big.NewInt(1_000_000_000),
	})

	signed, err := p.SignTx(tx)
	require.NoError(t, err)
	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(3)), signed)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAccount0), sender)
	assert.Equal(t, big.NewInt(3), signed.ChainId())

	signed, err = p.SignTxFrom(common.HexToAddress(testAccount1), tx)
	require.NoError(t, err)
	sender, err = types.Sender(types.LatestSignerForChainID(big.NewInt(3)), signed)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAccount1), sender)

	_, err = p.SignTxFrom(to, tx)
	require.ErrorIs(t, err, entity.ErrUnknownAccount)
}

func TestSignDynamicFeeTx(t *testing.T) {
	p, err := NewProvider(testMnemonic, testEndpoint, WithChainID(11155111))
	require.NoError(t, err)

	to := common.HexToAddress(testAccount1)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(11155111),
		Nonce:     0,
		To:        &to,
		Value:     big.NewInt(1),
		Gas:       21000,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
	})
	signed, err := p.SignTx(tx)
	require.NoError(t, err)
	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(11155111)), signed)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAccount0), sender)
}

func TestEndpointIsACopy(t *testing.T) {
	p, err := NewProvider(testMnemonic, testEndpoint, WithChainID(3))
	require.NoError(t, err)

	u := p.Endpoint()
	assert.Equal(t, testEndpoint, u.String())
	u.Host = "evil.example"
	assert.Equal(t, testEndpoint, p.Endpoint().String())
	assert.Equal(t, "https://ropsten.infura.io", utils.RedactURL(p.Endpoint()))
}

func TestClientDialsOnceAndClose(t *testing.T) {
	dialer := &countingDialer{}
	p, err := NewProvider(testMnemonic, testEndpoint, WithNetwork(ropstenDefinition()), WithDialer(dialer))
	require.NoError(t, err)

	c1, err := p.Client(context.Background())
	require.NoError(t, err)
	c2, err := p.Client(context.Background())
	require.NoError(t, err)
	assert.Same(t, c1, c2)
	assert.Equal(t, int32(1), dialer.dials.Load())
	assert.Equal(t, testEndpoint, dialer.lastURL)
	assert.Equal(t, "ropsten", dialer.lastDef.Name)

	first := dialer.lastAlloc
	p.Close()
	assert.True(t, first.closed.Load())

	_, err = p.Client(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), dialer.dials.Load())
}

func TestClientWithoutDialer(t *testing.T) {
	p, err := NewProvider(testMnemonic, testEndpoint, WithChainID(3))
	require.NoError(t, err)
	_, err = p.Client(context.Background())
	require.Error(t, err)
	p.Close()
}

func TestClientDialError(t *testing.T) {
	dialer := &countingDialer{err: errors.New("connection refused")}
	p, err := NewProvider(testMnemonic, testEndpoint, WithChainID(3), WithDialer(dialer), WithLogger(logger.Nop()))
	require.NoError(t, err)
	_, err = p.Client(context.Background())
	require.ErrorContains(t, err, "connection refused")
	assert.NotContains(t, err.Error(), "0123456789abcdef")
}

func TestFactory(t *testing.T) {
	src := secrets.MapSource{"MNEMONIC": testMnemonic, "INFURA_API_KEY": "0123456789abcdef"}
	factory := NewFactory(ropstenDefinition(), src, &countingDialer{}, logger.Nop())

	a, err := factory()
	require.NoError(t, err)
	b, err := factory()
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, a.Accounts(), b.Accounts())
	assert.Equal(t, a.Endpoint().String(), b.Endpoint().String())
	assert.Equal(t, testEndpoint, a.Endpoint().String())
	assert.Equal(t, big.NewInt(3), a.ChainID())
}

func TestFactoryReadsSecretsLazily(t *testing.T) {
	src := secrets.MapSource{}
	factory := NewFactory(ropstenDefinition(), src, nil, logger.Nop())

	_, err := factory()
	require.ErrorIs(t, err, entity.ErrProviderConstruction)

	src["MNEMONIC"] = testMnemonic
	_, err = factory()
	require.ErrorIs(t, err, entity.ErrProviderConstruction)
	assert.Contains(t, err.Error(), "INFURA_API_KEY")

	src["INFURA_API_KEY"] = "key"
	p, err := factory()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAccount0), p.Accounts()[0])
}

func TestFactoryPassphraseSecret(t *testing.T) {
	def := ropstenDefinition()
	def.PassphraseSecret = "PASSPHRASE"
	src := secrets.MapSource{"MNEMONIC": testMnemonic, "INFURA_API_KEY": "key"}
	factory := NewFactory(def, src, nil, logger.Nop())

	_, err := factory()
	require.ErrorIs(t, err, entity.ErrProviderConstruction)

	src["PASSPHRASE"] = "extra"
	p, err := factory()
	require.NoError(t, err)
	assert.NotEqual(t, common.HexToAddress(testAccount0), p.Accounts()[0])
}

func TestAccountPath(t *testing.T) {
	assert.Equal(t, "m/44'/60'/0'/0/5", AccountPath("", 5))
	assert.Equal(t, "m/44'/60'/1'/0/0", AccountPath("m/44'/60'/1'/0", 0))
	assert.Equal(t, "m/44'/60'/1'/0/0", AccountPath("m/44'/60'/1'/0/", 0))
}

func TestNewProviderHighestNonHardenedIndex(t *testing.T) {
	p, err := NewProvider(testMnemonic, testEndpoint, WithChainID(3), WithAddresses(1<<31-1, 1))
	require.NoError(t, err)
	details := p.AccountDetails()
	require.Len(t, details, 1)
	assert.Equal(t, "m/44'/60'/0'/0/2147483647", details[0].DerivationPath)
}

func TestMalformedEndpointErrorOmitsURL(t *testing.T) {
	_, err := NewProvider(testMnemonic, "https://node.example:bad%zz/v3/SECRETKEY", WithChainID(3))
	require.ErrorIs(t, err, entity.ErrProviderConstruction)
	assert.NotContains(t, err.Error(), "SECRETKEY")
}

func TestFactoryWithoutLogger(t *testing.T) {
	factory := NewFactory(ropstenDefinition(), secrets.MapSource{}, nil, nil)
	_, err := factory()
	require.ErrorIs(t, err, entity.ErrProviderConstruction)
}
