package configloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: "9090"
logging:
  level: debug
rpcClient:
  defaultTimeoutMs: 2500
  limiterPeriod: 50ms
networks:
  - name: ropsten
    endpoint: https://ropsten.infura.io/v3/${INFURA_API_KEY}
  - name: local
    networkId: 1337
    endpoint: http://127.0.0.1:8545
    mnemonicSecret: LOCAL_MNEMONIC
    numAddresses: 3
    rpcTimeoutMs: 500
    limiterPeriod: 1s
    limiterBurst: 10
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.Len(t, cfg.Networks, 2)

	ropsten := cfg.Networks[0]
	assert.Equal(t, DefaultMnemonicSecret, ropsten.MnemonicSecret)
	assert.Equal(t, 2500*time.Millisecond, ropsten.RPCTimeout())
	assert.Equal(t, 50*time.Millisecond, ropsten.LimiterPeriodDuration())
	assert.Equal(t, 5, ropsten.LimiterBurst)

	local := cfg.Networks[1]
	assert.Equal(t, uint64(1337), local.NetworkID)
	assert.Equal(t, "LOCAL_MNEMONIC", local.MnemonicSecret)
	assert.Equal(t, uint32(3), local.NumAddresses)
	assert.Equal(t, 500*time.Millisecond, local.RPCTimeout())
	assert.Equal(t, time.Second, local.LimiterPeriodDuration())
	assert.Equal(t, 10, local.LimiterBurst)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	require.Len(t, cfg.Networks, 1)
	assert.Equal(t, DefaultNetworkName, cfg.Networks[0].Name)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.NetworkService.MaxConcurrentChecks)
	require.Len(t, cfg.Networks, 1)
	assert.Equal(t, "ropsten", cfg.Networks[0].Name)
	assert.Equal(t, "MNEMONIC", cfg.Networks[0].MnemonicSecret)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("networks:\n  - name: a\n  - name: a\n"))
	require.ErrorContains(t, err, "duplicate network name")

	_, err = Parse([]byte("networks:\n  - endpoint: http://x\n"))
	require.ErrorContains(t, err, "name is required")

	_, err = Parse([]byte("networks:\n  - name: a\n    limiterPeriod: soon\n"))
	require.ErrorContains(t, err, "invalid limiterPeriod")

	_, err = Parse([]byte("networks: [\n"))
	require.Error(t, err)
}
