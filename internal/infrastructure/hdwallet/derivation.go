package hdwallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"deploy_networks/internal/domain/entity"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

const (
	// DefaultDerivationPath is the BIP-44 Ethereum prefix; the address index is appended to it.
	DefaultDerivationPath = "m/44'/60'/0'/0/"
	// MaxAddresses bounds the number of accounts one provider derives.
	MaxAddresses = 1000
)

var errInvalidMnemonic = errors.New("invalid mnemonic")

type derivedKey struct {
	account entity.Account
	key     *ecdsa.PrivateKey
}

// NormalizeMnemonic collapses runs of whitespace so that copy-pasted phrases validate.
func NormalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(mnemonic), " ")
}

// seedFromMnemonic validates the phrase and returns its BIP-39 seed.
func seedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if mnemonic == "" {
		return nil, fmt.Errorf("%w: empty phrase", errInvalidMnemonic)
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errInvalidMnemonic
	}
	return bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
}

// AccountPath joins a derivation path prefix and an address index.
func AccountPath(prefix string, index uint32) string {
	if prefix == "" {
		prefix = DefaultDerivationPath
	}
	return fmt.Sprintf("%s/%d", strings.TrimSuffix(prefix, "/"), index)
}

// deriveKeys derives count consecutive keys starting at startIndex below prefix.
func deriveKeys(seed []byte, prefix string, startIndex, count uint32) ([]derivedKey, error) {
	// only HDPrivateKeyID of the params is used, as the version of the extended key
	if err := checkAddressRange(startIndex, count); err != nil {
		return nil, err
	}
	masterKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	keys := make([]derivedKey, 0, count)
	for i := uint32(0); i < count; i++ {
		index := startIndex + i
		pathStr := AccountPath(prefix, index)
		path, err := accounts.ParseDerivationPath(pathStr)
		if err != nil {
			return nil, fmt.Errorf("invalid derivation path %q: %w", pathStr, err)
		}
		key, err := derivePrivateKey(masterKey, path)
		if err != nil {
			return nil, fmt.Errorf("failed to derive %s: %w", pathStr, err)
		}
		keys = append(keys, derivedKey{
			account: entity.Account{
				Index:          index,
				Address:        crypto.PubkeyToAddress(key.PublicKey),
				DerivationPath: pathStr,
			},
			key: key,
		})
	}
	return keys, nil
}

// checkAddressRange keeps every index of [start, start+count) below the hardened range,
// where a plain "/i" path segment would silently derive a hardened key.
func checkAddressRange(start, count uint32) error {
	if count == 0 {
		return errors.New("number of addresses must be positive")
	}
	if count > MaxAddresses {
		return fmt.Errorf("number of addresses %d exceeds the limit of %d", count, MaxAddresses)
	}
	if uint64(start)+uint64(count) > uint64(hdkeychain.HardenedKeyStart) {
		return fmt.Errorf("address indices %d..%d exceed the non-hardened range", start, uint64(start)+uint64(count)-1)
	}
	return nil
}

func derivePrivateKey(masterKey *hdkeychain.ExtendedKey, path accounts.DerivationPath) (*ecdsa.PrivateKey, error) {
	derived := masterKey
	for _, n := range path {
		var err error
		derived, err = derived.Derive(n)
		if err != nil {
			return nil, err
		}
	}
	privateKey, err := derived.ECPrivKey()
	if err != nil {
		return nil, err
	}
	return privateKey.ToECDSA(), nil
}
