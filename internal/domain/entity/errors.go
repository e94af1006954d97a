package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNetwork is returned when a network name is absent from the configuration.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrProviderConstruction is returned when a provider cannot be built from its mnemonic or endpoint.
	ErrProviderConstruction = errors.New("provider construction failed")
	// ErrUnknownAccount is returned when signing is requested for an address the provider does not hold.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrNetworkMismatch is returned when the remote node reports a different network id.
	ErrNetworkMismatch = errors.New("network id mismatch")
)

// UnknownNetworkError names the network that could not be resolved.
type UnknownNetworkError struct {
	Name string
}

func (e *UnknownNetworkError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownNetwork, e.Name)
}

// Unwrap lets errors.Is match ErrUnknownNetwork.
func (e *UnknownNetworkError) Unwrap() error {
	return ErrUnknownNetwork
}

// ProviderConstructionError describes why a provider could not be constructed.
type ProviderConstructionError struct {
	Network string
	Reason  string
	Err     error
}

func (e *ProviderConstructionError) Error() string {
	msg := ErrProviderConstruction.Error()
	if e.Network != "" {
		msg = fmt.Sprintf("%s for network %q", msg, e.Network)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports ErrProviderConstruction as a match so callers can use errors.Is.
func (e *ProviderConstructionError) Is(target error) bool {
	return target == ErrProviderConstruction
}

func (e *ProviderConstructionError) Unwrap() error {
	return e.Err
}
