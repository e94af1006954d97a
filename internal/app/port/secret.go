package port

// SecretSource supplies secret values (mnemonics, API keys) by key.
type SecretSource interface {
	Lookup(key string) (string, bool)
}
