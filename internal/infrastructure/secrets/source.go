package secrets

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"deploy_networks/internal/app/port"
)

var placeholderRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// EnvSource reads secrets from the process environment. An optional prefix is prepended to every key.
type EnvSource struct {
	Prefix string
}

// NewEnvSource creates a SecretSource backed by environment variables.
func NewEnvSource(prefix string) port.SecretSource {
	return EnvSource{Prefix: prefix}
}

// Lookup returns the value of the environment variable Prefix+key. Empty values count as missing.
func (s EnvSource) Lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(s.Prefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// MapSource is a fixed in-memory SecretSource.
type MapSource map[string]string

// Lookup implements port.SecretSource.
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Chain consults each source in order and returns the first hit.
type Chain []port.SecretSource

// Lookup implements port.SecretSource.
func (c Chain) Lookup(key string) (string, bool) {
	for _, s := range c {
		if v, ok := s.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// MissingSecretsError lists placeholders that could not be resolved.
type MissingSecretsError struct {
	Keys []string
}

func (e *MissingSecretsError) Error() string {
	return fmt.Sprintf("unresolved secret placeholders: %s", strings.Join(e.Keys, ", "))
}

// Expand replaces every ${KEY} in template with its value from src.
// All missing keys are reported together.
func Expand(template string, src port.SecretSource) (string, error) {
	var missing []string
	out := placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		key := placeholderRe.FindStringSubmatch(m)[1]
		v, ok := src.Lookup(key)
		if !ok {
			missing = append(missing, key)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", &MissingSecretsError{Keys: missing}
	}
	return out, nil
}

// Placeholders returns the keys referenced by template, in order of appearance.
func Placeholders(template string) []string {
	matches := placeholderRe.FindAllStringSubmatch(template, -1)
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, m[1])
	}
	return keys
}
