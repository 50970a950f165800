// internal/config/secrets.go
//
// SecretSource: the only door secrets come through.
//
// Context
// -------
// Lookup order per secret name:
//
//   1. Vault KV-v2, when VAULT_ADDR is set (same client shape as the
//      HashiCorp SDK examples; token from VAULT_TOKEN).
//   2. Process environment variable of the same name.
//   3. Generated fallback — 64 random bytes, hex-encoded (128 chars),
//      cached per name so repeated reads within one process run return the
//      same value.  Forbidden in production: RequireOrFail fails instead.
//
// SecretSource never writes anywhere.  Generated fallbacks are logged as a
// warning so a developer cannot mistake them for configured secrets.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// defaultVaultPath is where taskgate's KV-v2 secret lives unless
// SECRET_VAULT_PATH overrides it.
const defaultVaultPath = "secret/taskgate"

// SecretSource resolves named secrets.  Safe for concurrent use.
type SecretSource struct {
	lookup    func(string) (string, bool)
	vault     *vault.Client
	vaultPath string

	mu        sync.Mutex
	generated map[string]string
}

// Option adjusts a SecretSource; used by tests to inject a fake
// environment and to disable Vault.
type Option func(*SecretSource)

// WithLookup replaces the process-environment lookup.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(s *SecretSource) { s.lookup = fn }
}

// WithoutVault skips Vault entirely, whatever the environment says.
func WithoutVault() Option {
	return func(s *SecretSource) { s.vault = nil }
}

// NewSecretSource builds a source backed by the process environment, plus
// Vault when VAULT_ADDR is present.  A broken Vault setup is reported and
// skipped rather than treated as fatal; the environment variables still
// work.
func NewSecretSource(opts ...Option) *SecretSource {
	s := &SecretSource{
		lookup:    os.LookupEnv,
		generated: make(map[string]string),
	}

	if os.Getenv("VAULT_ADDR") != "" {
		cfg := vault.DefaultConfig()
		if err := cfg.ReadEnvironment(); err == nil {
			if cli, err := vault.NewClient(cfg); err == nil {
				if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
					cli.SetToken(tok)
				}
				s.vault = cli
				s.vaultPath = defaultVaultPath
				if p := os.Getenv("SECRET_VAULT_PATH"); p != "" {
					s.vaultPath = p
				}
			} else {
				zap.S().Warnw("vault client unavailable, using env secrets", "err", err)
			}
		} else {
			zap.S().Warnw("vault env config invalid, using env secrets", "err", err)
		}
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the secret for name, or ok == false when no backend has it.
// Generated fallbacks are NOT consulted here; only RequireOrFail creates
// them.
func (s *SecretSource) Get(name string) (string, bool) {
	if v, ok := s.fromVault(name); ok {
		return v, true
	}
	if v, ok := s.lookup(name); ok && v != "" {
		return v, true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.generated[name]; ok {
		return v, true
	}
	return "", false
}

// RequireOrFail returns the secret for name.  In production an absent
// secret is a hard failure; elsewhere a high-entropy fallback is generated
// once per name, logged as a warning, and reused for the rest of the run.
func (s *SecretSource) RequireOrFail(name, environment string) (string, error) {
	if v, ok := s.Get(name); ok {
		return v, nil
	}
	if environment == EnvProduction {
		return "", fmt.Errorf("secret %s is required in production and is not set", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.generated[name]; ok {
		return v, nil
	}
	v := GenerateSecret(64)
	s.generated[name] = v
	zap.S().Warnw("secret not set, generated a random fallback for this run",
		"secret", name, "environment", environment)
	return v, nil
}

// GenerateSecret returns lengthBytes of cryptographically secure
// randomness, hex-encoded (so 2×lengthBytes characters).
func GenerateSecret(lengthBytes int) string {
	buf := make([]byte, lengthBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform RNG is gone; nothing
		// sensible can run without it.
		panic("config: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

//
// Vault backend
//

// fromVault reads key name from the configured KV-v2 secret.  Any error is
// treated as "not found": Vault is an optional layer over the environment.
func (s *SecretSource) fromVault(name string) (string, bool) {
	if s.vault == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	mount, rel := splitMount(s.vaultPath)
	sec, err := s.vault.KVv2(mount).Get(ctx, rel)
	if err != nil {
		zap.S().Debugw("vault secret read failed", "path", s.vaultPath, "err", err)
		return "", false
	}
	raw, ok := sec.Data[name]
	if !ok {
		return "", false
	}
	v, ok := raw.(string)
	return v, ok && v != ""
}

// splitMount divides "secret/app/web" into mount "secret" and relative
// path "app/web".
func splitMount(p string) (mount, rel string) {
	p = strings.Trim(p, "/")
	if i := strings.IndexByte(p, '/'); i != -1 {
		return p[:i], p[i+1:]
	}
	return p, ""
}
