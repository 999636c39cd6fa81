package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "assistbot"
	vaultFile      = "vault.enc"

	// SecretPlaceholder marks a config value that must be read from the KeyStore.
	SecretPlaceholder = "[keyring]"
)

// ErrSecretNotFound is returned when neither the keyring nor the vault holds a secret.
var ErrSecretNotFound = errors.New("secret not found")

// KeyStore keeps credentials out of config files.
// Primary: OS keyring. Fallback: password-encrypted vault file.
type KeyStore struct {
	mu        sync.Mutex
	password  string
	vaultPath string
}

// NewKeyStore creates a key store whose vault lives in dir. password may be
// empty when only the OS keyring is used.
func NewKeyStore(dir, password string) (*KeyStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &KeyStore{
		password:  password,
		vaultPath: filepath.Join(dir, vaultFile),
	}, nil
}

// Set stores a secret, trying the keyring first.
func (ks *KeyStore) Set(name, value string) error {
	if err := keyring.Set(keyringService, name, value); err == nil {
		return nil
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	vault, err := ks.loadVault()
	if err != nil {
		return err
	}
	vault[name] = value
	return ks.saveVault(vault)
}

// Get retrieves a secret.
func (ks *KeyStore) Get(name string) (string, error) {
	if val, err := keyring.Get(keyringService, name); err == nil {
		return val, nil
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	vault, err := ks.loadVault()
	if err != nil {
		return "", err
	}
	val, ok := vault[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return val, nil
}

// Delete removes a secret from both the keyring and the vault.
func (ks *KeyStore) Delete(name string) error {
	_ = keyring.Delete(keyringService, name)

	ks.mu.Lock()
	defer ks.mu.Unlock()
	if _, err := os.Stat(ks.vaultPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	vault, err := ks.loadVault()
	if err != nil {
		return err
	}
	if _, ok := vault[name]; !ok {
		return nil
	}
	delete(vault, name)
	return ks.saveVault(vault)
}

// Resolve returns value unchanged unless it is SecretPlaceholder, in which
// case the named secret is looked up.
func (ks *KeyStore) Resolve(name, value string) (string, error) {
	if value != SecretPlaceholder {
		return value, nil
	}
	secret, err := ks.Get(name)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", name, err)
	}
	return secret, nil
}

// MaskKey returns a masked version of an API key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

func (ks *KeyStore) loadVault() (map[string]string, error) {
	data, err := os.ReadFile(ks.vaultPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	if ks.password == "" {
		return nil, fmt.Errorf("vault %s exists but VAULT_PASSWORD is not set", ks.vaultPath)
	}
	return openSecrets(data, ks.password)
}

func (ks *KeyStore) saveVault(vault map[string]string) error {
	if ks.password == "" {
		return fmt.Errorf("keyring unavailable and VAULT_PASSWORD is not set")
	}
	data, err := sealSecrets(vault, ks.password)
	if err != nil {
		return err
	}
	return os.WriteFile(ks.vaultPath, data, 0600)
}
