package credentials

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "lazysearch"

var (
	// ErrKeyNotFound is returned when no API key is stored for a service
	ErrKeyNotFound = errors.New("api key not found in keyring")
	// ErrEmptyKey is returned when asked to store a blank API key
	ErrEmptyKey = errors.New("api key is empty")
)

// KeyStore keeps search service API keys in the OS keyring, falling back to
// an encrypted file under the config directory
type KeyStore struct {
	ring          keyring.Keyring
	usingFallback bool
}

// NewKeyStore opens the keyring with the backends suited to this platform
func NewKeyStore(configDir string) (*KeyStore, error) {
	backends := platformBackends()

	ring, err := keyring.Open(keyring.Config{
		ServiceName:     serviceName,
		AllowedBackends: backends,
		FileDir:         filepath.Join(configDir, "keyring"),
		FilePasswordFunc: func(_ string) (string, error) {
			return deriveFilePassword()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	return &KeyStore{
		ring:          ring,
		usingFallback: onlyFileBackend(backends),
	}, nil
}

// NewKeyStoreWithRing wraps an already opened keyring
func NewKeyStoreWithRing(ring keyring.Keyring) *KeyStore {
	return &KeyStore{ring: ring}
}

func platformBackends() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.FileBackend}
	case "linux":
		return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.FileBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend, keyring.FileBackend}
	default:
		return []keyring.BackendType{keyring.FileBackend}
	}
}

func onlyFileBackend(requested []keyring.BackendType) bool {
	if len(requested) == 1 && requested[0] == keyring.FileBackend {
		return true
	}
	for _, b := range keyring.AvailableBackends() {
		if b != keyring.FileBackend {
			return false
		}
	}
	return true
}

// IsUsingFallback reports whether keys are kept in the file backend
func (ks *KeyStore) IsUsingFallback() bool {
	return ks.usingFallback
}

// Save stores the API key for the given service host
func (ks *KeyStore) Save(host, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return ErrEmptyKey
	}

	err := ks.ring.Set(keyring.Item{
		Key:         makeKey(host),
		Data:        []byte(apiKey),
		Label:       "lazysearch: " + host,
		Description: "Search service API key for lazysearch",
	})
	if err != nil {
		return fmt.Errorf("failed to save api key to keyring: %w", err)
	}
	return nil
}

// Get returns the API key stored for the given service host
func (ks *KeyStore) Get(host string) (string, error) {
	item, err := ks.ring.Get(makeKey(host))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read api key from keyring: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes the API key for the given host. Missing keys are not an error.
func (ks *KeyStore) Delete(host string) error {
	err := ks.ring.Remove(makeKey(host))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete api key from keyring: %w", err)
	}
	return nil
}

func makeKey(host string) string {
	return "apikey:" + strings.ToLower(strings.TrimRight(host, "/"))
}
