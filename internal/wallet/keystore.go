package wallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

const keychainService = "burgerctl"

// ErrSecretNotFound is returned when no secret is stored under a ref.
var ErrSecretNotFound = errors.New("secret not found")

// SecretRef is the reference Store returns for name.
func SecretRef(name string) string {
	return keychainService + "." + name
}

// SecretStore keeps small secrets such as relay pairing topics.
type SecretStore interface {
	Store(name, secret string) (ref string, err error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keystore wraps OS keychain access.
type Keystore struct {
	ring keyring.Keyring
}

// KeyringPasswordEnv holds the password of the file keyring used when no OS
// keychain is reachable.
const KeyringPasswordEnv = "BURGERCTL_KEYRING_PASSWORD"

// DefaultKeystore returns a keystore backed by the OS keychain. Without one
// it falls back to an encrypted file keyring under dir when
// KeyringPasswordEnv is set, and to process memory otherwise.
func DefaultKeystore(dir string) SecretStore {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		AllowedBackends:          osBackends(),
	}
	if ring, err := keyring.Open(cfg); err == nil {
		return &Keystore{ring: ring}
	}
	if pw := os.Getenv(KeyringPasswordEnv); pw != "" && dir != "" {
		if ks, err := FileKeystore(filepath.Join(dir, "keyring"), pw); err == nil {
			return ks
		}
	}
	return NewInMemoryKeystore()
}

// osBackends lists the available keychain services, leaving out the file
// and pass backends that need extra setup.
func osBackends() []keyring.BackendType {
	if runtime.GOOS == "linux" {
		return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend}
	}
	out := []keyring.BackendType{}
	for _, b := range keyring.AvailableBackends() {
		if b != keyring.FileBackend && b != keyring.PassBackend {
			out = append(out, b)
		}
	}
	return out
}

// FileKeystore opens an encrypted file keyring in dir.
func FileKeystore(dir, password string) (*Keystore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      keychainService,
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          dir,
		FilePasswordFunc: keyring.FixedStringPrompt(password),
	})
	if err != nil {
		return nil, fmt.Errorf("opening file keyring: %w", err)
	}
	return &Keystore{ring: ring}, nil
}

// NewKeystore wraps an opened keyring.
func NewKeystore(ring keyring.Keyring) *Keystore {
	return &Keystore{ring: ring}
}

// Store saves secret under name and returns its reference.
func (k *Keystore) Store(name, secret string) (string, error) {
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available")
	}
	ref := SecretRef(name)
	if err := k.ring.Set(keyring.Item{Key: ref, Data: []byte(secret)}); err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve fetches a secret by its reference.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available")
	}
	item, err := k.ring.Get(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes a stored secret. Missing secrets are not an error.
func (k *Keystore) Delete(ref string) error {
	if k.ring == nil {
		return nil
	}
	err := k.ring.Remove(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}

// InMemoryKeystore stores secrets in memory (for tests).
type InMemoryKeystore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewInMemoryKeystore creates an in-memory keystore.
func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, secret string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ref := SecretRef(name)
	k.data[ref] = secret
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, ref)
	return nil
}
