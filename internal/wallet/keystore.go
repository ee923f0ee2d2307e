package wallet

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

const keychainService = "bonded"

// KeyStore holds private keys outside the wallets file.
type KeyStore interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keyring stores keys in the OS keychain, falling back to an encrypted file
// under the config directory on headless hosts.
type Keyring struct {
	ring keyring.Keyring
}

// OpenKeyring opens the keychain. fileDir is used by the file backend; its
// password comes from BONDED_KEYRING_PASSWORD or an interactive prompt.
func OpenKeyring(fileDir string) (*Keyring, error) {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.TerminalPrompt,
	}
	if pw := os.Getenv("BONDED_KEYRING_PASSWORD"); pw != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(pw)
	}

	// On Linux without a desktop session, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		ring, err = keyring.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("opening keyring: %w", err)
		}
	}
	return &Keyring{ring: ring}, nil
}

func (k *Keyring) Store(name, hexKey string) (string, error) {
	ref := keychainService + "." + name
	err := k.ring.Set(keyring.Item{
		Key:   ref,
		Data:  []byte(hexKey),
		Label: "bonded wallet " + name,
	})
	if err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

func (k *Keyring) Retrieve(ref string) (string, error) {
	item, err := k.ring.Get(ref)
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

func (k *Keyring) Delete(ref string) error {
	if err := k.ring.Remove(ref); err != nil && err != keyring.ErrKeyNotFound {
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}

// MemoryKeys keeps keys in memory. Used by tests.
type MemoryKeys struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryKeys() *MemoryKeys {
	return &MemoryKeys{data: make(map[string]string)}
}

func (k *MemoryKeys) Store(name, hexKey string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ref := keychainService + "." + name
	k.data[ref] = hexKey
	return ref, nil
}

func (k *MemoryKeys) Retrieve(ref string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("key not found: %s", ref)
	}
	return v, nil
}

func (k *MemoryKeys) Delete(ref string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, ref)
	return nil
}
