package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "quill"
	keyringUser    = "settings-key"
)

// Keyring seals with AES-256-GCM under a random key kept in the OS keyring.
// The key is created on first use.
type Keyring struct {
	Service string
	User    string
}

// NewKeyring returns a Keyring protector with the default keyring entry.
func NewKeyring() *Keyring {
	return &Keyring{Service: keyringService, User: keyringUser}
}

func (k *Keyring) Seal(plain []byte) ([]byte, error) {
	gcm, err := k.aead(true)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func (k *Keyring) Open(sealed []byte) ([]byte, error) {
	gcm, err := k.aead(false)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, ErrCorrupt
	}
	nonce, body := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return plain, nil
}

func (k *Keyring) aead(create bool) (cipher.AEAD, error) {
	key, err := k.key(create)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func (k *Keyring) key(create bool) ([]byte, error) {
	encoded, err := keyring.Get(k.Service, k.User)
	switch {
	case err == nil:
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("%w: invalid key in keyring", ErrCorrupt)
		}
		return key, nil
	case errors.Is(err, keyring.ErrNotFound) && create:
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate key: %w", err)
		}
		if err := keyring.Set(k.Service, k.User, base64.StdEncoding.EncodeToString(key)); err != nil {
			return nil, fmt.Errorf("store key: %w", err)
		}
		return key, nil
	case errors.Is(err, keyring.ErrNotFound):
		return nil, fmt.Errorf("%w: no key in keyring", ErrCorrupt)
	default:
		return nil, fmt.Errorf("read keyring: %w", err)
	}
}
