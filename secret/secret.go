// Package secret seals data at rest with a key bound to the current user.
package secret

import "errors"

// Protector encrypts and decrypts small payloads such as the settings file.
type Protector interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// ErrCorrupt is returned when sealed data cannot be decrypted.
var ErrCorrupt = errors.New("sealed data corrupt or bound to another user")

// Plain is a Protector that stores data unchanged.
type Plain struct{}

func (Plain) Seal(b []byte) ([]byte, error) { return b, nil }
func (Plain) Open(b []byte) ([]byte, error) { return b, nil }
