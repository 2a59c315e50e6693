//go:build !windows

package secret

// New returns the platform Protector, backed by the OS keyring.
func New() (Protector, error) {
	return NewKeyring(), nil
}
