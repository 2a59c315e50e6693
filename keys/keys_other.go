//go:build !windows

package keys

import (
	"fmt"
	"runtime"
	"time"

	"github.com/micmonay/keybd_event"
)

type keyboard struct {
	kb keybd_event.KeyBonding
}

// New returns an Injector backed by keybd_event.
func New() (Injector, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("init keyboard: %w", err)
	}
	// Linux needs time to register the virtual device.
	if runtime.GOOS == "linux" {
		time.Sleep(2 * time.Second)
	}
	return &keyboard{kb: kb}, nil
}

func (k *keyboard) Copy() error  { return k.chord(keybd_event.VK_C) }
func (k *keyboard) Paste() error { return k.chord(keybd_event.VK_V) }

func (k *keyboard) chord(key int) error {
	k.kb.Clear()
	if runtime.GOOS == "darwin" {
		k.kb.HasSuper(true)
	} else {
		k.kb.HasCTRL(true)
	}
	k.kb.SetKeys(key)
	if err := k.kb.Launching(); err != nil {
		return fmt.Errorf("send keys: %w", err)
	}
	return nil
}
