package selection

import (
	"fmt"
	"time"

	"go.aimuz.me/quill/clipboard"
	"go.aimuz.me/quill/keys"
)

// pasteDelay gives the target application time to observe the new clipboard
// content before the paste shortcut arrives.
var pasteDelay = 50 * time.Millisecond

// Replace overwrites the current selection with text by pasting it. The
// clipboard keeps text afterwards.
func Replace(cb clipboard.Clipboard, k keys.Injector, text string) error {
	return clipboard.Exclusive(func() error {
		if err := cb.SetText(text); err != nil {
			return fmt.Errorf("set clipboard: %w", err)
		}
		time.Sleep(pasteDelay)
		if err := k.Paste(); err != nil {
			return fmt.Errorf("paste: %w", err)
		}
		return nil
	})
}

// Copy puts text on the clipboard.
func Copy(cb clipboard.Clipboard, text string) error {
	return clipboard.Exclusive(func() error {
		if err := cb.SetText(text); err != nil {
			return fmt.Errorf("set clipboard: %w", err)
		}
		return nil
	})
}
