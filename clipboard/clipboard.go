// Package clipboard reads and writes the system text clipboard.
package clipboard

import (
	"fmt"
	"log/slog"
	"sync"
)

// Clipboard is the system text clipboard.
type Clipboard interface {
	Text() (string, error)
	SetText(text string) error
	Clear() error
}

// scope serializes save/modify/restore sequences within the process.
var scope sync.Mutex

// Preserve snapshots the clipboard text, runs fn and puts the snapshot back,
// even when fn fails. An empty snapshot is not restored.
func Preserve(cb Clipboard, fn func() error) error {
	scope.Lock()
	defer scope.Unlock()

	saved, err := cb.Text()
	if err != nil {
		slog.Debug("snapshot clipboard", "error", err)
		saved = ""
	}

	fnErr := fn()

	if saved != "" {
		if err := cb.SetText(saved); err != nil {
			restoreErr := fmt.Errorf("restore clipboard: %w", err)
			if fnErr != nil {
				return fmt.Errorf("%w; %v", fnErr, restoreErr)
			}
			return restoreErr
		}
	}
	return fnErr
}

// Exclusive runs fn while holding the same lock Preserve uses, without
// restoring afterwards.
func Exclusive(fn func() error) error {
	scope.Lock()
	defer scope.Unlock()
	return fn()
}
