//go:build !windows

package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

type system struct{}

// New returns the system clipboard.
func New() Clipboard {
	return system{}
}

func (system) Text() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

func (system) SetText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

func (s system) Clear() error {
	return s.SetText("")
}
