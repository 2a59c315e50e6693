//go:build !windows

package hotkey

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
)

// Manager dispatches global key-down events through gohook.
type Manager struct {
	mu     sync.Mutex
	done   chan struct{}
	closed bool
}

// NewManager returns an idle Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register hooks every accelerator under its action id and starts the event
// loop.
func (m *Manager) Register(accels map[Action]string, h Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.done != nil {
		return fmt.Errorf("hotkeys already registered")
	}

	for _, r := range resolveAll(accels) {
		action := r.action
		keys := hookKeys(r.binding)
		hook.Register(hook.KeyDown, keys, func(hook.Event) {
			h(action)
		})
		slog.Debug("hotkey registered", "action", action, "keys", strings.Join(keys, "+"))
	}

	evChan := hook.Start()
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-hook.Process(evChan)
	}()
	m.done = done
	return nil
}

// Close stops the event loop.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.done == nil {
		return nil
	}
	hook.End()
	<-m.done
	return nil
}

// hookKeys converts a binding into gohook key names, key first.
func hookKeys(b Binding) []string {
	keys := []string{strings.ToLower(KeyName(b.Key))}
	if b.Modifiers&ModControl != 0 {
		keys = append(keys, "ctrl")
	}
	if b.Modifiers&ModShift != 0 {
		keys = append(keys, "shift")
	}
	if b.Modifiers&ModAlt != 0 {
		keys = append(keys, "alt")
	}
	if b.Modifiers&ModWin != 0 {
		keys = append(keys, "cmd")
	}
	return keys
}
