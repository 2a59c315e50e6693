//go:build windows

package hotkey

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                = windows.NewLazySystemDLL("user32.dll")
	procRegisterHotKey    = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey  = user32.NewProc("UnregisterHotKey")
	procGetMessageW       = user32.NewProc("GetMessageW")
	procPeekMessageW      = user32.NewProc("PeekMessageW")
	procPostThreadMessage = user32.NewProc("PostThreadMessageW")
)

const (
	wmQuit      = 0x0012
	wmUser      = 0x0400
	wmHotkey    = 0x0312
	pmNoRemove  = 0x0000
	modNoRepeat = 0x4000
)

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	ptX     int32
	ptY     int32
}

// Manager owns the RegisterHotKey registrations of one message-loop thread.
type Manager struct {
	mu       sync.Mutex
	threadID uint32
	done     chan struct{}
	closed   bool
}

// NewManager returns an idle Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register registers every accelerator under its action id and starts the
// message loop. It returns a *RegisterError when the OS rejects some of them;
// the rest stay active.
func (m *Manager) Register(accels map[Action]string, h Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.done != nil {
		return fmt.Errorf("hotkeys already registered")
	}

	regs := resolveAll(accels)
	type started struct {
		threadID uint32
		err      error
	}
	startCh := make(chan started, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		// Force creation of the thread message queue before anyone posts to it.
		var ev msg
		procPeekMessageW.Call(uintptr(unsafe.Pointer(&ev)), 0, wmUser, wmUser, pmNoRemove)

		failed := map[Action]error{}
		var active []Action
		for _, r := range regs {
			ok, _, err := procRegisterHotKey.Call(0, uintptr(r.action), uintptr(r.binding.Modifiers|modNoRepeat), uintptr(r.binding.Key))
			if ok == 0 {
				failed[r.action] = fmt.Errorf("%s: %w", r.binding, err)
				continue
			}
			active = append(active, r.action)
			slog.Debug("hotkey registered", "action", r.action, "hotkey", r.binding)
		}
		defer func() {
			for _, a := range active {
				procUnregisterHotKey.Call(0, uintptr(a))
			}
		}()

		var res started
		res.threadID = windows.GetCurrentThreadId()
		if len(failed) > 0 {
			res.err = &RegisterError{Failed: failed}
		}
		startCh <- res
		if len(active) == 0 {
			return
		}

		for {
			ret, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&ev)), 0, 0, 0)
			switch int32(ret) {
			case -1:
				slog.Error("hotkey message loop", "error", err)
				return
			case 0:
				return
			}
			if ev.message == wmHotkey {
				h(Action(ev.wParam))
			}
		}
	}()

	res := <-startCh
	m.threadID = res.threadID
	m.done = done
	return res.err
}

// Close unregisters all hotkeys and stops the message loop.
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

	select {
	case <-m.done:
		return nil
	default:
	}
	ret, _, err := procPostThreadMessage.Call(uintptr(m.threadID), wmQuit, 0, 0)
	if ret == 0 {
		return fmt.Errorf("post quit: %w", err)
	}
	<-m.done
	return nil
}
