//go:build windows

package selection

import (
	"context"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"go.aimuz.me/quill/clipboard"
	"go.aimuz.me/quill/keys"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
	procAttachThreadInput        = user32.NewProc("AttachThreadInput")
	procGetFocus                 = user32.NewProc("GetFocus")
	procSendMessageTimeoutW      = user32.NewProc("SendMessageTimeoutW")
	procGetAsyncKeyState         = user32.NewProc("GetAsyncKeyState")
)

const (
	wmGetText       = 0x000D
	wmGetTextLength = 0x000E
	emGetSel        = 0x00B0

	smtoAbortIfHung = 0x0002
	sendTimeoutMS   = 200

	maxEditTextLength = 100000
)

// DefaultStrategies returns the capture chain: UI Automation, edit-control
// messages, then simulated copy.
func DefaultStrategies(cb clipboard.Clipboard, k keys.Injector) []Strategy {
	poll := NewCopyPoll(cb, k)
	poll.BeforeCopy = waitModifiersReleased
	return []Strategy{UIAutomation{}, EditControl{}, poll}
}

// EditControl reads the selection of a classic Win32 edit control through
// EM_GETSEL and WM_GETTEXT.
type EditControl struct{}

func (EditControl) Name() string { return "edit-control" }

func (EditControl) Capture(context.Context) (string, error) {
	hwnd := focusedControl()
	if hwnd == 0 {
		return "", fmt.Errorf("no focused control")
	}

	var start, end uint32
	if _, err := sendMessage(hwnd, emGetSel, uintptr(unsafe.Pointer(&start)), uintptr(unsafe.Pointer(&end))); err != nil {
		return "", err
	}
	if end <= start {
		return "", ErrNoSelection
	}

	n, err := sendMessage(hwnd, wmGetTextLength, 0, 0)
	if err != nil {
		return "", err
	}
	if n == 0 || n > maxEditTextLength {
		return "", fmt.Errorf("edit text length %d out of range", n)
	}

	buf := make([]uint16, n+1)
	got, err := sendMessage(hwnd, wmGetText, uintptr(len(buf)), uintptr(unsafe.Pointer(&buf[0])))
	if err != nil {
		return "", err
	}
	buf = buf[:got]
	if int(end) > len(buf) {
		return "", fmt.Errorf("selection %d-%d beyond text length %d", start, end, len(buf))
	}
	return windows.UTF16ToString(buf[start:end]), nil
}

// focusedControl returns the control with keyboard focus in the foreground
// window. GetFocus only sees the calling thread's queue, so the foreground
// thread's input is attached for the duration of the call.
func focusedControl() uintptr {
	fg, _, _ := procGetForegroundWindow.Call()
	if fg == 0 {
		return 0
	}
	target, _, _ := procGetWindowThreadProcessID.Call(fg, 0)
	self := uintptr(windows.GetCurrentThreadId())

	if target != self {
		if r, _, _ := procAttachThreadInput.Call(self, target, 1); r == 0 {
			return 0
		}
		defer procAttachThreadInput.Call(self, target, 0)
	}
	focus, _, _ := procGetFocus.Call()
	return focus
}

func sendMessage(hwnd uintptr, msg uint32, wParam, lParam uintptr) (uintptr, error) {
	var result uintptr
	r, _, err := procSendMessageTimeoutW.Call(hwnd, uintptr(msg), wParam, lParam,
		smtoAbortIfHung, sendTimeoutMS, uintptr(unsafe.Pointer(&result)))
	if r == 0 {
		return 0, fmt.Errorf("SendMessageTimeout 0x%X: %w", msg, err)
	}
	return result, nil
}

// waitModifiersReleased waits briefly for the hotkey modifiers to come up so
// the synthesized Ctrl+C is not seen as Ctrl+Shift+Alt+C.
func waitModifiersReleased() {
	const (
		vkShift   = 0x10
		vkControl = 0x11
		vkMenu    = 0x12
		vkLWin    = 0x5B
		vkRWin    = 0x5C
	)
	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		down := false
		for _, vk := range []uintptr{vkShift, vkControl, vkMenu, vkLWin, vkRWin} {
			if s, _, _ := procGetAsyncKeyState.Call(vk); s&0x8000 != 0 {
				down = true
				break
			}
		}
		if !down {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}
