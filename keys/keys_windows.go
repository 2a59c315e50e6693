//go:build windows

package keys

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32         = windows.NewLazySystemDLL("user32.dll")
	sendInput      = user32.NewProc("SendInput")
	mapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

const (
	inputKeyboard  = 1
	keyeventfKeyup = 0x0002
	mapvkVkToVsc   = 0
	vkControl      = 0x11
	vkC            = 0x43
	vkV            = 0x56
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   [8]byte
}

type sendInputInjector struct{}

// New returns an Injector using SendInput.
func New() (Injector, error) {
	return sendInputInjector{}, nil
}

func (sendInputInjector) Copy() error  { return chord(vkC) }
func (sendInputInjector) Paste() error { return chord(vkV) }

// chord sends Ctrl down, key down, key up, Ctrl up in one SendInput call.
// Scan codes are filled in for apps that ignore bare virtual keys.
func chord(vk uint16) error {
	ctrlScan, _, _ := mapVirtualKeyW.Call(vkControl, mapvkVkToVsc)
	keyScan, _, _ := mapVirtualKeyW.Call(uintptr(vk), mapvkVkToVsc)

	key := func(code uint16, scan uintptr, flags uint32) input {
		return input{
			inputType: inputKeyboard,
			ki:        keyboardInput{wVk: code, wScan: uint16(scan), dwFlags: flags},
		}
	}
	inputs := []input{
		key(vkControl, ctrlScan, 0),
		key(vk, keyScan, 0),
		key(vk, keyScan, keyeventfKeyup),
		key(vkControl, ctrlScan, keyeventfKeyup),
	}

	ret, _, err := sendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(ret) != len(inputs) {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}
