//go:build windows

package selection

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
)

var (
	clsidCUIAutomation = ole.NewGUID("{FF48DBA4-60EF-4201-AA87-54103EEF594E}")
	iidIUIAutomation   = ole.NewGUID("{30CBE57D-D9D0-452A-AB13-7AC5AC4825EE}")
)

const uiaTextPatternID = 10014

// vtable slots
const (
	comRelease                  = 2
	automationGetFocusedElement = 8
	elementGetCurrentPattern    = 16
	textPatternGetSelection     = 5
	rangeArrayGetLength         = 3
	rangeArrayGetElement        = 4
	textRangeGetText            = 12
)

func call(obj unsafe.Pointer, slot int, args ...uintptr) error {
	vtbl := *(**[64]uintptr)(obj)
	hr, _, _ := syscall.SyscallN(vtbl[slot], append([]uintptr{uintptr(obj)}, args...)...)
	if int32(hr) < 0 {
		return ole.NewError(hr)
	}
	return nil
}

func release(obj unsafe.Pointer) {
	if obj != nil {
		_ = call(obj, comRelease)
	}
}

// UIAutomation reads the selection through the focused element's text
// pattern.
type UIAutomation struct{}

func (UIAutomation) Name() string { return "ui-automation" }

func (UIAutomation) Capture(ctx context.Context) (string, error) {
	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)

	// COM needs an apartment bound to one OS thread.
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
			var oe *ole.OleError
			if !errors.As(err, &oe) || oe.Code() != 1 { // S_FALSE: already initialized
				ch <- result{err: fmt.Errorf("CoInitializeEx: %w", err)}
				return
			}
		}
		defer ole.CoUninitialize()

		text, err := uiaSelectedText()
		ch <- result{text: text, err: err}
	}()

	select {
	case r := <-ch:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func uiaSelectedText() (string, error) {
	unk, err := ole.CreateInstance(clsidCUIAutomation, iidIUIAutomation)
	if err != nil {
		return "", fmt.Errorf("create CUIAutomation: %w", err)
	}
	automation := unsafe.Pointer(unk)
	defer release(automation)

	var element unsafe.Pointer
	if err := call(automation, automationGetFocusedElement, uintptr(unsafe.Pointer(&element))); err != nil || element == nil {
		return "", fmt.Errorf("focused element: %w", errOrNil(err))
	}
	defer release(element)

	var pattern unsafe.Pointer
	if err := call(element, elementGetCurrentPattern, uiaTextPatternID, uintptr(unsafe.Pointer(&pattern))); err != nil || pattern == nil {
		return "", fmt.Errorf("text pattern: %w", errOrNil(err))
	}
	defer release(pattern)

	var ranges unsafe.Pointer
	if err := call(pattern, textPatternGetSelection, uintptr(unsafe.Pointer(&ranges))); err != nil || ranges == nil {
		return "", fmt.Errorf("selection: %w", errOrNil(err))
	}
	defer release(ranges)

	var n int32
	if err := call(ranges, rangeArrayGetLength, uintptr(unsafe.Pointer(&n))); err != nil {
		return "", fmt.Errorf("range count: %w", err)
	}
	if n == 0 {
		return "", ErrNoSelection
	}

	var first unsafe.Pointer
	if err := call(ranges, rangeArrayGetElement, 0, uintptr(unsafe.Pointer(&first))); err != nil || first == nil {
		return "", fmt.Errorf("first range: %w", errOrNil(err))
	}
	defer release(first)

	var bstr *uint16
	maxLength := int32(-1)
	if err := call(first, textRangeGetText, uintptr(maxLength), uintptr(unsafe.Pointer(&bstr))); err != nil {
		return "", fmt.Errorf("range text: %w", err)
	}
	if bstr == nil {
		return "", ErrNoSelection
	}
	defer ole.SysFreeString((*int16)(unsafe.Pointer(bstr)))

	return ole.BstrToString(bstr), nil
}

func errOrNil(err error) error {
	if err == nil {
		return ErrNoSelection
	}
	return err
}
