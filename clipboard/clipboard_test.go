package clipboard

import (
	"errors"
	"testing"
)

type memClipboard struct {
	text    string
	setErr  error
	setCall int
}

func (m *memClipboard) Text() (string, error) { return m.text, nil }

func (m *memClipboard) SetText(text string) error {
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	m.text = text
	return nil
}

func (m *memClipboard) Clear() error {
	m.text = ""
	return nil
}

func TestPreserveRestores(t *testing.T) {
	cb := &memClipboard{text: "user data"}
	err := Preserve(cb, func() error {
		_ = cb.Clear()
		_ = cb.SetText("selection")
		return nil
	})
	if err != nil {
		t.Fatalf("Preserve: %v", err)
	}
	if cb.text != "user data" {
		t.Errorf("clipboard = %q, want %q", cb.text, "user data")
	}
}

func TestPreserveRestoresOnError(t *testing.T) {
	cb := &memClipboard{text: "user data"}
	want := errors.New("copy failed")
	err := Preserve(cb, func() error {
		_ = cb.SetText("partial")
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
	if cb.text != "user data" {
		t.Errorf("clipboard = %q, want %q", cb.text, "user data")
	}
}

func TestPreserveSkipsEmptySnapshot(t *testing.T) {
	cb := &memClipboard{}
	_ = Preserve(cb, func() error {
		return cb.SetText("captured")
	})
	if cb.setCall != 1 {
		t.Errorf("SetText called %d times, want 1", cb.setCall)
	}
	if cb.text != "captured" {
		t.Errorf("clipboard = %q, want %q", cb.text, "captured")
	}
}

func TestPreserveReportsRestoreFailure(t *testing.T) {
	cb := &memClipboard{text: "user data", setErr: errors.New("locked")}
	if err := Preserve(cb, func() error { return nil }); err == nil {
		t.Fatal("expected restore error")
	}
}
