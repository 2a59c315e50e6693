// Package keys injects copy and paste keystrokes into the foreground window.
package keys

// Injector synthesizes clipboard shortcuts.
type Injector interface {
	Copy() error
	Paste() error
}
