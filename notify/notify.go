// Package notify shows desktop notifications.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Titles used across the application.
const (
	TitleStarted       = "Quill started"
	TitleSetupRequired = "Setup required"
	TitleNoSelection   = "No text selected"
	TitleTimeout       = "Request Timeout"
	TitleError         = "Error"
	TitleProcessing    = "Processing..."
)

// Notifier displays a short message to the user.
type Notifier interface {
	Notify(title, message string)
}

// Desktop sends toast notifications through the OS.
type Desktop struct{}

func (Desktop) Notify(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		slog.Warn("show notification", "title", title, "error", err)
	}
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(string, string) {}

// Log writes notifications to the logger instead of the desktop.
type Log struct{}

func (Log) Notify(title, message string) {
	slog.Info(title, "message", message)
}
