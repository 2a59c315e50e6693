// Package selection captures the text currently selected in the foreground
// application and writes results back to it.
package selection

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"go.aimuz.me/quill/clipboard"
	"go.aimuz.me/quill/keys"
)

// ErrNoSelection is returned by a strategy that ran but found nothing.
var ErrNoSelection = errors.New("no selection")

// Strategy is one way of reading the current selection.
type Strategy interface {
	Name() string
	Capture(ctx context.Context) (string, error)
}

// Capturer tries strategies in order until one yields non-blank text.
type Capturer struct {
	strategies []Strategy
}

// NewCapturer returns a Capturer over the given strategies.
func NewCapturer(strategies ...Strategy) *Capturer {
	return &Capturer{strategies: strategies}
}

// GetSelectedText returns the selected text, or "" when every strategy fails.
// Errors are logged and never returned.
func (c *Capturer) GetSelectedText(ctx context.Context) string {
	for _, s := range c.strategies {
		if ctx.Err() != nil {
			return ""
		}
		text, err := s.Capture(ctx)
		if err != nil {
			slog.Debug("capture selection", "strategy", s.Name(), "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			slog.Debug("capture selection", "strategy", s.Name(), "error", ErrNoSelection)
			continue
		}
		slog.Debug("selection captured", "strategy", s.Name(), "length", len(text))
		return norm.NFC.String(text)
	}
	return ""
}

// CopyPoll captures by clearing the clipboard, sending the copy shortcut and
// polling until text appears. The previous clipboard content is restored.
type CopyPoll struct {
	Clipboard clipboard.Clipboard
	Keys      keys.Injector
	Interval  time.Duration
	Timeout   time.Duration
	// BeforeCopy runs before the shortcut is sent, e.g. to wait for the
	// user to release hotkey modifiers.
	BeforeCopy func()
}

// NewCopyPoll returns a CopyPoll with a 10ms poll interval and 500ms timeout.
func NewCopyPoll(cb clipboard.Clipboard, k keys.Injector) *CopyPoll {
	return &CopyPoll{
		Clipboard: cb,
		Keys:      k,
		Interval:  10 * time.Millisecond,
		Timeout:   500 * time.Millisecond,
	}
}

func (*CopyPoll) Name() string { return "copy-poll" }

func (p *CopyPoll) Capture(ctx context.Context) (string, error) {
	var text string
	err := clipboard.Preserve(p.Clipboard, func() error {
		if err := p.Clipboard.Clear(); err != nil {
			return err
		}
		if p.BeforeCopy != nil {
			p.BeforeCopy()
		}
		if err := p.Keys.Copy(); err != nil {
			return err
		}

		var err error
		text, err = p.poll(ctx)
		return err
	})
	return text, err
}

func (p *CopyPoll) poll(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		if text, err := p.Clipboard.Text(); err == nil && text != "" {
			return text, nil
		}
		select {
		case <-ctx.Done():
			return "", ErrNoSelection
		case <-ticker.C:
		}
	}
}
