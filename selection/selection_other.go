//go:build !windows

package selection

import (
	"go.aimuz.me/quill/clipboard"
	"go.aimuz.me/quill/keys"
)

// DefaultStrategies returns the capture chain for this platform. Only the
// clipboard strategy is available outside Windows.
func DefaultStrategies(cb clipboard.Clipboard, k keys.Injector) []Strategy {
	return []Strategy{NewCopyPoll(cb, k)}
}
