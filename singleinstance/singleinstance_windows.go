//go:build windows

package singleinstance

import (
	"fmt"
	"io"
	"time"

	winio "github.com/Microsoft/go-winio"
)

// Acquire claims the named pipe \\.\pipe\<name>. The returned Closer releases
// it.
func Acquire(name string) (io.Closer, error) {
	path := `\\.\pipe\` + name

	l, err := winio.ListenPipe(path, &winio.PipeConfig{})
	if err != nil {
		timeout := 200 * time.Millisecond
		if c, derr := winio.DialPipe(path, &timeout); derr == nil {
			_ = c.Close()
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}

	go serve(l)
	return l, nil
}
