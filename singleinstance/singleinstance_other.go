//go:build !windows

package singleinstance

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"
)

// Dir holds the lock sockets. Tests may override it.
var Dir = os.TempDir()

// Acquire claims a unix socket named after name. A stale socket left by a
// crashed instance is removed.
func Acquire(name string) (io.Closer, error) {
	path := filepath.Join(Dir, name+".sock")

	l, err := net.Listen("unix", path)
	if err != nil {
		if c, derr := net.DialTimeout("unix", path, 200*time.Millisecond); derr == nil {
			_ = c.Close()
			return nil, ErrAlreadyRunning
		}
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("remove stale socket: %w", rmErr)
		}
		if l, err = net.Listen("unix", path); err != nil {
			return nil, fmt.Errorf("listen %s: %w", path, err)
		}
	}

	go serve(l)
	return l, nil
}
