// Package singleinstance prevents two copies of the background service from
// registering the same hotkeys.
package singleinstance

import (
	"errors"
	"net"
)

// ErrAlreadyRunning is returned when another instance holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// serve accepts and immediately closes connections so probing clients see a
// live owner.
func serve(l net.Listener) {
	for {
		c, err := l.Accept()
		if err != nil {
			return
		}
		_ = c.Close()
	}
}
