//go:build !linux

package system

import "context"

func WatchKeys(ctx context.Context, logger Logger, handlers map[uint16]func(KeyEvent)) {
	if logger != nil {
		logger.Infof("input", "evdev keys unsupported on this platform")
	}
}
