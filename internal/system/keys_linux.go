//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// WatchKeys reads every /dev/input/event* device and calls the handler
// registered for a key code on each press and autorepeat. Handlers run on
// reader goroutines. It returns immediately; readers stop when ctx is done.
//
// It is best-effort: if no input devices are available, it logs and returns.
func WatchKeys(ctx context.Context, logger Logger, handlers map[uint16]func(KeyEvent)) {
	if len(handlers) == 0 {
		return
	}

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := int(binary.Size(unix.Timeval{}))
	if tvSize <= 0 {
		tvSize = 16
	}

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if logger != nil {
			logger.Infof("input", "no evdev devices found, keys disabled")
		}
		return
	}
	if logger != nil {
		logger.Infof("input", "watching %d evdev devices", len(paths))
	}

	for _, path := range paths {
		p := path
		go func() {
			fd, err := unix.Open(p, unix.O_RDONLY|unix.O_NONBLOCK, 0)
			if err != nil {
				return
			}
			f := os.NewFile(uintptr(fd), p)
			defer func() {
				_ = f.Close()
			}()

			buf := make([]byte, 4096)
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
				_, pollErr := unix.Poll(pollFds, 250)
				if pollErr != nil {
					if pollErr == unix.EINTR {
						continue
					}
					// Device might have gone away.
					return
				}
				if pollFds[0].Revents&unix.POLLIN == 0 {
					continue
				}

				n, readErr := unix.Read(fd, buf)
				if readErr != nil {
					if readErr == unix.EAGAIN || readErr == unix.EINTR {
						continue
					}
					return
				}
				for _, ev := range ParseKeyEvents(buf[:n], tvSize) {
					if fn := handlers[ev.Code]; fn != nil {
						fn(ev)
					}
				}
			}
		}()
	}
}
