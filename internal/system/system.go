// Package system talks to the Linux console: KD graphics mode, the VT
// cursor and evdev key presses. Everything here is best-effort and logs
// failures instead of stopping the host.
package system

type Logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}
