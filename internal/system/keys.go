package system

import "encoding/binary"

const evKey = 0x01

// Linux input-event-codes.h
const (
	KeyEsc      = 1
	KeyF4       = 62
	KeyUp       = 103
	KeyPageUp   = 104
	KeyDown     = 108
	KeyPageDown = 109
)

// Key press values in an EV_KEY record.
const (
	keyReleased = 0
	keyPressed  = 1
	keyRepeated = 2
)

// KeyEvent is one EV_KEY record.
type KeyEvent struct {
	Code   uint16
	Repeat bool
}

// ParseKeyEvents decodes the key presses and autorepeats in buf, a sequence
// of input_event records whose timeval is tvSize bytes. Releases, other
// event types and a trailing partial record are skipped.
func ParseKeyEvents(buf []byte, tvSize int) []KeyEvent {
	eventSize := tvSize + 2 + 2 + 4
	var out []KeyEvent
	for off := 0; off+eventSize <= len(buf); off += eventSize {
		rec := buf[off : off+eventSize]
		// type and code are immediately after timeval.
		typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
		code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
		value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
		if typ != evKey || (value != keyPressed && value != keyRepeated) {
			continue
		}
		out = append(out, KeyEvent{Code: code, Repeat: value == keyRepeated})
	}
	return out
}
