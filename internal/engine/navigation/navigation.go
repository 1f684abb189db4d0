// Package navigation defines the pointer and keyboard events delivered to
// cameras and scenes, independent of the windowing system producing them.
package navigation

import (
	"fmt"
	"sort"
)

// EventType discriminates navigation events.
type EventType int

const (
	EventNone EventType = iota
	EventKeyPress
	EventKeyRelease
	EventMouseMove
	EventMouseButtonPress
	EventMouseButtonRelease
)

func (t EventType) String() string {
	switch t {
	case EventKeyPress:
		return "key-press"
	case EventKeyRelease:
		return "key-release"
	case EventMouseMove:
		return "mouse-move"
	case EventMouseButtonPress:
		return "mouse-button-press"
	case EventMouseButtonRelease:
		return "mouse-button-release"
	}
	return "none"
}

// Key names, following the X11 keysym spelling.
const (
	KeyW           = "w"
	KeyA           = "a"
	KeyS           = "s"
	KeyD           = "d"
	KeySpace       = "space"
	KeyShiftLeft   = "Shift_L"
	KeyControlLeft = "Control_L"
	KeyReturn      = "Return"
	KeyTab         = "Tab"
	KeyEscape      = "Escape"
	KeyPadAdd      = "KP_Add"
	KeyPadSubtract = "KP_Subtract"
)

// Mouse buttons, numbered as X11 does: 4 and 5 are the scroll wheel, 8 and
// 9 the side buttons.
const (
	ButtonLeft      = 1
	ButtonMiddle    = 2
	ButtonRight     = 3
	ButtonWheelUp   = 4
	ButtonWheelDown = 5
	ButtonBack      = 8
	ButtonForward   = 9
)

// Event is a single navigation event. Key is set for key events, X/Y for
// pointer events and Button for button events.
type Event struct {
	Type   EventType
	Key    string
	X, Y   float64
	Button int
}

func (e Event) String() string {
	switch e.Type {
	case EventKeyPress, EventKeyRelease:
		return fmt.Sprintf("%s %q", e.Type, e.Key)
	case EventMouseButtonPress, EventMouseButtonRelease:
		return fmt.Sprintf("%s %d at (%.0f, %.0f)", e.Type, e.Button, e.X, e.Y)
	}
	return fmt.Sprintf("%s (%.0f, %.0f)", e.Type, e.X, e.Y)
}

// KeyPress returns a key-press event.
func KeyPress(key string) Event {
	return Event{Type: EventKeyPress, Key: key}
}

// KeyRelease returns a key-release event.
func KeyRelease(key string) Event {
	return Event{Type: EventKeyRelease, Key: key}
}

// MouseMove returns a pointer motion event.
func MouseMove(x, y float64) Event {
	return Event{Type: EventMouseMove, X: x, Y: y}
}

// ButtonPress returns a mouse button press event.
func ButtonPress(button int, x, y float64) Event {
	return Event{Type: EventMouseButtonPress, Button: button, X: x, Y: y}
}

// ButtonRelease returns a mouse button release event.
func ButtonRelease(button int, x, y float64) Event {
	return Event{Type: EventMouseButtonRelease, Button: button, X: x, Y: y}
}

// KeySet holds the keys currently held down. A key is present at most once
// and iteration order carries no meaning.
type KeySet struct {
	keys map[string]struct{}
}

// Press adds key and reports whether it was not held before.
func (s *KeySet) Press(key string) bool {
	if s.keys == nil {
		s.keys = make(map[string]struct{})
	}
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Release removes key and reports whether it was held.
func (s *KeySet) Release(key string) bool {
	if _, ok := s.keys[key]; !ok {
		return false
	}
	delete(s.keys, key)
	return true
}

// Held reports whether key is held.
func (s *KeySet) Held(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of held keys.
func (s *KeySet) Len() int {
	return len(s.keys)
}

// Keys returns the held keys sorted by name.
func (s *KeySet) Keys() []string {
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
