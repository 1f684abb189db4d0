// Package input turns SDL2 events into navigation events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
)

// Input collects the events of one frame.
type Input struct {
	events  []navigation.Event
	quit    bool
	resized bool
	width   int
	height  int
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]navigation.Event, 0, 16),
	}
}

// Update polls SDL events and converts them to navigation events.
// Returns true if the window was asked to close.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.resized = false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.resized = true
				i.width, i.height = int(e.Data1), int(e.Data2)
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			name := KeyName(e.Keysym.Sym)
			if name == "" {
				continue
			}
			typ := navigation.EventKeyPress
			if e.Type == sdl.KEYUP {
				typ = navigation.EventKeyRelease
			}
			i.events = append(i.events, navigation.Event{Type: typ, Key: name})

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, navigation.Event{
				Type: navigation.EventMouseMove,
				X:    float64(e.X),
				Y:    float64(e.Y),
			})

		case *sdl.MouseButtonEvent:
			if ev, ok := buttonEvent(e); ok {
				i.events = append(i.events, ev)
			}

		case *sdl.MouseWheelEvent:
			x, y, _ := sdl.GetMouseState()
			i.events = appendWheel(i.events, e.Y, x, y)
		}
	}

	return i.quit
}

// sdlButtons maps SDL button ids onto X11 numbering. SDL gives the side
// buttons 4 and 5, which X11 reserves for the wheel.
var sdlButtons = map[uint8]int{
	sdl.BUTTON_LEFT:   navigation.ButtonLeft,
	sdl.BUTTON_MIDDLE: navigation.ButtonMiddle,
	sdl.BUTTON_RIGHT:  navigation.ButtonRight,
	sdl.BUTTON_X1:     navigation.ButtonBack,
	sdl.BUTTON_X2:     navigation.ButtonForward,
}

func buttonEvent(e *sdl.MouseButtonEvent) (navigation.Event, bool) {
	button, ok := sdlButtons[e.Button]
	if !ok {
		return navigation.Event{}, false
	}
	if e.Type == sdl.MOUSEBUTTONUP {
		return navigation.ButtonRelease(button, float64(e.X), float64(e.Y)), true
	}
	return navigation.ButtonPress(button, float64(e.X), float64(e.Y)), true
}

// appendWheel reports each wheel tick as a press and release
// of button 4 (up) or 5 (down) at the pointer position.
func appendWheel(events []navigation.Event, ticks, x, y int32) []navigation.Event {
	button := navigation.ButtonWheelUp
	if ticks < 0 {
		button = navigation.ButtonWheelDown
		ticks = -ticks
	}
	for i := int32(0); i < ticks; i++ {
		events = append(events,
			navigation.ButtonPress(button, float64(x), float64(y)),
			navigation.ButtonRelease(button, float64(x), float64(y)))
	}
	return events
}

// Events returns the events from the last Update.
func (i *Input) Events() []navigation.Event {
	return i.events
}

// Resized reports the new window size if the window was resized during the
// last Update.
func (i *Input) Resized() (width, height int, ok bool) {
	return i.width, i.height, i.resized
}

// keyNames maps SDL keycodes to X11 keysym names.
var keyNames = map[sdl.Keycode]string{
	sdl.K_w:         navigation.KeyW,
	sdl.K_a:         navigation.KeyA,
	sdl.K_s:         navigation.KeyS,
	sdl.K_d:         navigation.KeyD,
	sdl.K_SPACE:     navigation.KeySpace,
	sdl.K_LSHIFT:    navigation.KeyShiftLeft,
	sdl.K_LCTRL:     navigation.KeyControlLeft,
	sdl.K_RETURN:    navigation.KeyReturn,
	sdl.K_TAB:       navigation.KeyTab,
	sdl.K_ESCAPE:    navigation.KeyEscape,
	sdl.K_KP_PLUS:   navigation.KeyPadAdd,
	sdl.K_KP_MINUS:  navigation.KeyPadSubtract,
	sdl.K_F12:       "F12",
	sdl.K_RSHIFT:    "Shift_R",
	sdl.K_RCTRL:     "Control_R",
	sdl.K_KP_ENTER:  "KP_Enter",
	sdl.K_BACKSPACE: "BackSpace",
}

// KeyName returns the X11 keysym name for an SDL keycode. Printable ASCII
// keys map to themselves. Unknown keys yield "".
func KeyName(k sdl.Keycode) string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	if k > 0x20 && k < 0x7f {
		return string(rune(k))
	}
	return ""
}
