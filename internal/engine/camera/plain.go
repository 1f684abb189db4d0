package camera

import "github.com/Faultbox/midgard-vr/internal/engine/navigation"

// Plain looks from a fixed eye at a fixed center.
type Plain struct {
	Base
}

// NewPlain returns a plain camera with its matrix already computed.
func NewPlain(cfg Config) *Plain {
	c := &Plain{Base: newBase(cfg.withDefaults(DefaultConfig()))}
	c.UpdateView()
	return c
}

func (c *Plain) UpdateView() {
	c.mvp = c.lookAtMVP()
}

// NavigationEvent only tracks held keys and the cursor.
func (c *Plain) NavigationEvent(ev navigation.Event) {
	c.trackKeys(ev)
	if ev.Type == navigation.EventMouseMove {
		c.setCursor(ev.X, ev.Y)
	}
}
